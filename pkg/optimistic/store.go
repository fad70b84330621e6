// Package optimistic implements the client side of the engagement toggle:
// a local state store that is flipped immediately for UI responsiveness and
// reconciled against the server's authoritative response afterwards.
package optimistic

import "sync"

// Snapshot is the locally observable engagement state for one target
type Snapshot struct {
	Active bool
	Count  int64
}

type entry struct {
	snap Snapshot
	// seq increases on every optimistic apply; a commit or rollback
	// carrying an older seq is discarded so a slow response can never
	// clobber a newer optimistic state.
	seq uint64
}

// Store holds per-target engagement state keyed by target id.
// All methods are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// Seed sets the known server state for a target, e.g. from a status read.
// It does not bump the sequence, so in-flight toggles stay reconcilable.
func (s *Store) Seed(targetID string, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(targetID)
	e.snap = snap
}

// Get returns the current local snapshot for a target
func (s *Store) Get(targetID string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[targetID]
	if !ok {
		return Snapshot{}, false
	}
	return e.snap, true
}

// ApplyOptimistic flips the local state and adjusts the derived count,
// returning the pre-toggle snapshot and the sequence number identifying
// this apply. The caller must later Commit or Rollback with that sequence.
func (s *Store) ApplyOptimistic(targetID string) (prev Snapshot, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(targetID)
	prev = e.snap
	if e.snap.Active {
		e.snap.Active = false
		e.snap.Count--
	} else {
		e.snap.Active = true
		e.snap.Count++
	}
	e.seq++
	return prev, e.seq
}

// Commit overwrites the local state with the server's authoritative result.
// Returns false if seq is stale (a newer apply happened meanwhile), in which
// case the response is discarded.
func (s *Store) Commit(targetID string, seq uint64, active bool, count int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(targetID)
	if seq != e.seq {
		return false
	}
	e.snap = Snapshot{Active: active, Count: count}
	return true
}

// Rollback restores the pre-toggle snapshot after a failed server call.
// Stale rollbacks are discarded the same way as stale commits.
func (s *Store) Rollback(targetID string, seq uint64, prev Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(targetID)
	if seq != e.seq {
		return false
	}
	e.snap = prev
	return true
}

func (s *Store) entry(targetID string) *entry {
	e, ok := s.entries[targetID]
	if !ok {
		e = &entry{}
		s.entries[targetID] = e
	}
	return e
}
