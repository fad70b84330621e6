package optimistic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrToggleFailed wraps any server-side toggle failure after rollback
var ErrToggleFailed = errors.New("toggle request failed")

// Toggler issues the authoritative flip on the server
type Toggler interface {
	Toggle(ctx context.Context, targetID, targetType, engagementType string) (active bool, count int64, err error)
}

// Client applies engagement toggles optimistically and reconciles them
// against the server response: server result wins on success, the
// pre-toggle snapshot is restored on failure.
type Client struct {
	store   *Store
	api     Toggler
	timeout time.Duration
}

// NewClient creates a Client around a store and a server toggler.
// timeout bounds each server call; zero means 10s.
func NewClient(store *Store, api Toggler, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{store: store, api: api, timeout: timeout}
}

// Store exposes the underlying local store, e.g. for seeding from a
// status read before the first toggle.
func (c *Client) Store() *Store {
	return c.store
}

// RequestToggle flips the local state immediately, issues the server call
// and reconciles. The returned snapshot is the local state after
// reconciliation. On error the local state has already been rolled back.
func (c *Client) RequestToggle(ctx context.Context, targetID, targetType, engagementType string) (Snapshot, error) {
	prev, seq := c.store.ApplyOptimistic(targetID)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	active, count, err := c.api.Toggle(ctx, targetID, targetType, engagementType)
	if err != nil {
		c.store.Rollback(targetID, seq, prev)
		return prev, fmt.Errorf("%w: %v", ErrToggleFailed, err)
	}

	// Server wins: a mismatch means the same user toggled from another
	// session; the stored result is overwritten either way.
	c.store.Commit(targetID, seq, active, count)

	snap, _ := c.store.Get(targetID)
	return snap, nil
}

// HTTPToggler calls POST /engagement/toggle on the portal backend
type HTTPToggler struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

type toggleRequest struct {
	TargetID       string `json:"target_id"`
	TargetType     string `json:"target_type"`
	EngagementType string `json:"engagement_type"`
}

type toggleEnvelope struct {
	Data struct {
		Active bool  `json:"active"`
		Count  int64 `json:"count"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Toggle implements Toggler over the HTTP API
func (t *HTTPToggler) Toggle(ctx context.Context, targetID, targetType, engagementType string) (bool, int64, error) {
	body, err := json.Marshal(toggleRequest{
		TargetID:       targetID,
		TargetType:     targetType,
		EngagementType: engagementType,
	})
	if err != nil {
		return false, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/engagement/toggle", bytes.NewReader(body))
	if err != nil {
		return false, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if t.Token != "" {
		req.Header.Set("Authorization", "Bearer "+t.Token)
	}

	client := t.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, 0, err
	}
	defer resp.Body.Close()

	var envelope toggleEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return false, 0, fmt.Errorf("decode toggle response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if envelope.Error != nil && envelope.Error.Message != "" {
			msg = envelope.Error.Message
		}
		return false, 0, fmt.Errorf("toggle rejected: %s", msg)
	}

	return envelope.Data.Active, envelope.Data.Count, nil
}
