package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ContentKind distinguishes the two moderated content types
type ContentKind string

const (
	KindCandidate ContentKind = "candidate"
	KindBlog      ContentKind = "blog"
)

// ContentStatus is the draft-side moderation state of an item. Whether a
// published version exists is tracked separately via CurrentVersionID.
type ContentStatus string

const (
	StatusDraft    ContentStatus = "draft"
	StatusPending  ContentStatus = "pending"
	StatusRejected ContentStatus = "rejected"
)

// ContentItem represents a candidate profile or blog post under moderation
type ContentItem struct {
	ID               string        `gorm:"column:id;primaryKey;size:36" json:"id"`
	OwnerID          string        `gorm:"column:owner_id;size:64;index" json:"owner_id"`
	Kind             ContentKind   `gorm:"column:kind;size:16;index:idx_status_kind,priority:2" json:"kind"`
	Status           ContentStatus `gorm:"column:status;size:16;index:idx_status_kind,priority:1" json:"status"`
	DraftPayload     string        `gorm:"column:draft_payload;type:json" json:"draft_payload"`
	CurrentVersionID *string       `gorm:"column:current_version_id;size:36" json:"current_version_id,omitempty"`
	RejectionReason  string        `gorm:"column:rejection_reason;size:1000" json:"rejection_reason,omitempty"`
	SubmittedAt      *time.Time    `gorm:"column:submitted_at;index" json:"submitted_at,omitempty"`
	CreatedAt        time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ContentItem) TableName() string { return "su_content_items" }

// CandidatePayload is the draft payload of a candidate profile
type CandidatePayload struct {
	Name      string   `json:"name"`
	Position  string   `json:"position"`
	Statement string   `json:"statement"`
	Agenda    []string `json:"agenda,omitempty"`
	PhotoURL  string   `json:"photo_url,omitempty"`
}

// BlogPayload is the draft payload of a blog post
type BlogPayload struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags,omitempty"`
}

// CandidatePositions are the union posts a candidate may run for
var CandidatePositions = []string{
	"president",
	"vice-president",
	"general-secretary",
	"treasurer",
	"executive-member",
}

// Submission minimums
const (
	MinStatementLen = 80
	MinBlogTitleLen = 8
	MinBlogBodyLen  = 100
)

// ValidatePayload checks the kind-specific minimum fields required before a
// draft may be submitted for review.
func ValidatePayload(kind ContentKind, raw string) error {
	switch kind {
	case KindCandidate:
		var p CandidatePayload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return fmt.Errorf("malformed candidate payload: %w", err)
		}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("candidate name is required")
		}
		if !isValidPosition(p.Position) {
			return fmt.Errorf("position must be one of %s", strings.Join(CandidatePositions, ", "))
		}
		if len(strings.TrimSpace(p.Statement)) < MinStatementLen {
			return fmt.Errorf("statement must be at least %d characters", MinStatementLen)
		}
	case KindBlog:
		var p BlogPayload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return fmt.Errorf("malformed blog payload: %w", err)
		}
		if len(strings.TrimSpace(p.Title)) < MinBlogTitleLen {
			return fmt.Errorf("title must be at least %d characters", MinBlogTitleLen)
		}
		if len(strings.TrimSpace(p.Body)) < MinBlogBodyLen {
			return fmt.Errorf("body must be at least %d characters", MinBlogBodyLen)
		}
	default:
		return fmt.Errorf("unknown content kind %q", kind)
	}
	return nil
}

func isValidPosition(position string) bool {
	for _, p := range CandidatePositions {
		if p == position {
			return true
		}
	}
	return false
}

// Summary extracts a short human-readable label from a draft payload for
// list views (review queue). Returns "" on malformed payloads.
func Summary(kind ContentKind, raw string) string {
	switch kind {
	case KindCandidate:
		var p CandidatePayload
		if json.Unmarshal([]byte(raw), &p) == nil {
			return p.Name + " (" + p.Position + ")"
		}
	case KindBlog:
		var p BlogPayload
		if json.Unmarshal([]byte(raw), &p) == nil {
			return p.Title
		}
	}
	return ""
}

// CreateItemRequest is the request DTO for creating a draft
type CreateItemRequest struct {
	Kind    ContentKind     `json:"kind" binding:"required"`
	Payload json.RawMessage `json:"payload" binding:"required"`
}

// UpdateDraftRequest is the request DTO for editing a draft
type UpdateDraftRequest struct {
	Payload json.RawMessage `json:"payload" binding:"required"`
}

// StatusResponse is returned by state-machine transitions
type StatusResponse struct {
	ID     string        `json:"id"`
	Status ContentStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`
}
