package domain

import "time"

// ContentVersion is an immutable approved snapshot of a content item.
// Version numbers start at 1 and increase without gaps per item.
type ContentVersion struct {
	ID            string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	ContentItemID string    `gorm:"column:content_item_id;size:36;uniqueIndex:idx_item_version,priority:1" json:"content_item_id"`
	VersionNumber uint      `gorm:"column:version_number;uniqueIndex:idx_item_version,priority:2" json:"version_number"`
	Payload       string    `gorm:"column:payload;type:json" json:"payload"`
	ApprovedBy    string    `gorm:"column:approved_by;size:64" json:"approved_by"`
	ApprovedAt    time.Time `gorm:"column:approved_at" json:"approved_at"`
}

func (ContentVersion) TableName() string { return "su_content_versions" }

// DecisionType is the moderator's verdict
type DecisionType string

const (
	DecisionApprove DecisionType = "approve"
	DecisionReject  DecisionType = "reject"
)

// ModerationDecision is the audit record of a pending-review verdict.
// Rows are written once and never updated or deleted.
type ModerationDecision struct {
	ID            uint64       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContentItemID string       `gorm:"column:content_item_id;size:36;index" json:"content_item_id"`
	DecidedBy     string       `gorm:"column:decided_by;size:64" json:"decided_by"`
	Decision      DecisionType `gorm:"column:decision;size:16" json:"decision"`
	Reason        string       `gorm:"column:reason;size:1000" json:"reason,omitempty"`
	DecidedAt     time.Time    `gorm:"column:decided_at;autoCreateTime" json:"decided_at"`
}

func (ModerationDecision) TableName() string { return "su_moderation_decisions" }

// DecisionRequest is the request DTO for the decision endpoint
type DecisionRequest struct {
	Decision DecisionType `json:"decision" binding:"required"`
	Reason   string       `json:"reason"`
}

// ApprovalResponse is returned when a moderator approves an item
type ApprovalResponse struct {
	ID            string        `json:"id"`
	Status        ContentStatus `json:"status"`
	VersionID     string        `json:"version_id"`
	VersionNumber uint          `json:"version_number"`
}

// HistoryResponse bundles the version ledger with the current draft
type HistoryResponse struct {
	Versions []ContentVersion `json:"versions"`
	Draft    *ContentItem     `json:"draft"`
}

// PendingItem is the review-queue list entry: the item plus an owner and
// payload summary, so moderators can triage without opening each draft.
type PendingItem struct {
	ID          string      `json:"id"`
	Kind        ContentKind `json:"kind"`
	OwnerID     string      `json:"owner_id"`
	Summary     string      `json:"summary"`
	SubmittedAt *time.Time  `json:"submitted_at"`
}

// OrphanedVersion reports a data-integrity fault: the newest version row of
// an item is not the one referenced by its current pointer.
type OrphanedVersion struct {
	ContentItemID    string `json:"content_item_id"`
	VersionID        string `json:"version_id"`
	VersionNumber    uint   `json:"version_number"`
	CurrentVersionID string `json:"current_version_id"`
}
