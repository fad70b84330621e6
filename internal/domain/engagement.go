package domain

import "time"

// TargetType is the kind of entity an engagement points at
type TargetType string

const (
	TargetPost      TargetType = "post"
	TargetCandidate TargetType = "candidate"
)

// EngagementType is the engagement flavor
type EngagementType string

const (
	EngagementReaction EngagementType = "reaction"
	EngagementVote     EngagementType = "vote"
)

// EngagementState is soft state: records are flipped, never deleted
type EngagementState string

const (
	EngagementActive   EngagementState = "active"
	EngagementInactive EngagementState = "inactive"
)

// EngagementRecord holds at most one row per (user, target, targetType,
// engagementType); the unique index is what makes concurrent first toggles
// resolve deterministically.
type EngagementRecord struct {
	ID             uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID         string          `gorm:"column:user_id;size:64;uniqueIndex:idx_engagement_key,priority:1" json:"user_id"`
	TargetID       string          `gorm:"column:target_id;size:64;uniqueIndex:idx_engagement_key,priority:2;index" json:"target_id"`
	TargetType     TargetType      `gorm:"column:target_type;size:16;uniqueIndex:idx_engagement_key,priority:3" json:"target_type"`
	EngagementType EngagementType  `gorm:"column:engagement_type;size:16;uniqueIndex:idx_engagement_key,priority:4" json:"engagement_type"`
	State          EngagementState `gorm:"column:state;size:16" json:"state"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (EngagementRecord) TableName() string { return "su_engagement_records" }

// ValidEngagement reports whether the target/engagement pairing is one the
// portal serves: reactions on blog posts, votes on candidate profiles.
func ValidEngagement(targetType TargetType, engagementType EngagementType) bool {
	switch engagementType {
	case EngagementReaction:
		return targetType == TargetPost
	case EngagementVote:
		return targetType == TargetCandidate
	}
	return false
}

// ToggleRequest is the request DTO for the toggle endpoint. The caller asks
// for a flip; it does not send a desired end-state.
type ToggleRequest struct {
	TargetID       string         `json:"target_id" binding:"required"`
	TargetType     TargetType     `json:"target_type" binding:"required"`
	EngagementType EngagementType `json:"engagement_type" binding:"required"`
}

// ToggleResponse is the authoritative result of a toggle or status read
type ToggleResponse struct {
	Active bool  `json:"active"`
	Count  int64 `json:"count"`
}
