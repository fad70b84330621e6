package repository

import (
	"errors"
	"time"

	"github.com/asfi50/jnucsu-backend/internal/common"
	"github.com/asfi50/jnucsu-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VersionRepository defines persistence for the version ledger and the
// moderation decision audit trail
type VersionRepository interface {
	// Approve runs the whole approval atomically: locks the item row,
	// verifies it is pending, snapshots the draft into a new version with
	// the next per-item version number, advances the current pointer,
	// resets the item to draft and records the decision. All writes commit
	// or roll back together.
	Approve(itemID, moderatorID string) (*domain.ContentVersion, error)
	ListByItem(itemID string) ([]domain.ContentVersion, error)
	CountByItem(itemID string) (int64, error)
	CreateDecision(decision *domain.ModerationDecision) error
	ListDecisions(itemID string) ([]domain.ModerationDecision, error)
	// FindOrphans reports items whose newest version row is not the one
	// the current pointer references. Detection only; repair is a policy
	// decision (see error-handling design) and is never automatic.
	FindOrphans() ([]domain.OrphanedVersion, error)
}

type versionRepository struct {
	db *gorm.DB
}

// NewVersionRepository creates a new VersionRepository
func NewVersionRepository(db *gorm.DB) VersionRepository {
	return &versionRepository{db: db}
}

func (r *versionRepository) Approve(itemID, moderatorID string) (*domain.ContentVersion, error) {
	var created *domain.ContentVersion

	err := r.db.Transaction(func(tx *gorm.DB) error {
		// Row lock serializes concurrent approvals of the same item; the
		// version number read below cannot race.
		var item domain.ContentItem
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&item, "id = ?", itemID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrItemNotFound
		}
		if err != nil {
			return err
		}
		if item.Status != domain.StatusPending {
			return common.ErrNotPending
		}

		var maxVersion int64
		if err := tx.Model(&domain.ContentVersion{}).
			Where("content_item_id = ?", itemID).
			Select("COALESCE(MAX(version_number), 0)").
			Scan(&maxVersion).Error; err != nil {
			return err
		}

		now := time.Now()
		version := &domain.ContentVersion{
			ID:            uuid.NewString(),
			ContentItemID: itemID,
			VersionNumber: uint(maxVersion) + 1,
			Payload:       item.DraftPayload,
			ApprovedBy:    moderatorID,
			ApprovedAt:    now,
		}
		if err := tx.Create(version).Error; err != nil {
			return err
		}

		// Pointer advances and the item reopens as a draft; the previous
		// published version stays visible until this commit lands.
		if err := tx.Model(&domain.ContentItem{}).
			Where("id = ?", itemID).
			Updates(map[string]interface{}{
				"current_version_id": version.ID,
				"status":             domain.StatusDraft,
				"rejection_reason":   "",
				"submitted_at":       nil,
				"updated_at":         now,
			}).Error; err != nil {
			return err
		}

		decision := &domain.ModerationDecision{
			ContentItemID: itemID,
			DecidedBy:     moderatorID,
			Decision:      domain.DecisionApprove,
			DecidedAt:     now,
		}
		if err := tx.Create(decision).Error; err != nil {
			return err
		}

		created = version
		return nil
	})

	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *versionRepository) ListByItem(itemID string) ([]domain.ContentVersion, error) {
	var versions []domain.ContentVersion
	err := r.db.Where("content_item_id = ?", itemID).
		Order("version_number DESC").
		Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *versionRepository) CountByItem(itemID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.ContentVersion{}).
		Where("content_item_id = ?", itemID).
		Count(&count).Error
	return count, err
}

func (r *versionRepository) CreateDecision(decision *domain.ModerationDecision) error {
	return r.db.Create(decision).Error
}

func (r *versionRepository) ListDecisions(itemID string) ([]domain.ModerationDecision, error) {
	var decisions []domain.ModerationDecision
	err := r.db.Where("content_item_id = ?", itemID).
		Order("decided_at DESC").
		Find(&decisions).Error
	if err != nil {
		return nil, err
	}
	return decisions, nil
}

func (r *versionRepository) FindOrphans() ([]domain.OrphanedVersion, error) {
	var orphans []domain.OrphanedVersion
	err := r.db.Table("su_content_versions AS v").
		Select("v.content_item_id, v.id AS version_id, v.version_number, COALESCE(i.current_version_id, '') AS current_version_id").
		Joins("JOIN su_content_items AS i ON i.id = v.content_item_id").
		Where("v.version_number = (SELECT MAX(v2.version_number) FROM su_content_versions v2 WHERE v2.content_item_id = v.content_item_id)").
		Where("i.current_version_id IS NULL OR i.current_version_id <> v.id").
		Scan(&orphans).Error
	if err != nil {
		return nil, err
	}
	return orphans, nil
}
