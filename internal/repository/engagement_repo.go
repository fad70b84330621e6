package repository

import (
	"errors"

	"github.com/asfi50/jnucsu-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementRepository defines persistence for the engagement ledger
type EngagementRepository interface {
	// Toggle flips the (user, target, type) record inside a transaction,
	// creating it in Active state on first use, and returns the resulting
	// state. Writes to the same key are serialized by the row lock plus
	// the unique index, so near-simultaneous toggles from two devices
	// resolve deterministically.
	Toggle(userID, targetID string, targetType domain.TargetType, engagementType domain.EngagementType) (bool, error)
	GetState(userID, targetID string, targetType domain.TargetType, engagementType domain.EngagementType) (bool, error)
	CountActive(targetID string, targetType domain.TargetType, engagementType domain.EngagementType) (int64, error)
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new EngagementRepository
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func (r *engagementRepository) Toggle(userID, targetID string, targetType domain.TargetType, engagementType domain.EngagementType) (bool, error) {
	var active bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var record domain.EngagementRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND target_id = ? AND target_type = ? AND engagement_type = ?",
				userID, targetID, targetType, engagementType).
			First(&record).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			record = domain.EngagementRecord{
				UserID:         userID,
				TargetID:       targetID,
				TargetType:     targetType,
				EngagementType: engagementType,
				State:          domain.EngagementActive,
			}
			if err := tx.Create(&record).Error; err != nil {
				// The unique index caught a racing first toggle; the
				// other insert won, flip the row it created.
				var existing domain.EngagementRecord
				if ferr := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
					Where("user_id = ? AND target_id = ? AND target_type = ? AND engagement_type = ?",
						userID, targetID, targetType, engagementType).
					First(&existing).Error; ferr != nil {
					return err
				}
				return r.flip(tx, &existing, &active)
			}
			active = true
			return nil
		}
		if err != nil {
			return err
		}

		return r.flip(tx, &record, &active)
	})

	if err != nil {
		return false, err
	}
	return active, nil
}

func (r *engagementRepository) flip(tx *gorm.DB, record *domain.EngagementRecord, active *bool) error {
	next := domain.EngagementActive
	if record.State == domain.EngagementActive {
		next = domain.EngagementInactive
	}
	if err := tx.Model(record).Update("state", next).Error; err != nil {
		return err
	}
	*active = next == domain.EngagementActive
	return nil
}

func (r *engagementRepository) GetState(userID, targetID string, targetType domain.TargetType, engagementType domain.EngagementType) (bool, error) {
	var record domain.EngagementRecord
	err := r.db.Where("user_id = ? AND target_id = ? AND target_type = ? AND engagement_type = ?",
		userID, targetID, targetType, engagementType).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return record.State == domain.EngagementActive, nil
}

func (r *engagementRepository) CountActive(targetID string, targetType domain.TargetType, engagementType domain.EngagementType) (int64, error) {
	var count int64
	err := r.db.Model(&domain.EngagementRecord{}).
		Where("target_id = ? AND target_type = ? AND engagement_type = ? AND state = ?",
			targetID, targetType, engagementType, domain.EngagementActive).
		Count(&count).Error
	return count, err
}
