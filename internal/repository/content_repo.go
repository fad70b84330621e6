package repository

import (
	"errors"
	"time"

	"github.com/asfi50/jnucsu-backend/internal/common"
	"github.com/asfi50/jnucsu-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentRepository defines persistence for content items
type ContentRepository interface {
	Create(ownerID string, kind domain.ContentKind, payload string) (*domain.ContentItem, error)
	FindByID(id string) (*domain.ContentItem, error)
	UpdateDraftPayload(id string, payload string) error
	// CompareAndSetStatus atomically moves an item from one status to
	// another, applying extra column updates in the same statement.
	// Returns the number of rows changed: 0 means the item was missing or
	// no longer in the expected status, which callers map to a conflict.
	CompareAndSetStatus(id string, from, to domain.ContentStatus, extra map[string]interface{}) (int64, error)
	ListPending(kind domain.ContentKind, page, limit int) ([]domain.ContentItem, int64, error)
	Delete(id string) error
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new ContentRepository
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(ownerID string, kind domain.ContentKind, payload string) (*domain.ContentItem, error) {
	item := &domain.ContentItem{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Kind:         kind,
		Status:       domain.StatusDraft,
		DraftPayload: payload,
	}
	if err := r.db.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *contentRepository) FindByID(id string) (*domain.ContentItem, error) {
	var item domain.ContentItem
	err := r.db.First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *contentRepository) UpdateDraftPayload(id string, payload string) error {
	result := r.db.Model(&domain.ContentItem{}).
		Where("id = ?", id).
		Update("draft_payload", payload)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrItemNotFound
	}
	return nil
}

// CompareAndSetStatus is the double-submit guard: two racing submits both
// issue UPDATE ... WHERE status = 'draft'; only one changes a row.
func (r *contentRepository) CompareAndSetStatus(id string, from, to domain.ContentStatus, extra map[string]interface{}) (int64, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}
	result := r.db.Model(&domain.ContentItem{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// ListPending orders oldest submission first so the moderator backlog is
// worked through fairly.
func (r *contentRepository) ListPending(kind domain.ContentKind, page, limit int) ([]domain.ContentItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := r.db.Model(&domain.ContentItem{}).Where("status = ?", domain.StatusPending)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.ContentItem
	err := query.Order("submitted_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *contentRepository) Delete(id string) error {
	result := r.db.Delete(&domain.ContentItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrItemNotFound
	}
	return nil
}
