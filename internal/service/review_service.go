package service

import (
	"github.com/asfi50/jnucsu-backend/internal/domain"
	"github.com/asfi50/jnucsu-backend/internal/repository"
)

// ReviewService drives the moderator review queue
type ReviewService interface {
	ListPending(kind domain.ContentKind, page, limit int) ([]domain.PendingItem, int64, error)
}

type reviewService struct {
	contentRepo repository.ContentRepository
}

// NewReviewService creates a new ReviewService
func NewReviewService(contentRepo repository.ContentRepository) ReviewService {
	return &reviewService{contentRepo: contentRepo}
}

func (s *reviewService) ListPending(kind domain.ContentKind, page, limit int) ([]domain.PendingItem, int64, error) {
	items, total, err := s.contentRepo.ListPending(kind, page, limit)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]domain.PendingItem, len(items))
	for i, item := range items {
		entries[i] = domain.PendingItem{
			ID:          item.ID,
			Kind:        item.Kind,
			OwnerID:     item.OwnerID,
			Summary:     domain.Summary(item.Kind, item.DraftPayload),
			SubmittedAt: item.SubmittedAt,
		}
	}
	return entries, total, nil
}
