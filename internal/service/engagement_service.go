package service

import (
	"context"
	"fmt"

	"github.com/asfi50/jnucsu-backend/internal/common"
	"github.com/asfi50/jnucsu-backend/internal/domain"
	"github.com/asfi50/jnucsu-backend/internal/repository"
	"github.com/asfi50/jnucsu-backend/pkg/cache"
)

// EngagementService handles vote/reaction toggles and status reads.
// The server flips state; it never accepts a desired end-state.
type EngagementService interface {
	Toggle(ctx context.Context, userID string, req domain.ToggleRequest) (*domain.ToggleResponse, error)
	Status(ctx context.Context, userID, targetID string, targetType domain.TargetType, engagementType domain.EngagementType) (*domain.ToggleResponse, error)
}

type engagementService struct {
	repo  repository.EngagementRepository
	cache cache.Service
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(repo repository.EngagementRepository, cacheSvc cache.Service) EngagementService {
	return &engagementService{repo: repo, cache: cacheSvc}
}

func (s *engagementService) Toggle(ctx context.Context, userID string, req domain.ToggleRequest) (*domain.ToggleResponse, error) {
	if userID == "" {
		return nil, common.ErrUnauthorized
	}
	if !domain.ValidEngagement(req.TargetType, req.EngagementType) {
		return nil, fmt.Errorf("%w: engagement %q not valid for target %q",
			common.ErrInvalidInput, req.EngagementType, req.TargetType)
	}

	active, err := s.repo.Toggle(userID, req.TargetID, req.TargetType, req.EngagementType)
	if err != nil {
		return nil, err
	}

	// The flip changed the derived count; drop the cached value before
	// recomputing so readers never see the stale one.
	_ = s.cache.InvalidateCount(ctx, req.TargetID, string(req.TargetType), string(req.EngagementType))

	count, err := s.repo.CountActive(req.TargetID, req.TargetType, req.EngagementType)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetCount(ctx, req.TargetID, string(req.TargetType), string(req.EngagementType), count)

	return &domain.ToggleResponse{Active: active, Count: count}, nil
}

func (s *engagementService) Status(ctx context.Context, userID, targetID string, targetType domain.TargetType, engagementType domain.EngagementType) (*domain.ToggleResponse, error) {
	if !domain.ValidEngagement(targetType, engagementType) {
		return nil, fmt.Errorf("%w: engagement %q not valid for target %q",
			common.ErrInvalidInput, engagementType, targetType)
	}

	active := false
	if userID != "" {
		var err error
		active, err = s.repo.GetState(userID, targetID, targetType, engagementType)
		if err != nil {
			return nil, err
		}
	}

	count, err := s.count(ctx, targetID, targetType, engagementType)
	if err != nil {
		return nil, err
	}
	return &domain.ToggleResponse{Active: active, Count: count}, nil
}

func (s *engagementService) count(ctx context.Context, targetID string, targetType domain.TargetType, engagementType domain.EngagementType) (int64, error) {
	if cached, err := s.cache.GetCount(ctx, targetID, string(targetType), string(engagementType)); err == nil {
		return cached, nil
	}
	count, err := s.repo.CountActive(targetID, targetType, engagementType)
	if err != nil {
		return 0, err
	}
	_ = s.cache.SetCount(ctx, targetID, string(targetType), string(engagementType), count)
	return count, nil
}
