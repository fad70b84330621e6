package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/asfi50/jnucsu-backend/internal/common"
	"github.com/asfi50/jnucsu-backend/internal/domain"
	"github.com/asfi50/jnucsu-backend/internal/repository"
)

// ModerationService governs the draft → pending → approved/rejected
// lifecycle of content items
type ModerationService interface {
	CreateDraft(actor Actor, kind domain.ContentKind, payload json.RawMessage) (*domain.ContentItem, error)
	UpdateDraft(itemID string, actor Actor, payload json.RawMessage) (*domain.ContentItem, error)
	Submit(itemID string, actor Actor) (*domain.StatusResponse, error)
	Withdraw(itemID string, actor Actor) (*domain.StatusResponse, error)
	Approve(itemID string, actor Actor) (*domain.ApprovalResponse, error)
	Reject(itemID string, actor Actor, reason string) (*domain.StatusResponse, error)
	Resubmit(itemID string, actor Actor) (*domain.StatusResponse, error)
	ConvertToDraft(itemID string, actor Actor) (*domain.StatusResponse, error)
	DeleteDraft(itemID string, actor Actor) error
	History(itemID string) (*domain.HistoryResponse, error)
	Decisions(itemID string) ([]domain.ModerationDecision, error)
}

type moderationService struct {
	contentRepo repository.ContentRepository
	versionRepo repository.VersionRepository
	authz       Authorizer
}

// NewModerationService creates a new ModerationService
func NewModerationService(contentRepo repository.ContentRepository, versionRepo repository.VersionRepository, authz Authorizer) ModerationService {
	return &moderationService{
		contentRepo: contentRepo,
		versionRepo: versionRepo,
		authz:       authz,
	}
}

func (s *moderationService) CreateDraft(actor Actor, kind domain.ContentKind, payload json.RawMessage) (*domain.ContentItem, error) {
	if kind != domain.KindCandidate && kind != domain.KindBlog {
		return nil, fmt.Errorf("%w: unknown content kind %q", common.ErrInvalidInput, kind)
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("%w: payload is not valid JSON", common.ErrInvalidInput)
	}
	// Drafts may be incomplete; minimum-field validation only gates submit.
	return s.contentRepo.Create(actor.ID, kind, string(payload))
}

func (s *moderationService) UpdateDraft(itemID string, actor Actor, payload json.RawMessage) (*domain.ContentItem, error) {
	item, err := s.contentRepo.FindByID(itemID)
	if err != nil {
		return nil, err
	}
	if !s.authz.IsOwner(actor, item) {
		return nil, common.ErrNotOwner
	}
	// Mutable only while draft-side editing is open
	if item.Status != domain.StatusDraft && item.Status != domain.StatusRejected {
		return nil, common.ErrNotDraft
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("%w: payload is not valid JSON", common.ErrInvalidInput)
	}
	if err := s.contentRepo.UpdateDraftPayload(itemID, string(payload)); err != nil {
		return nil, err
	}
	item.DraftPayload = string(payload)
	return item, nil
}

func (s *moderationService) Submit(itemID string, actor Actor) (*domain.StatusResponse, error) {
	item, err := s.contentRepo.FindByID(itemID)
	if err != nil {
		return nil, err
	}
	if !s.authz.IsOwner(actor, item) {
		return nil, common.ErrNotOwner
	}
	// Idempotent-safe: a second submit before any status change reports
	// the same "already pending" outcome instead of duplicating the entry.
	if item.Status == domain.StatusPending {
		return nil, common.ErrAlreadyPending
	}
	if item.Status != domain.StatusDraft {
		return nil, common.ErrNotDraft
	}
	if err := domain.ValidatePayload(item.Kind, item.DraftPayload); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	rows, err := s.contentRepo.CompareAndSetStatus(itemID, domain.StatusDraft, domain.StatusPending,
		map[string]interface{}{"submitted_at": time.Now()})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Lost the race: another submit reached the store first
		return nil, common.ErrAlreadyPending
	}
	return &domain.StatusResponse{ID: itemID, Status: domain.StatusPending}, nil
}

func (s *moderationService) Withdraw(itemID string, actor Actor) (*domain.StatusResponse, error) {
	item, err := s.contentRepo.FindByID(itemID)
	if err != nil {
		return nil, err
	}
	if !s.authz.IsOwner(actor, item) {
		return nil, common.ErrNotOwner
	}
	if item.Status != domain.StatusPending {
		return nil, common.ErrNotPending
	}

	rows, err := s.contentRepo.CompareAndSetStatus(itemID, domain.StatusPending, domain.StatusDraft,
		map[string]interface{}{"submitted_at": nil})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, common.ErrNotPending
	}
	return &domain.StatusResponse{ID: itemID, Status: domain.StatusDraft}, nil
}

func (s *moderationService) Approve(itemID string, actor Actor) (*domain.ApprovalResponse, error) {
	if !s.authz.CanModerate(actor) {
		return nil, common.ErrNotModerator
	}

	// The repository transaction owns the pending check, version numbering
	// and pointer update; anything short of full success rolls back.
	version, err := s.versionRepo.Approve(itemID, actor.ID)
	if err != nil {
		return nil, err
	}
	return &domain.ApprovalResponse{
		ID:            itemID,
		Status:        domain.StatusDraft,
		VersionID:     version.ID,
		VersionNumber: version.VersionNumber,
	}, nil
}

func (s *moderationService) Reject(itemID string, actor Actor, reason string) (*domain.StatusResponse, error) {
	if !s.authz.CanModerate(actor) {
		return nil, common.ErrNotModerator
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, common.ErrReasonRequired
	}

	item, err := s.contentRepo.FindByID(itemID)
	if err != nil {
		return nil, err
	}
	if item.Status != domain.StatusPending {
		return nil, common.ErrNotPending
	}

	rows, err := s.contentRepo.CompareAndSetStatus(itemID, domain.StatusPending, domain.StatusRejected,
		map[string]interface{}{"rejection_reason": reason, "submitted_at": nil})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, common.ErrNotPending
	}

	if err := s.versionRepo.CreateDecision(&domain.ModerationDecision{
		ContentItemID: itemID,
		DecidedBy:     actor.ID,
		Decision:      domain.DecisionReject,
		Reason:        reason,
		DecidedAt:     time.Now(),
	}); err != nil {
		return nil, err
	}
	return &domain.StatusResponse{ID: itemID, Status: domain.StatusRejected, Reason: reason}, nil
}

func (s *moderationService) Resubmit(itemID string, actor Actor) (*domain.StatusResponse, error) {
	item, err := s.contentRepo.FindByID(itemID)
	if err != nil {
		return nil, err
	}
	if !s.authz.IsOwner(actor, item) {
		return nil, common.ErrNotOwner
	}
	if item.Status != domain.StatusRejected {
		return nil, common.ErrNotRejected
	}
	// Unchanged content may be resubmitted, but it must still pass the
	// submission minimums (rules can tighten between cycles).
	if err := domain.ValidatePayload(item.Kind, item.DraftPayload); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	rows, err := s.contentRepo.CompareAndSetStatus(itemID, domain.StatusRejected, domain.StatusPending,
		map[string]interface{}{"submitted_at": time.Now()})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, common.ErrNotRejected
	}
	return &domain.StatusResponse{ID: itemID, Status: domain.StatusPending}, nil
}

func (s *moderationService) ConvertToDraft(itemID string, actor Actor) (*domain.StatusResponse, error) {
	item, err := s.contentRepo.FindByID(itemID)
	if err != nil {
		return nil, err
	}
	if !s.authz.IsOwner(actor, item) {
		return nil, common.ErrNotOwner
	}
	if item.Status != domain.StatusRejected {
		return nil, common.ErrNotRejected
	}

	// Clears the reason from the active view; the decision audit rows
	// are retained untouched.
	rows, err := s.contentRepo.CompareAndSetStatus(itemID, domain.StatusRejected, domain.StatusDraft,
		map[string]interface{}{"rejection_reason": ""})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, common.ErrNotRejected
	}
	return &domain.StatusResponse{ID: itemID, Status: domain.StatusDraft}, nil
}

func (s *moderationService) DeleteDraft(itemID string, actor Actor) error {
	item, err := s.contentRepo.FindByID(itemID)
	if err != nil {
		return err
	}
	if !s.authz.IsOwner(actor, item) {
		return common.ErrNotOwner
	}
	if item.Status != domain.StatusDraft {
		return common.ErrNotDraft
	}
	count, err := s.versionRepo.CountByItem(itemID)
	if err != nil {
		return err
	}
	// Items with published history go through the separate confirmed
	// deletion flow, not this one.
	if count > 0 {
		return common.ErrHasVersions
	}
	return s.contentRepo.Delete(itemID)
}

func (s *moderationService) History(itemID string) (*domain.HistoryResponse, error) {
	item, err := s.contentRepo.FindByID(itemID)
	if err != nil {
		return nil, err
	}
	versions, err := s.versionRepo.ListByItem(itemID)
	if err != nil {
		return nil, err
	}
	return &domain.HistoryResponse{Versions: versions, Draft: item}, nil
}

func (s *moderationService) Decisions(itemID string) ([]domain.ModerationDecision, error) {
	if _, err := s.contentRepo.FindByID(itemID); err != nil {
		return nil, err
	}
	return s.versionRepo.ListDecisions(itemID)
}
