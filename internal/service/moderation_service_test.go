package service

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/asfi50/jnucsu-backend/internal/common"
	"github.com/asfi50/jnucsu-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockContentRepository is a mock implementation of ContentRepository
type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) Create(ownerID string, kind domain.ContentKind, payload string) (*domain.ContentItem, error) {
	args := m.Called(ownerID, kind, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentItem), args.Error(1)
}

func (m *MockContentRepository) FindByID(id string) (*domain.ContentItem, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentItem), args.Error(1)
}

func (m *MockContentRepository) UpdateDraftPayload(id string, payload string) error {
	args := m.Called(id, payload)
	return args.Error(0)
}

func (m *MockContentRepository) CompareAndSetStatus(id string, from, to domain.ContentStatus, extra map[string]interface{}) (int64, error) {
	args := m.Called(id, from, to, extra)
	return int64(args.Int(0)), args.Error(1)
}

func (m *MockContentRepository) ListPending(kind domain.ContentKind, page, limit int) ([]domain.ContentItem, int64, error) {
	args := m.Called(kind, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.ContentItem), int64(args.Int(1)), args.Error(2)
}

func (m *MockContentRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockVersionRepository is a mock implementation of VersionRepository
type MockVersionRepository struct {
	mock.Mock
}

func (m *MockVersionRepository) Approve(itemID, moderatorID string) (*domain.ContentVersion, error) {
	args := m.Called(itemID, moderatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentVersion), args.Error(1)
}

func (m *MockVersionRepository) ListByItem(itemID string) ([]domain.ContentVersion, error) {
	args := m.Called(itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ContentVersion), args.Error(1)
}

func (m *MockVersionRepository) CountByItem(itemID string) (int64, error) {
	args := m.Called(itemID)
	return int64(args.Int(0)), args.Error(1)
}

func (m *MockVersionRepository) CreateDecision(decision *domain.ModerationDecision) error {
	args := m.Called(decision)
	return args.Error(0)
}

func (m *MockVersionRepository) ListDecisions(itemID string) ([]domain.ModerationDecision, error) {
	args := m.Called(itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ModerationDecision), args.Error(1)
}

func (m *MockVersionRepository) FindOrphans() ([]domain.OrphanedVersion, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrphanedVersion), args.Error(1)
}

var (
	owner     = Actor{ID: "student-1", Role: RoleMember}
	stranger  = Actor{ID: "student-2", Role: RoleMember}
	moderator = Actor{ID: "mod-1", Role: RoleModerator}
)

func validBlogItem(status domain.ContentStatus) *domain.ContentItem {
	return &domain.ContentItem{
		ID:      "item-1",
		OwnerID: owner.ID,
		Kind:    domain.KindBlog,
		Status:  status,
		DraftPayload: `{"title":"Budget season","body":"` +
			strings.Repeat("b", domain.MinBlogBodyLen) + `"}`,
	}
}

func newModerationService(contentRepo *MockContentRepository, versionRepo *MockVersionRepository) ModerationService {
	return NewModerationService(contentRepo, versionRepo, NewAuthorizer())
}

func TestSubmitMovesDraftToPending(t *testing.T) {
	contentRepo := new(MockContentRepository)
	versionRepo := new(MockVersionRepository)
	svc := newModerationService(contentRepo, versionRepo)

	contentRepo.On("FindByID", "item-1").Return(validBlogItem(domain.StatusDraft), nil)
	contentRepo.On("CompareAndSetStatus", "item-1", domain.StatusDraft, domain.StatusPending, mock.Anything).Return(1, nil)

	result, err := svc.Submit("item-1", owner)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, result.Status)
	contentRepo.AssertExpectations(t)
}

func TestSubmitRequiresOwner(t *testing.T) {
	contentRepo := new(MockContentRepository)
	svc := newModerationService(contentRepo, new(MockVersionRepository))

	contentRepo.On("FindByID", "item-1").Return(validBlogItem(domain.StatusDraft), nil)

	_, err := svc.Submit("item-1", stranger)
	assert.ErrorIs(t, err, common.ErrNotOwner)
	contentRepo.AssertNotCalled(t, "CompareAndSetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitAlreadyPendingIsIdempotentConflict(t *testing.T) {
	contentRepo := new(MockContentRepository)
	svc := newModerationService(contentRepo, new(MockVersionRepository))

	contentRepo.On("FindByID", "item-1").Return(validBlogItem(domain.StatusPending), nil)

	_, err := svc.Submit("item-1", owner)
	assert.ErrorIs(t, err, common.ErrAlreadyPending)
	// No second submission row, no status write
	contentRepo.AssertNotCalled(t, "CompareAndSetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitValidatesPayload(t *testing.T) {
	contentRepo := new(MockContentRepository)
	svc := newModerationService(contentRepo, new(MockVersionRepository))

	item := validBlogItem(domain.StatusDraft)
	item.DraftPayload = `{"title":"hi","body":"too short"}`
	contentRepo.On("FindByID", "item-1").Return(item, nil)

	_, err := svc.Submit("item-1", owner)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestSubmitRaceLoserGetsConflict(t *testing.T) {
	contentRepo := new(MockContentRepository)
	svc := newModerationService(contentRepo, new(MockVersionRepository))

	// Both racers saw a draft; the store only lets one CAS through
	contentRepo.On("FindByID", "item-1").Return(validBlogItem(domain.StatusDraft), nil)
	contentRepo.On("CompareAndSetStatus", "item-1", domain.StatusDraft, domain.StatusPending, mock.Anything).Return(0, nil)

	_, err := svc.Submit("item-1", owner)
	assert.ErrorIs(t, err, common.ErrAlreadyPending)
}

func TestWithdrawRequiresPending(t *testing.T) {
	contentRepo := new(MockContentRepository)
	svc := newModerationService(contentRepo, new(MockVersionRepository))

	contentRepo.On("FindByID", "item-1").Return(validBlogItem(domain.StatusDraft), nil)

	_, err := svc.Withdraw("item-1", owner)
	assert.ErrorIs(t, err, common.ErrNotPending)
}

func TestWithdrawReturnsToDraft(t *testing.T) {
	contentRepo := new(MockContentRepository)
	svc := newModerationService(contentRepo, new(MockVersionRepository))

	contentRepo.On("FindByID", "item-1").Return(validBlogItem(domain.StatusPending), nil)
	contentRepo.On("CompareAndSetStatus", "item-1", domain.StatusPending, domain.StatusDraft, mock.Anything).Return(1, nil)

	result, err := svc.Withdraw("item-1", owner)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, result.Status)
}

func TestApproveRequiresModerator(t *testing.T) {
	versionRepo := new(MockVersionRepository)
	svc := newModerationService(new(MockContentRepository), versionRepo)

	_, err := svc.Approve("item-1", owner)
	assert.ErrorIs(t, err, common.ErrNotModerator)
	versionRepo.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything)
}

func TestApproveReturnsNewVersion(t *testing.T) {
	versionRepo := new(MockVersionRepository)
	svc := newModerationService(new(MockContentRepository), versionRepo)

	versionRepo.On("Approve", "item-1", moderator.ID).Return(&domain.ContentVersion{
		ID:            "ver-1",
		ContentItemID: "item-1",
		VersionNumber: 1,
		ApprovedBy:    moderator.ID,
		ApprovedAt:    time.Now(),
	}, nil)

	result, err := svc.Approve("item-1", moderator)
	require.NoError(t, err)
	assert.Equal(t, uint(1), result.VersionNumber)
	assert.Equal(t, "ver-1", result.VersionID)
	// Item reopens as draft after approval
	assert.Equal(t, domain.StatusDraft, result.Status)
}

func TestApproveOnNonPendingIsConflict(t *testing.T) {
	versionRepo := new(MockVersionRepository)
	svc := newModerationService(new(MockContentRepository), versionRepo)

	versionRepo.On("Approve", "item-1", moderator.ID).Return(nil, common.ErrNotPending)

	_, err := svc.Approve("item-1", moderator)
	assert.ErrorIs(t, err, common.ErrNotPending)
}

func TestRejectRequiresReason(t *testing.T) {
	contentRepo := new(MockContentRepository)
	svc := newModerationService(contentRepo, new(MockVersionRepository))

	_, err := svc.Reject("item-1", moderator, "   ")
	assert.ErrorIs(t, err, common.ErrReasonRequired)
	contentRepo.AssertNotCalled(t, "FindByID", mock.Anything)
}

func TestRejectRecordsDecision(t *testing.T) {
	contentRepo := new(MockContentRepository)
	versionRepo := new(MockVersionRepository)
	svc := newModerationService(contentRepo, versionRepo)

	contentRepo.On("FindByID", "item-1").Return(validBlogItem(domain.StatusPending), nil)
	contentRepo.On("CompareAndSetStatus", "item-1", domain.StatusPending, domain.StatusRejected, mock.Anything).Return(1, nil)
	versionRepo.On("CreateDecision", mock.MatchedBy(func(d *domain.ModerationDecision) bool {
		return d.Decision == domain.DecisionReject && d.Reason == "needs citations" && d.DecidedBy == moderator.ID
	})).Return(nil)

	result, err := svc.Reject("item-1", moderator, "needs citations")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, result.Status)
	assert.Equal(t, "needs citations", result.Reason)
	versionRepo.AssertExpectations(t)
}

func TestRejectByMemberIsForbidden(t *testing.T) {
	svc := newModerationService(new(MockContentRepository), new(MockVersionRepository))

	_, err := svc.Reject("item-1", owner, "reason")
	assert.ErrorIs(t, err, common.ErrNotModerator)
}

func TestResubmitFromRejected(t *testing.T) {
	contentRepo := new(MockContentRepository)
	svc := newModerationService(contentRepo, new(MockVersionRepository))

	item := validBlogItem(domain.StatusRejected)
	item.RejectionReason = "needs citations"
	contentRepo.On("FindByID", "item-1").Return(item, nil)
	contentRepo.On("CompareAndSetStatus", "item-1", domain.StatusRejected, domain.StatusPending, mock.Anything).Return(1, nil)

	result, err := svc.Resubmit("item-1", owner)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, result.Status)
}

func TestResubmitRequiresRejected(t *testing.T) {
	contentRepo := new(MockContentRepository)
	svc := newModerationService(contentRepo, new(MockVersionRepository))

	contentRepo.On("FindByID", "item-1").Return(validBlogItem(domain.StatusDraft), nil)

	_, err := svc.Resubmit("item-1", owner)
	assert.ErrorIs(t, err, common.ErrNotRejected)
}

func TestConvertToDraftClearsReason(t *testing.T) {
	contentRepo := new(MockContentRepository)
	svc := newModerationService(contentRepo, new(MockVersionRepository))

	item := validBlogItem(domain.StatusRejected)
	item.RejectionReason = "needs citations"
	contentRepo.On("FindByID", "item-1").Return(item, nil)
	contentRepo.On("CompareAndSetStatus", "item-1", domain.StatusRejected, domain.StatusDraft,
		map[string]interface{}{"rejection_reason": ""}).Return(1, nil)

	result, err := svc.ConvertToDraft("item-1", owner)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, result.Status)
	contentRepo.AssertExpectations(t)
}

func TestDeleteDraftBlockedByPublishedHistory(t *testing.T) {
	contentRepo := new(MockContentRepository)
	versionRepo := new(MockVersionRepository)
	svc := newModerationService(contentRepo, versionRepo)

	contentRepo.On("FindByID", "item-1").Return(validBlogItem(domain.StatusDraft), nil)
	versionRepo.On("CountByItem", "item-1").Return(2, nil)

	err := svc.DeleteDraft("item-1", owner)
	assert.ErrorIs(t, err, common.ErrHasVersions)
	contentRepo.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestDeleteDraftWithoutHistory(t *testing.T) {
	contentRepo := new(MockContentRepository)
	versionRepo := new(MockVersionRepository)
	svc := newModerationService(contentRepo, versionRepo)

	contentRepo.On("FindByID", "item-1").Return(validBlogItem(domain.StatusDraft), nil)
	versionRepo.On("CountByItem", "item-1").Return(0, nil)
	contentRepo.On("Delete", "item-1").Return(nil)

	assert.NoError(t, svc.DeleteDraft("item-1", owner))
	contentRepo.AssertExpectations(t)
}

// Every transition attempted from an illegal source state returns a
// conflict and performs no store writes.
func TestIllegalTransitionsLeaveStateUntouched(t *testing.T) {
	cases := []struct {
		name   string
		status domain.ContentStatus
		call   func(svc ModerationService) error
		want   error
	}{
		{"submit on rejected", domain.StatusRejected, func(svc ModerationService) error {
			_, err := svc.Submit("item-1", owner)
			return err
		}, common.ErrNotDraft},
		{"withdraw on rejected", domain.StatusRejected, func(svc ModerationService) error {
			_, err := svc.Withdraw("item-1", owner)
			return err
		}, common.ErrNotPending},
		{"reject on draft", domain.StatusDraft, func(svc ModerationService) error {
			_, err := svc.Reject("item-1", moderator, "reason")
			return err
		}, common.ErrNotPending},
		{"resubmit on pending", domain.StatusPending, func(svc ModerationService) error {
			_, err := svc.Resubmit("item-1", owner)
			return err
		}, common.ErrNotRejected},
		{"convert-to-draft on pending", domain.StatusPending, func(svc ModerationService) error {
			_, err := svc.ConvertToDraft("item-1", owner)
			return err
		}, common.ErrNotRejected},
		{"delete on pending", domain.StatusPending, func(svc ModerationService) error {
			return svc.DeleteDraft("item-1", owner)
		}, common.ErrNotDraft},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			contentRepo := new(MockContentRepository)
			svc := newModerationService(contentRepo, new(MockVersionRepository))
			contentRepo.On("FindByID", "item-1").Return(validBlogItem(tc.status), nil)

			assert.ErrorIs(t, tc.call(svc), tc.want)
			contentRepo.AssertNotCalled(t, "CompareAndSetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			contentRepo.AssertNotCalled(t, "Delete", mock.Anything)
		})
	}
}

func TestHistoryBundlesVersionsAndDraft(t *testing.T) {
	contentRepo := new(MockContentRepository)
	versionRepo := new(MockVersionRepository)
	svc := newModerationService(contentRepo, versionRepo)

	item := validBlogItem(domain.StatusDraft)
	contentRepo.On("FindByID", "item-1").Return(item, nil)
	versionRepo.On("ListByItem", "item-1").Return([]domain.ContentVersion{
		{ID: "ver-2", VersionNumber: 2},
		{ID: "ver-1", VersionNumber: 1},
	}, nil)

	result, err := svc.History("item-1")
	require.NoError(t, err)
	require.Len(t, result.Versions, 2)
	assert.Equal(t, uint(2), result.Versions[0].VersionNumber, "descending by version number")
	assert.Equal(t, item, result.Draft)
}

func TestCreateDraftRejectsUnknownKind(t *testing.T) {
	svc := newModerationService(new(MockContentRepository), new(MockVersionRepository))

	_, err := svc.CreateDraft(owner, domain.ContentKind("poll"), json.RawMessage(`{}`))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestUpdateDraftOnlyWhileEditable(t *testing.T) {
	contentRepo := new(MockContentRepository)
	svc := newModerationService(contentRepo, new(MockVersionRepository))

	contentRepo.On("FindByID", "item-1").Return(validBlogItem(domain.StatusPending), nil)

	_, err := svc.UpdateDraft("item-1", owner, json.RawMessage(`{"title":"x"}`))
	assert.ErrorIs(t, err, common.ErrNotDraft)
}
