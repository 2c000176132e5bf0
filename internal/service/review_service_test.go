package service

import (
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/corplearn/corplearn-backend/internal/common"
	"github.com/corplearn/corplearn-backend/internal/domain"
	"github.com/corplearn/corplearn-backend/internal/repository"
)

// --- Mock ReviewRepository ---

type mockReviewRepo struct {
	mock.Mock
}

// WithTx runs the unit of work against the same mock; expectations cover
// the calls made inside the transaction.
func (m *mockReviewRepo) WithTx(fn func(repository.ReviewRepository) error) error {
	return fn(m)
}

func (m *mockReviewRepo) CreateEntity(e *domain.ContentEntity) error {
	return m.Called(e).Error(0)
}

func (m *mockReviewRepo) FindEntityByUUID(uuid string) (*domain.ContentEntity, error) {
	args := m.Called(uuid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentEntity), args.Error(1)
}

func (m *mockReviewRepo) FindEntityByID(id uint64) (*domain.ContentEntity, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentEntity), args.Error(1)
}

func (m *mockReviewRepo) LockEntity(id uint64) (*domain.ContentEntity, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentEntity), args.Error(1)
}

func (m *mockReviewRepo) UpdateEntity(e *domain.ContentEntity) error {
	return m.Called(e).Error(0)
}

func (m *mockReviewRepo) ListByOwner(ownerID uint64, kind domain.EntityKind, offset, limit int) ([]*domain.ContentEntity, int64, error) {
	args := m.Called(ownerID, kind, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.ContentEntity), args.Get(1).(int64), args.Error(2)
}

func (m *mockReviewRepo) ListPending(kind domain.EntityKind, offset, limit int) ([]*domain.ContentEntity, int64, error) {
	args := m.Called(kind, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.ContentEntity), args.Get(1).(int64), args.Error(2)
}

func (m *mockReviewRepo) SoftDeleteEntityCascade(entityID, deletedBy uint64, at time.Time) error {
	return m.Called(entityID, deletedBy, at).Error(0)
}

func (m *mockReviewRepo) CreateVersion(v *domain.ContentVersion) error {
	return m.Called(v).Error(0)
}

func (m *mockReviewRepo) FindVersionByUUID(uuid string) (*domain.ContentVersion, error) {
	args := m.Called(uuid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentVersion), args.Error(1)
}

func (m *mockReviewRepo) FindVersionByID(id uint64) (*domain.ContentVersion, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentVersion), args.Error(1)
}

func (m *mockReviewRepo) NextVersionNumber(entityID uint64) (uint, error) {
	args := m.Called(entityID)
	return args.Get(0).(uint), args.Error(1)
}

func (m *mockReviewRepo) TransitionVersionStatus(versionID uint64, from, to domain.VersionStatus) (bool, error) {
	args := m.Called(versionID, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *mockReviewRepo) CreateAudit(a *domain.AuditHistory) error {
	return m.Called(a).Error(0)
}

func (m *mockReviewRepo) ListAuditByEntity(entityID uint64) ([]*domain.AuditRecord, error) {
	args := m.Called(entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditRecord), args.Error(1)
}

// --- Mock Notifier ---

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(recipientID uint64, title, body string, kind domain.EntityKind, relatedID uint64) error {
	return m.Called(recipientID, title, body, kind, relatedID).Error(0)
}

// --- Helpers ---

var (
	companyActor = domain.Actor{ID: 10, UUID: "company-uuid", Role: domain.RoleCompany}
	adminActor   = domain.Actor{ID: 99, UUID: "admin-uuid", Role: domain.RoleAdmin}
)

func lessonPayload() *domain.LessonSubmission {
	return &domain.LessonSubmission{Name: "Go Basics", Description: "Introductory course"}
}

func assignID(id uint64) func(mock.Arguments) {
	return func(args mock.Arguments) {
		switch v := args.Get(0).(type) {
		case *domain.ContentEntity:
			v.ID = id
		case *domain.ContentVersion:
			v.ID = id
		}
	}
}

// --- Submit ---

func TestSubmit_NewEntityByCompany_Pending(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	repo.On("CreateEntity", mock.AnythingOfType("*domain.ContentEntity")).Run(assignID(1)).Return(nil)
	repo.On("NextVersionNumber", uint64(1)).Return(uint(1), nil)
	repo.On("CreateVersion", mock.AnythingOfType("*domain.ContentVersion")).Run(assignID(100)).Return(nil)
	repo.On("UpdateEntity", mock.AnythingOfType("*domain.ContentEntity")).Return(nil)

	resp, err := svc.Submit(companyActor, SubmitInput{Content: lessonPayload()})

	assert.NoError(t, err)
	assert.Equal(t, domain.EntityPendingReview, resp.Status)
	assert.Nil(t, resp.CurrentVersion)
	assert.Equal(t, domain.VersionPendingReview, resp.PendingVersion.Status)
	assert.Equal(t, uint(1), resp.PendingVersion.Version)
	repo.AssertNotCalled(t, "CreateAudit", mock.Anything)
	repo.AssertExpectations(t)
}

func TestSubmit_NewEntityByAdmin_AutoPublishesWithAuditRow(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	repo.On("CreateEntity", mock.AnythingOfType("*domain.ContentEntity")).Run(assignID(1)).Return(nil)
	repo.On("NextVersionNumber", uint64(1)).Return(uint(1), nil)
	repo.On("CreateVersion", mock.AnythingOfType("*domain.ContentVersion")).Run(assignID(100)).Return(nil)
	repo.On("CreateAudit", mock.MatchedBy(func(a *domain.AuditHistory) bool {
		return a.VersionID == 100 &&
			a.AuditorID == adminActor.ID &&
			a.Decision == domain.DecisionApproved &&
			a.Comment == autoApprovedComment
	})).Return(nil)
	repo.On("UpdateEntity", mock.AnythingOfType("*domain.ContentEntity")).Return(nil)

	resp, err := svc.Submit(adminActor, SubmitInput{Content: lessonPayload()})

	assert.NoError(t, err)
	assert.Equal(t, domain.EntityActive, resp.Status)
	assert.Equal(t, domain.VersionPublished, resp.CurrentVersion.Status)
	assert.Nil(t, resp.PendingVersion)
	repo.AssertExpectations(t)
}

func TestSubmit_ExistingEntity_AllocatesNextVersion(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	currentID := uint64(100)
	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindLesson, OwnerID: companyActor.ID,
		Status: domain.EntityActive, CurrentVersionID: &currentID, Visible: true}

	repo.On("FindEntityByUUID", "e-1").Return(entity, nil)
	repo.On("LockEntity", uint64(1)).Return(entity, nil)
	repo.On("NextVersionNumber", uint64(1)).Return(uint(4), nil)
	repo.On("CreateVersion", mock.MatchedBy(func(v *domain.ContentVersion) bool {
		return v.Version == 4 && v.Status == domain.VersionPendingReview
	})).Run(assignID(104)).Return(nil)
	repo.On("UpdateEntity", mock.AnythingOfType("*domain.ContentEntity")).Return(nil)
	repo.On("FindVersionByID", currentID).Return(&domain.ContentVersion{ID: currentID, Version: 3, Status: domain.VersionPublished}, nil)

	resp, err := svc.Submit(companyActor, SubmitInput{EntityUUID: "e-1", Content: lessonPayload()})

	assert.NoError(t, err)
	assert.Equal(t, domain.EntityPendingReview, resp.Status)
	assert.Equal(t, uint(3), resp.CurrentVersion.Version)
	assert.Equal(t, uint(4), resp.PendingVersion.Version)
	repo.AssertExpectations(t)
}

func TestSubmit_KindMismatch_NotFound(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	repo.On("FindEntityByUUID", "e-1").Return(&domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindNews}, nil)

	_, err := svc.Submit(companyActor, SubmitInput{EntityUUID: "e-1", Content: lessonPayload()})

	assert.ErrorIs(t, err, common.ErrNotFound)
	repo.AssertNotCalled(t, "CreateVersion", mock.Anything)
}

func TestSubmit_InvalidPayload_Validation(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	_, err := svc.Submit(companyActor, SubmitInput{Content: &domain.LessonSubmission{Name: "  "}})

	assert.ErrorIs(t, err, common.ErrValidation)
	repo.AssertNotCalled(t, "CreateEntity", mock.Anything)
}

func TestSubmit_UnknownRole_PermissionDenied(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	_, err := svc.Submit(domain.Actor{ID: 5, Role: domain.Role("intern")}, SubmitInput{Content: lessonPayload()})

	assert.ErrorIs(t, err, common.ErrPermissionDenied)
}

func TestSubmit_PendingSlotTaken_ReplacePolicyArchivesOldVersion(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	pendingID := uint64(104)
	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindLesson, OwnerID: companyActor.ID,
		Status: domain.EntityPendingReview, PendingVersionID: &pendingID}

	repo.On("FindEntityByUUID", "e-1").Return(entity, nil)
	repo.On("LockEntity", uint64(1)).Return(entity, nil)
	repo.On("NextVersionNumber", uint64(1)).Return(uint(5), nil)
	repo.On("CreateVersion", mock.AnythingOfType("*domain.ContentVersion")).Run(assignID(105)).Return(nil)
	repo.On("TransitionVersionStatus", pendingID, domain.VersionPendingReview, domain.VersionArchived).Return(true, nil)
	repo.On("UpdateEntity", mock.MatchedBy(func(e *domain.ContentEntity) bool {
		return e.PendingVersionID != nil && *e.PendingVersionID == 105
	})).Return(nil)

	resp, err := svc.Submit(companyActor, SubmitInput{EntityUUID: "e-1", Content: lessonPayload()})

	assert.NoError(t, err)
	assert.Equal(t, uint(5), resp.PendingVersion.Version)
	repo.AssertExpectations(t)
}

func TestSubmit_PendingSlotTaken_RejectPolicyFails(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, Policy{Pending: PendingReject, ArchiveOnFirstReject: true})

	pendingID := uint64(104)
	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindLesson, OwnerID: companyActor.ID,
		Status: domain.EntityPendingReview, PendingVersionID: &pendingID}

	repo.On("FindEntityByUUID", "e-1").Return(entity, nil)
	repo.On("LockEntity", uint64(1)).Return(entity, nil)
	repo.On("NextVersionNumber", uint64(1)).Return(uint(5), nil)
	repo.On("CreateVersion", mock.AnythingOfType("*domain.ContentVersion")).Run(assignID(105)).Return(nil)

	_, err := svc.Submit(companyActor, SubmitInput{EntityUUID: "e-1", Content: lessonPayload()})

	assert.ErrorIs(t, err, common.ErrInvalidState)
	repo.AssertNotCalled(t, "UpdateEntity", mock.Anything)
}

func TestSubmit_ArchivedEntity_ArchivePolicyRefusesRevival(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindLesson, OwnerID: companyActor.ID,
		Status: domain.EntityArchived}

	repo.On("FindEntityByUUID", "e-1").Return(entity, nil)
	repo.On("LockEntity", uint64(1)).Return(entity, nil)

	_, err := svc.Submit(companyActor, SubmitInput{EntityUUID: "e-1", Content: lessonPayload()})

	assert.ErrorIs(t, err, common.ErrInvalidState)
	repo.AssertNotCalled(t, "CreateVersion", mock.Anything)
	repo.AssertNotCalled(t, "UpdateEntity", mock.Anything)
}

func TestSubmit_ArchivedEntity_ResubmitPolicyAllowsNewVersion(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, Policy{Pending: PendingReplace, ArchiveOnFirstReject: false})

	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindLesson, OwnerID: companyActor.ID,
		Status: domain.EntityArchived}

	repo.On("FindEntityByUUID", "e-1").Return(entity, nil)
	repo.On("LockEntity", uint64(1)).Return(entity, nil)
	repo.On("NextVersionNumber", uint64(1)).Return(uint(2), nil)
	repo.On("CreateVersion", mock.AnythingOfType("*domain.ContentVersion")).Run(assignID(102)).Return(nil)
	repo.On("UpdateEntity", mock.AnythingOfType("*domain.ContentEntity")).Return(nil)

	resp, err := svc.Submit(companyActor, SubmitInput{EntityUUID: "e-1", Content: lessonPayload()})

	assert.NoError(t, err)
	assert.Equal(t, domain.EntityPendingReview, resp.Status)
	assert.Equal(t, uint(2), resp.PendingVersion.Version)
	repo.AssertExpectations(t)
}

func TestSubmit_DuplicateVersionNumber_RetriesAndSucceeds(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindLesson, OwnerID: companyActor.ID,
		Status: domain.EntityNoContent}
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}

	repo.On("FindEntityByUUID", "e-1").Return(entity, nil)
	repo.On("LockEntity", uint64(1)).Return(entity, nil)
	repo.On("NextVersionNumber", uint64(1)).Return(uint(2), nil).Once()
	repo.On("CreateVersion", mock.AnythingOfType("*domain.ContentVersion")).Return(dup).Once()
	repo.On("NextVersionNumber", uint64(1)).Return(uint(3), nil).Once()
	repo.On("CreateVersion", mock.AnythingOfType("*domain.ContentVersion")).Run(assignID(103)).Return(nil).Once()
	repo.On("UpdateEntity", mock.AnythingOfType("*domain.ContentEntity")).Return(nil)

	resp, err := svc.Submit(companyActor, SubmitInput{EntityUUID: "e-1", Content: lessonPayload()})

	assert.NoError(t, err)
	assert.Equal(t, uint(3), resp.PendingVersion.Version)
	repo.AssertExpectations(t)
}

func TestSubmit_DuplicateVersionNumber_GivesUpAfterRetries(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindLesson, OwnerID: companyActor.ID}
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}

	repo.On("FindEntityByUUID", "e-1").Return(entity, nil)
	repo.On("LockEntity", uint64(1)).Return(entity, nil)
	repo.On("NextVersionNumber", uint64(1)).Return(uint(2), nil)
	repo.On("CreateVersion", mock.AnythingOfType("*domain.ContentVersion")).Return(dup)

	_, err := svc.Submit(companyActor, SubmitInput{EntityUUID: "e-1", Content: lessonPayload()})

	assert.Error(t, err)
	repo.AssertNumberOfCalls(t, "CreateVersion", submitMaxAttempts)
}

// --- Approve / Reject ---

func TestApprove_PublishesAndNotifiesOwner(t *testing.T) {
	repo := new(mockReviewRepo)
	notifier := new(mockNotifier)
	svc := NewReviewService(repo, notifier, nil, DefaultPolicy())

	pendingID := uint64(104)
	version := &domain.ContentVersion{ID: pendingID, UUID: "v-4", EntityID: 1, Version: 4, Status: domain.VersionPendingReview}
	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindNews, OwnerID: companyActor.ID,
		Status: domain.EntityPendingReview, PendingVersionID: &pendingID}

	repo.On("FindVersionByUUID", "v-4").Return(version, nil)
	repo.On("LockEntity", uint64(1)).Return(entity, nil)
	repo.On("TransitionVersionStatus", pendingID, domain.VersionPendingReview, domain.VersionPublished).Return(true, nil)
	repo.On("CreateAudit", mock.MatchedBy(func(a *domain.AuditHistory) bool {
		return a.Decision == domain.DecisionApproved && a.AuditorID == adminActor.ID && a.Comment == "looks good"
	})).Return(nil)
	repo.On("UpdateEntity", mock.MatchedBy(func(e *domain.ContentEntity) bool {
		return e.Status == domain.EntityActive &&
			e.CurrentVersionID != nil && *e.CurrentVersionID == pendingID &&
			e.PendingVersionID == nil
	})).Return(nil)
	notifier.On("Notify", companyActor.ID, mock.Anything, "looks good", domain.KindNews, uint64(1)).Return(nil)

	err := svc.Approve("v-4", adminActor, "looks good")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestReject_UpdateKeepsPublishedVersion(t *testing.T) {
	repo := new(mockReviewRepo)
	notifier := new(mockNotifier)
	svc := NewReviewService(repo, notifier, nil, DefaultPolicy())

	currentID, pendingID := uint64(100), uint64(104)
	version := &domain.ContentVersion{ID: pendingID, UUID: "v-4", EntityID: 1, Version: 4, Status: domain.VersionPendingReview}
	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindLesson, OwnerID: companyActor.ID,
		Status: domain.EntityPendingReview, CurrentVersionID: &currentID, PendingVersionID: &pendingID}

	repo.On("FindVersionByUUID", "v-4").Return(version, nil)
	repo.On("LockEntity", uint64(1)).Return(entity, nil)
	repo.On("TransitionVersionStatus", pendingID, domain.VersionPendingReview, domain.VersionRejected).Return(true, nil)
	repo.On("CreateAudit", mock.AnythingOfType("*domain.AuditHistory")).Return(nil)
	repo.On("UpdateEntity", mock.MatchedBy(func(e *domain.ContentEntity) bool {
		return e.Status == domain.EntityActive &&
			e.CurrentVersionID != nil && *e.CurrentVersionID == currentID &&
			e.PendingVersionID == nil
	})).Return(nil)
	notifier.On("Notify", companyActor.ID, mock.Anything, mock.Anything, domain.KindLesson, uint64(1)).Return(nil)

	err := svc.Reject("v-4", adminActor, "typo in title")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestReject_FirstSubmission_ArchivesEntity(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	pendingID := uint64(100)
	version := &domain.ContentVersion{ID: pendingID, UUID: "v-1", EntityID: 1, Version: 1, Status: domain.VersionPendingReview}
	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindMeeting, OwnerID: companyActor.ID,
		Status: domain.EntityPendingReview, PendingVersionID: &pendingID}

	repo.On("FindVersionByUUID", "v-1").Return(version, nil)
	repo.On("LockEntity", uint64(1)).Return(entity, nil)
	repo.On("TransitionVersionStatus", pendingID, domain.VersionPendingReview, domain.VersionRejected).Return(true, nil)
	repo.On("CreateAudit", mock.AnythingOfType("*domain.AuditHistory")).Return(nil)
	repo.On("UpdateEntity", mock.MatchedBy(func(e *domain.ContentEntity) bool {
		return e.Status == domain.EntityArchived && e.PendingVersionID == nil
	})).Return(nil)

	err := svc.Reject("v-1", adminActor, "not appropriate")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestReject_FirstSubmission_NoArchivePolicy_ReturnsToNoContent(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, Policy{Pending: PendingReplace, ArchiveOnFirstReject: false})

	pendingID := uint64(100)
	version := &domain.ContentVersion{ID: pendingID, UUID: "v-1", EntityID: 1, Version: 1, Status: domain.VersionPendingReview}
	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindMeeting, OwnerID: companyActor.ID,
		Status: domain.EntityPendingReview, PendingVersionID: &pendingID}

	repo.On("FindVersionByUUID", "v-1").Return(version, nil)
	repo.On("LockEntity", uint64(1)).Return(entity, nil)
	repo.On("TransitionVersionStatus", pendingID, domain.VersionPendingReview, domain.VersionRejected).Return(true, nil)
	repo.On("CreateAudit", mock.AnythingOfType("*domain.AuditHistory")).Return(nil)
	repo.On("UpdateEntity", mock.MatchedBy(func(e *domain.ContentEntity) bool {
		return e.Status == domain.EntityNoContent
	})).Return(nil)

	err := svc.Reject("v-1", adminActor, "resubmit with details")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestApprove_ByCompany_PermissionDenied(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	err := svc.Approve("v-1", companyActor, "")

	assert.ErrorIs(t, err, common.ErrPermissionDenied)
	repo.AssertNotCalled(t, "FindVersionByUUID", mock.Anything)
}

func TestApprove_AlreadyDecided_InvalidState(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	repo.On("FindVersionByUUID", "v-1").Return(&domain.ContentVersion{ID: 100, Version: 1, Status: domain.VersionRejected}, nil)

	err := svc.Approve("v-1", adminActor, "")

	assert.ErrorIs(t, err, common.ErrInvalidState)
	repo.AssertNotCalled(t, "LockEntity", mock.Anything)
}

func TestApprove_LostRace_InvalidState(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	pendingID := uint64(100)
	version := &domain.ContentVersion{ID: pendingID, UUID: "v-1", EntityID: 1, Version: 1, Status: domain.VersionPendingReview}
	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", OwnerID: companyActor.ID, PendingVersionID: &pendingID}

	repo.On("FindVersionByUUID", "v-1").Return(version, nil)
	repo.On("LockEntity", uint64(1)).Return(entity, nil)
	// Another reviewer decided between the read and the lock.
	repo.On("TransitionVersionStatus", pendingID, domain.VersionPendingReview, domain.VersionPublished).Return(false, nil)

	err := svc.Approve("v-1", adminActor, "")

	assert.ErrorIs(t, err, common.ErrInvalidState)
	repo.AssertNotCalled(t, "CreateAudit", mock.Anything)
	repo.AssertNotCalled(t, "UpdateEntity", mock.Anything)
}

func TestApprove_AuditInsertFailure_RollsBackDecision(t *testing.T) {
	repo := new(mockReviewRepo)
	notifier := new(mockNotifier)
	svc := NewReviewService(repo, notifier, nil, DefaultPolicy())

	pendingID := uint64(100)
	version := &domain.ContentVersion{ID: pendingID, UUID: "v-1", EntityID: 1, Version: 1, Status: domain.VersionPendingReview}
	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", OwnerID: companyActor.ID, PendingVersionID: &pendingID}

	repo.On("FindVersionByUUID", "v-1").Return(version, nil)
	repo.On("LockEntity", uint64(1)).Return(entity, nil)
	repo.On("TransitionVersionStatus", pendingID, domain.VersionPendingReview, domain.VersionPublished).Return(true, nil)
	repo.On("CreateAudit", mock.AnythingOfType("*domain.AuditHistory")).Return(errors.New("db error"))

	err := svc.Approve("v-1", adminActor, "")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrInvalidState)
	repo.AssertNotCalled(t, "UpdateEntity", mock.Anything)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApprove_NotifierFailure_DoesNotFailReview(t *testing.T) {
	repo := new(mockReviewRepo)
	notifier := new(mockNotifier)
	svc := NewReviewService(repo, notifier, nil, DefaultPolicy())

	pendingID := uint64(100)
	version := &domain.ContentVersion{ID: pendingID, UUID: "v-1", EntityID: 1, Version: 1, Status: domain.VersionPendingReview}
	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindNews, OwnerID: companyActor.ID, PendingVersionID: &pendingID}

	repo.On("FindVersionByUUID", "v-1").Return(version, nil)
	repo.On("LockEntity", uint64(1)).Return(entity, nil)
	repo.On("TransitionVersionStatus", pendingID, domain.VersionPendingReview, domain.VersionPublished).Return(true, nil)
	repo.On("CreateAudit", mock.AnythingOfType("*domain.AuditHistory")).Return(nil)
	repo.On("UpdateEntity", mock.AnythingOfType("*domain.ContentEntity")).Return(nil)
	notifier.On("Notify", companyActor.ID, mock.Anything, mock.Anything, domain.KindNews, uint64(1)).Return(errors.New("smtp down"))

	err := svc.Approve("v-1", adminActor, "")

	assert.NoError(t, err)
	notifier.AssertExpectations(t)
}

// --- Delete ---

func TestDelete_ByOwner(t *testing.T) {
	repo := new(mockReviewRepo)
	notifier := new(mockNotifier)
	svc := NewReviewService(repo, notifier, nil, DefaultPolicy())

	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindLesson, OwnerID: companyActor.ID}
	repo.On("FindEntityByUUID", "e-1").Return(entity, nil)
	repo.On("SoftDeleteEntityCascade", uint64(1), companyActor.ID, mock.AnythingOfType("time.Time")).Return(nil)

	err := svc.Delete("e-1", companyActor)

	assert.NoError(t, err)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestDelete_ByAdmin_NotifiesOwner(t *testing.T) {
	repo := new(mockReviewRepo)
	notifier := new(mockNotifier)
	svc := NewReviewService(repo, notifier, nil, DefaultPolicy())

	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindLesson, OwnerID: companyActor.ID}
	repo.On("FindEntityByUUID", "e-1").Return(entity, nil)
	repo.On("SoftDeleteEntityCascade", uint64(1), adminActor.ID, mock.AnythingOfType("time.Time")).Return(nil)
	notifier.On("Notify", companyActor.ID, mock.Anything, mock.Anything, domain.KindLesson, uint64(1)).Return(nil)

	err := svc.Delete("e-1", adminActor)

	assert.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestDelete_ByStranger_PermissionDenied(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindLesson, OwnerID: 42}
	repo.On("FindEntityByUUID", "e-1").Return(entity, nil)

	err := svc.Delete("e-1", companyActor)

	assert.ErrorIs(t, err, common.ErrPermissionDenied)
	repo.AssertNotCalled(t, "SoftDeleteEntityCascade", mock.Anything, mock.Anything, mock.Anything)
}

// --- Detail / History / Lists ---

func TestDetail_InvisibleEntity_HiddenFromStrangers(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindNews, OwnerID: 42, Visible: false}
	repo.On("FindEntityByUUID", "e-1").Return(entity, nil)

	_, err := svc.Detail("e-1", companyActor)

	assert.ErrorIs(t, err, common.ErrPermissionDenied)
}

func TestDetail_OwnerSeesPendingVersion(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	currentID, pendingID := uint64(100), uint64(104)
	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindNews, OwnerID: companyActor.ID,
		Status: domain.EntityPendingReview, CurrentVersionID: &currentID, PendingVersionID: &pendingID, Visible: true}

	repo.On("FindEntityByUUID", "e-1").Return(entity, nil)
	repo.On("FindVersionByID", currentID).Return(&domain.ContentVersion{ID: currentID, Version: 3, Status: domain.VersionPublished}, nil)
	repo.On("FindVersionByID", pendingID).Return(&domain.ContentVersion{ID: pendingID, Version: 4, Status: domain.VersionPendingReview}, nil)

	resp, err := svc.Detail("e-1", companyActor)

	assert.NoError(t, err)
	assert.Equal(t, uint(3), resp.CurrentVersion.Version)
	assert.Equal(t, uint(4), resp.PendingVersion.Version)
}

func TestDetail_StrangerDoesNotSeePendingVersion(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	currentID, pendingID := uint64(100), uint64(104)
	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", Kind: domain.KindNews, OwnerID: 42,
		Status: domain.EntityPendingReview, CurrentVersionID: &currentID, PendingVersionID: &pendingID, Visible: true}

	repo.On("FindEntityByUUID", "e-1").Return(entity, nil)
	repo.On("FindVersionByID", currentID).Return(&domain.ContentVersion{ID: currentID, Version: 3, Status: domain.VersionPublished}, nil)
	repo.On("FindVersionByID", pendingID).Return(&domain.ContentVersion{ID: pendingID, Version: 4, Status: domain.VersionPendingReview}, nil)

	resp, err := svc.Detail("e-1", companyActor)

	assert.NoError(t, err)
	assert.Equal(t, uint(3), resp.CurrentVersion.Version)
	assert.Nil(t, resp.PendingVersion)
}

func TestHistory_StrangerDenied(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", OwnerID: 42}
	repo.On("FindEntityByUUID", "e-1").Return(entity, nil)

	_, err := svc.History("e-1", companyActor)

	assert.ErrorIs(t, err, common.ErrPermissionDenied)
}

func TestHistory_OwnerSeesAuditTrail(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	entity := &domain.ContentEntity{ID: 1, UUID: "e-1", OwnerID: companyActor.ID}
	records := []*domain.AuditRecord{
		{VersionUUID: "v-2", VersionNumber: 2, Decision: domain.DecisionApproved},
		{VersionUUID: "v-1", VersionNumber: 1, Decision: domain.DecisionRejected},
	}
	repo.On("FindEntityByUUID", "e-1").Return(entity, nil)
	repo.On("ListAuditByEntity", uint64(1)).Return(records, nil)

	got, err := svc.History("e-1", companyActor)

	assert.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListPending_CompanyDenied(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	_, _, err := svc.ListPending(companyActor, domain.KindLesson, 1, 20)

	assert.ErrorIs(t, err, common.ErrPermissionDenied)
}

func TestListOwn_PaginationDefaults(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, nil, nil, DefaultPolicy())

	repo.On("ListByOwner", companyActor.ID, domain.KindLesson, 0, 20).Return([]*domain.ContentEntity{}, int64(0), nil)

	_, meta, err := svc.ListOwn(companyActor, domain.KindLesson, -1, 500)

	assert.NoError(t, err)
	assert.Equal(t, 1, meta.Page)
	assert.Equal(t, 20, meta.PerPage)
	repo.AssertExpectations(t)
}
