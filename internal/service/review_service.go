package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/corplearn/corplearn-backend/internal/common"
	"github.com/corplearn/corplearn-backend/internal/domain"
	"github.com/corplearn/corplearn-backend/internal/repository"
	"github.com/corplearn/corplearn-backend/pkg/cache"
	"github.com/corplearn/corplearn-backend/pkg/logger"
)

// autoApprovedComment is the system-generated audit comment written when a
// privileged submitter's content publishes without a separate review step.
const autoApprovedComment = "auto-approved: submitted by administrator"

// submitMaxAttempts bounds the retry loop around version-number allocation.
// The parent-row lock already serializes submissions per entity; the unique
// (entity_id, version) index plus this retry is the backstop.
const submitMaxAttempts = 3

var (
	reviewSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_submissions_total",
			Help: "Total content submissions by kind and initial outcome",
		},
		[]string{"kind", "outcome"},
	)

	reviewDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_decisions_total",
			Help: "Total completed review decisions by kind and decision",
		},
		[]string{"kind", "decision"},
	)
)

// PendingPolicy decides what happens when a new version is submitted while
// another is already awaiting review.
type PendingPolicy string

const (
	// PendingReplace archives the superseded pending version and gives the
	// slot to the new one.
	PendingReplace PendingPolicy = "replace"
	// PendingReject refuses the new submission until the pending version
	// has been decided.
	PendingReject PendingPolicy = "reject"
)

// Policy carries the configurable workflow choices.
type Policy struct {
	// Pending is the pending-slot policy, PendingReplace by default.
	Pending PendingPolicy
	// ArchiveOnFirstReject archives an entity whose first-ever submission
	// is rejected. When false the entity returns to no_content and the
	// owner may resubmit.
	ArchiveOnFirstReject bool
}

// DefaultPolicy returns the default workflow policy.
func DefaultPolicy() Policy {
	return Policy{Pending: PendingReplace, ArchiveOnFirstReject: true}
}

// Notifier is the outbound notification contract. Dispatch is
// fire-and-forget: the engine never blocks on, retries, or rolls back
// a review because of delivery failure.
type Notifier interface {
	Notify(recipientID uint64, title, body string, kind domain.EntityKind, relatedID uint64) error
}

// SubmitInput is one submission: a typed payload plus the optional parent
// entity to version. An empty EntityUUID creates a new entity.
type SubmitInput struct {
	EntityUUID string
	Visible    *bool
	Content    domain.Submission
}

// ReviewService is the versioned-content review workflow engine, shared by
// lessons, news and meetings.
type ReviewService interface {
	Submit(actor domain.Actor, in SubmitInput) (*domain.EntityResponse, error)
	Approve(versionUUID string, auditor domain.Actor, comment string) error
	Reject(versionUUID string, auditor domain.Actor, comment string) error
	Delete(entityUUID string, actor domain.Actor) error
	Detail(entityUUID string, actor domain.Actor) (*domain.EntityResponse, error)
	History(entityUUID string, actor domain.Actor) ([]*domain.AuditRecord, error)
	ListPending(auditor domain.Actor, kind domain.EntityKind, page, limit int) ([]*domain.EntityResponse, *common.Meta, error)
	ListOwn(actor domain.Actor, kind domain.EntityKind, page, limit int) ([]*domain.EntityResponse, *common.Meta, error)
}

type reviewService struct {
	repo     repository.ReviewRepository
	notifier Notifier
	cache    cache.Service
	policy   Policy
}

// NewReviewService creates the workflow engine. notifier and cacheService
// may be nil when notification delivery or redis are disabled.
func NewReviewService(repo repository.ReviewRepository, notifier Notifier, cacheService cache.Service, policy Policy) ReviewService {
	if policy.Pending == "" {
		policy.Pending = PendingReplace
	}
	return &reviewService{repo: repo, notifier: notifier, cache: cacheService, policy: policy}
}

// Submit creates a new content version, and the parent entity when
// EntityUUID is empty. Non-privileged submitters land in the pending slot;
// privileged submitters publish immediately with an engine-written audit
// row so the trail stays uniform.
func (s *reviewService) Submit(actor domain.Actor, in SubmitInput) (*domain.EntityResponse, error) {
	if !actor.Role.Known() {
		return nil, fmt.Errorf("%w: role %q may not submit content", common.ErrPermissionDenied, actor.Role)
	}
	if in.Content == nil {
		return nil, fmt.Errorf("%w: missing submission payload", common.ErrValidation)
	}
	if err := in.Content.Validate(); err != nil {
		return nil, err
	}

	var entity *domain.ContentEntity
	var version *domain.ContentVersion

	var err error
	for attempt := 0; attempt < submitMaxAttempts; attempt++ {
		entity, version, err = s.submitOnce(actor, in)
		if err == nil || !repository.IsDuplicateKey(err) {
			break
		}
	}
	if err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, fmt.Errorf("allocating version number: %w", err)
		}
		return nil, err
	}

	outcome := "pending_review"
	if version.Status == domain.VersionPublished {
		outcome = "auto_published"
	}
	reviewSubmissionsTotal.WithLabelValues(string(entity.Kind), outcome).Inc()
	s.invalidateDetail(entity.UUID)

	return s.resolveResponse(entity, version)
}

// submitOnce runs one transactional submission attempt.
func (s *reviewService) submitOnce(actor domain.Actor, in SubmitInput) (*domain.ContentEntity, *domain.ContentVersion, error) {
	var entity *domain.ContentEntity
	var version *domain.ContentVersion

	err := s.repo.WithTx(func(tx repository.ReviewRepository) error {
		var err error
		if in.EntityUUID == "" {
			entity = &domain.ContentEntity{
				UUID:    uuid.New().String(),
				Kind:    in.Content.Kind(),
				OwnerID: actor.ID,
				Status:  domain.EntityNoContent,
				Visible: true,
			}
			if in.Visible != nil {
				entity.Visible = *in.Visible
			}
			if err = tx.CreateEntity(entity); err != nil {
				return fmt.Errorf("creating entity: %w", err)
			}
		} else {
			found, err := tx.FindEntityByUUID(in.EntityUUID)
			if err != nil {
				return err
			}
			if found.Kind != in.Content.Kind() {
				return fmt.Errorf("%w: no %s with uuid %s", common.ErrNotFound, in.Content.Kind(), in.EntityUUID)
			}
			// Serialize all pointer mutations of this entity.
			entity, err = tx.LockEntity(found.ID)
			if err != nil {
				return err
			}
			// Under the archive policy a rejected first submission retires
			// the entity for good; resubmission needs a fresh entity.
			if entity.Status == domain.EntityArchived && s.policy.ArchiveOnFirstReject {
				return fmt.Errorf("%w: this %s has been archived", common.ErrInvalidState, entity.Kind)
			}
			if in.Visible != nil {
				entity.Visible = *in.Visible
			}
		}

		next, err := tx.NextVersionNumber(entity.ID)
		if err != nil {
			return fmt.Errorf("allocating version number: %w", err)
		}

		version = &domain.ContentVersion{
			UUID:      uuid.New().String(),
			EntityID:  entity.ID,
			Version:   next,
			CreatorID: actor.ID,
			Status:    domain.VersionPendingReview,
		}
		if actor.Role.CanAutoApprove() {
			version.Status = domain.VersionPublished
		}
		in.Content.Fill(version)

		if err = tx.CreateVersion(version); err != nil {
			return err
		}

		if actor.Role.CanAutoApprove() {
			entity.CurrentVersionID = &version.ID
			if err = tx.CreateAudit(&domain.AuditHistory{
				VersionID: version.ID,
				AuditorID: actor.ID,
				Decision:  domain.DecisionApproved,
				Comment:   autoApprovedComment,
			}); err != nil {
				return fmt.Errorf("writing audit row: %w", err)
			}
		} else {
			if entity.PendingVersionID != nil {
				if s.policy.Pending == PendingReject {
					return fmt.Errorf("%w: a version is already awaiting review", common.ErrInvalidState)
				}
				// Replace policy: the superseded pending version is
				// abandoned, not silently forgotten.
				if _, err = tx.TransitionVersionStatus(*entity.PendingVersionID, domain.VersionPendingReview, domain.VersionArchived); err != nil {
					return fmt.Errorf("archiving superseded version: %w", err)
				}
			}
			entity.PendingVersionID = &version.ID
		}

		entity.Status = domain.ProjectStatus(entity.CurrentVersionID, entity.PendingVersionID, s.policy.ArchiveOnFirstReject)
		return tx.UpdateEntity(entity)
	})
	if err != nil {
		return nil, nil, err
	}
	return entity, version, nil
}

// Approve publishes a pending version: version status, entity pointers and
// the audit row move in one transaction, then the owner is notified.
func (s *reviewService) Approve(versionUUID string, auditor domain.Actor, comment string) error {
	return s.review(versionUUID, auditor, comment, domain.DecisionApproved)
}

// Reject declines a pending version. Rejection of an update never retracts
// the previously published version; rejection of a first-ever submission
// leaves the entity without visible content.
func (s *reviewService) Reject(versionUUID string, auditor domain.Actor, comment string) error {
	return s.review(versionUUID, auditor, comment, domain.DecisionRejected)
}

func (s *reviewService) review(versionUUID string, auditor domain.Actor, comment string, decision domain.ReviewDecision) error {
	if !auditor.Role.CanReview() {
		return fmt.Errorf("%w: role %q may not review content", common.ErrPermissionDenied, auditor.Role)
	}

	version, err := s.repo.FindVersionByUUID(versionUUID)
	if err != nil {
		return err
	}

	target := domain.VersionPublished
	if decision == domain.DecisionRejected {
		target = domain.VersionRejected
	}
	if !version.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: version %d is %s", common.ErrInvalidState, version.Version, version.Status)
	}

	var entity *domain.ContentEntity
	err = s.repo.WithTx(func(tx repository.ReviewRepository) error {
		var err error
		entity, err = tx.LockEntity(version.EntityID)
		if err != nil {
			return err
		}

		// Compare-and-set guards against a concurrent reviewer: only one
		// transition away from pending_review can win.
		ok, err := tx.TransitionVersionStatus(version.ID, domain.VersionPendingReview, target)
		if err != nil {
			return fmt.Errorf("transitioning version status: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: version %d is no longer pending review", common.ErrInvalidState, version.Version)
		}

		if decision == domain.DecisionApproved {
			entity.CurrentVersionID = &version.ID
		}
		if entity.PendingVersionID != nil && *entity.PendingVersionID == version.ID {
			entity.PendingVersionID = nil
		}
		entity.Status = domain.ProjectStatus(entity.CurrentVersionID, entity.PendingVersionID, s.policy.ArchiveOnFirstReject)

		if err = tx.CreateAudit(&domain.AuditHistory{
			VersionID: version.ID,
			AuditorID: auditor.ID,
			Decision:  decision,
			Comment:   comment,
		}); err != nil {
			return fmt.Errorf("writing audit row: %w", err)
		}
		return tx.UpdateEntity(entity)
	})
	if err != nil {
		return err
	}

	reviewDecisionsTotal.WithLabelValues(string(entity.Kind), string(decision)).Inc()
	s.invalidateDetail(entity.UUID)

	title := fmt.Sprintf("Your %s has been approved", entity.Kind)
	if decision == domain.DecisionRejected {
		title = fmt.Sprintf("Your %s has been rejected", entity.Kind)
	}
	s.dispatch(entity.OwnerID, title, comment, entity.Kind, entity.ID)
	return nil
}

// Delete soft-deletes an entity and cascades to its versions. Audit rows
// are retained but become unreachable through History.
func (s *reviewService) Delete(entityUUID string, actor domain.Actor) error {
	entity, err := s.repo.FindEntityByUUID(entityUUID)
	if err != nil {
		return err
	}
	if entity.OwnerID != actor.ID && !actor.Role.CanDeleteAny() {
		return fmt.Errorf("%w: not the owner of this %s", common.ErrPermissionDenied, entity.Kind)
	}

	err = s.repo.WithTx(func(tx repository.ReviewRepository) error {
		return tx.SoftDeleteEntityCascade(entity.ID, actor.ID, time.Now())
	})
	if err != nil {
		return err
	}
	s.invalidateDetail(entity.UUID)

	if entity.OwnerID != actor.ID {
		s.dispatch(entity.OwnerID,
			fmt.Sprintf("Your %s has been removed", entity.Kind),
			"An administrator removed this content.",
			entity.Kind, entity.ID)
	}
	return nil
}

// Detail returns the entity with its current published version. Owners and
// reviewers also see the pending version; everyone else needs the entity to
// be visible.
func (s *reviewService) Detail(entityUUID string, actor domain.Actor) (*domain.EntityResponse, error) {
	entity, err := s.repo.FindEntityByUUID(entityUUID)
	if err != nil {
		return nil, err
	}

	privileged := actor.Role.CanReview() || entity.OwnerID == actor.ID
	if !privileged && !entity.Visible {
		return nil, fmt.Errorf("%w: this %s is not public", common.ErrPermissionDenied, entity.Kind)
	}

	// Only the public view is cacheable; owners and reviewers see the
	// pending version, which must stay fresh.
	if !privileged && s.cache != nil {
		var cached domain.EntityResponse
		if err := s.cache.Get(context.Background(), cache.DetailKey(entity.UUID), &cached); err == nil {
			return &cached, nil
		}
	}

	resp, err := s.resolveEntity(entity)
	if err != nil {
		return nil, err
	}
	if !privileged {
		resp.PendingVersion = nil
		if s.cache != nil {
			_ = s.cache.Set(context.Background(), cache.DetailKey(entity.UUID), resp, cache.TTLDetail)
		}
	}
	return resp, nil
}

// History returns the audit trail, owner or reviewer only.
func (s *reviewService) History(entityUUID string, actor domain.Actor) ([]*domain.AuditRecord, error) {
	entity, err := s.repo.FindEntityByUUID(entityUUID)
	if err != nil {
		return nil, err
	}
	if entity.OwnerID != actor.ID && !actor.Role.CanReview() {
		return nil, fmt.Errorf("%w: audit history is restricted", common.ErrPermissionDenied)
	}
	return s.repo.ListAuditByEntity(entity.ID)
}

// ListPending returns the reviewer work queue, oldest submissions first.
func (s *reviewService) ListPending(auditor domain.Actor, kind domain.EntityKind, page, limit int) ([]*domain.EntityResponse, *common.Meta, error) {
	if !auditor.Role.CanReview() {
		return nil, nil, fmt.Errorf("%w: role %q may not review content", common.ErrPermissionDenied, auditor.Role)
	}
	page, limit = clampPage(page, limit)

	entities, total, err := s.repo.ListPending(kind, (page-1)*limit, limit)
	if err != nil {
		return nil, nil, err
	}
	responses, err := s.resolveEntities(entities)
	if err != nil {
		return nil, nil, err
	}
	return responses, common.NewMeta(page, limit, total), nil
}

// ListOwn returns the actor's own entities of one kind.
func (s *reviewService) ListOwn(actor domain.Actor, kind domain.EntityKind, page, limit int) ([]*domain.EntityResponse, *common.Meta, error) {
	page, limit = clampPage(page, limit)

	entities, total, err := s.repo.ListByOwner(actor.ID, kind, (page-1)*limit, limit)
	if err != nil {
		return nil, nil, err
	}
	responses, err := s.resolveEntities(entities)
	if err != nil {
		return nil, nil, err
	}
	return responses, common.NewMeta(page, limit, total), nil
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// resolveEntity loads the pointed-to versions for the API shape.
func (s *reviewService) resolveEntity(entity *domain.ContentEntity) (*domain.EntityResponse, error) {
	var current, pending *domain.ContentVersion
	var err error
	if entity.CurrentVersionID != nil {
		if current, err = s.repo.FindVersionByID(*entity.CurrentVersionID); err != nil {
			return nil, fmt.Errorf("resolving current version: %w", err)
		}
	}
	if entity.PendingVersionID != nil {
		if pending, err = s.repo.FindVersionByID(*entity.PendingVersionID); err != nil {
			return nil, fmt.Errorf("resolving pending version: %w", err)
		}
	}
	return entity.ToResponse(current, pending), nil
}

func (s *reviewService) resolveEntities(entities []*domain.ContentEntity) ([]*domain.EntityResponse, error) {
	responses := make([]*domain.EntityResponse, len(entities))
	for i, e := range entities {
		resp, err := s.resolveEntity(e)
		if err != nil {
			return nil, err
		}
		responses[i] = resp
	}
	return responses, nil
}

// resolveResponse builds the submit response without re-reading pointers
// that the transaction just wrote.
func (s *reviewService) resolveResponse(entity *domain.ContentEntity, version *domain.ContentVersion) (*domain.EntityResponse, error) {
	if version.Status == domain.VersionPublished {
		return entity.ToResponse(version, nil), nil
	}
	var current *domain.ContentVersion
	if entity.CurrentVersionID != nil {
		var err error
		if current, err = s.repo.FindVersionByID(*entity.CurrentVersionID); err != nil {
			return nil, fmt.Errorf("resolving current version: %w", err)
		}
	}
	return entity.ToResponse(current, version), nil
}

func (s *reviewService) invalidateDetail(entityUUID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(context.Background(), cache.DetailKey(entityUUID))
}

// dispatch delivers an owner notification. Failures are logged and
// swallowed; delivery is not part of the review transaction.
func (s *reviewService) dispatch(recipientID uint64, title, body string, kind domain.EntityKind, relatedID uint64) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(recipientID, title, body, kind, relatedID); err != nil {
		logger.Get().Warn().
			Err(err).
			Uint64("recipient_id", recipientID).
			Str("kind", string(kind)).
			Msg("notification dispatch failed")
	}
}
