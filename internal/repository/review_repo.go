package repository

import (
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/corplearn/corplearn-backend/internal/common"
	"github.com/corplearn/corplearn-backend/internal/domain"
)

// ReviewRepository is the single data-access contract of the review
// workflow: entities, versions and audit rows together, because every
// workflow operation mutates them as one unit. WithTx runs the given
// function against a repository bound to one database transaction;
// returning an error rolls everything back.
//
// Finders return common.ErrNotFound for missing or soft-deleted rows so
// callers never see driver-level sentinels.
type ReviewRepository interface {
	WithTx(fn func(ReviewRepository) error) error

	CreateEntity(e *domain.ContentEntity) error
	FindEntityByUUID(uuid string) (*domain.ContentEntity, error)
	FindEntityByID(id uint64) (*domain.ContentEntity, error)
	// LockEntity loads the entity row FOR UPDATE. The parent row is the
	// lock boundary for all pointer mutations of one entity.
	LockEntity(id uint64) (*domain.ContentEntity, error)
	UpdateEntity(e *domain.ContentEntity) error
	ListByOwner(ownerID uint64, kind domain.EntityKind, offset, limit int) ([]*domain.ContentEntity, int64, error)
	ListPending(kind domain.EntityKind, offset, limit int) ([]*domain.ContentEntity, int64, error)
	SoftDeleteEntityCascade(entityID, deletedBy uint64, at time.Time) error

	CreateVersion(v *domain.ContentVersion) error
	FindVersionByUUID(uuid string) (*domain.ContentVersion, error)
	FindVersionByID(id uint64) (*domain.ContentVersion, error)
	NextVersionNumber(entityID uint64) (uint, error)
	// TransitionVersionStatus is a compare-and-set: the row moves from the
	// expected status to the new one, or not at all. Returns false when the
	// version was not in the expected status (lost race, stale review).
	TransitionVersionStatus(versionID uint64, from, to domain.VersionStatus) (bool, error)

	CreateAudit(a *domain.AuditHistory) error
	ListAuditByEntity(entityID uint64) ([]*domain.AuditRecord, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a ReviewRepository backed by GORM/MySQL.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// IsDuplicateKey reports whether err is a unique-constraint violation,
// used to retry version-number allocation on conflict.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}

func (r *reviewRepository) WithTx(fn func(ReviewRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&reviewRepository{db: tx})
	})
}

func (r *reviewRepository) CreateEntity(e *domain.ContentEntity) error {
	return r.db.Create(e).Error
}

func (r *reviewRepository) findEntity(query string, args ...interface{}) (*domain.ContentEntity, error) {
	var e domain.ContentEntity
	err := r.db.Where(query, args...).Where("deleted_at IS NULL").First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *reviewRepository) FindEntityByUUID(uuid string) (*domain.ContentEntity, error) {
	return r.findEntity("uuid = ?", uuid)
}

func (r *reviewRepository) FindEntityByID(id uint64) (*domain.ContentEntity, error) {
	return r.findEntity("id = ?", id)
}

func (r *reviewRepository) LockEntity(id uint64) (*domain.ContentEntity, error) {
	var e domain.ContentEntity
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *reviewRepository) UpdateEntity(e *domain.ContentEntity) error {
	// Map form: pointer columns must be writable back to NULL,
	// which Updates with a struct would skip.
	return r.db.Model(e).
		Select("status", "current_version_id", "pending_version_id", "visible", "updated_at").
		Updates(map[string]interface{}{
			"status":             e.Status,
			"current_version_id": e.CurrentVersionID,
			"pending_version_id": e.PendingVersionID,
			"visible":            e.Visible,
			"updated_at":         time.Now(),
		}).Error
}

func (r *reviewRepository) ListByOwner(ownerID uint64, kind domain.EntityKind, offset, limit int) ([]*domain.ContentEntity, int64, error) {
	q := r.db.Model(&domain.ContentEntity{}).
		Where("owner_id = ? AND kind = ? AND deleted_at IS NULL", ownerID, kind)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entities []*domain.ContentEntity
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entities).Error
	return entities, total, err
}

func (r *reviewRepository) ListPending(kind domain.EntityKind, offset, limit int) ([]*domain.ContentEntity, int64, error) {
	q := r.db.Model(&domain.ContentEntity{}).
		Where("kind = ? AND status = ? AND deleted_at IS NULL", kind, domain.EntityPendingReview)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Oldest first: the review queue drains in submission order.
	var entities []*domain.ContentEntity
	err := q.Order("updated_at ASC").Offset(offset).Limit(limit).Find(&entities).Error
	return entities, total, err
}

func (r *reviewRepository) SoftDeleteEntityCascade(entityID, deletedBy uint64, at time.Time) error {
	if err := r.db.Model(&domain.ContentEntity{}).
		Where("id = ? AND deleted_at IS NULL", entityID).
		Updates(map[string]interface{}{"deleted_at": at, "deleted_by": deletedBy}).Error; err != nil {
		return err
	}
	// Audit rows are retained; they become unreachable because History
	// resolves through the (now deleted) entity.
	return r.db.Model(&domain.ContentVersion{}).
		Where("entity_id = ? AND deleted_at IS NULL", entityID).
		Update("deleted_at", at).Error
}

func (r *reviewRepository) CreateVersion(v *domain.ContentVersion) error {
	return r.db.Create(v).Error
}

func (r *reviewRepository) findVersion(query string, args ...interface{}) (*domain.ContentVersion, error) {
	var v domain.ContentVersion
	err := r.db.Where(query, args...).Where("deleted_at IS NULL").First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *reviewRepository) FindVersionByUUID(uuid string) (*domain.ContentVersion, error) {
	return r.findVersion("uuid = ?", uuid)
}

func (r *reviewRepository) FindVersionByID(id uint64) (*domain.ContentVersion, error) {
	return r.findVersion("id = ?", id)
}

func (r *reviewRepository) NextVersionNumber(entityID uint64) (uint, error) {
	var maxVersion *uint
	err := r.db.Model(&domain.ContentVersion{}).
		Where("entity_id = ?", entityID).
		Select("MAX(version)").
		Scan(&maxVersion).Error
	if err != nil {
		return 0, err
	}
	if maxVersion == nil {
		return 1, nil
	}
	return *maxVersion + 1, nil
}

func (r *reviewRepository) TransitionVersionStatus(versionID uint64, from, to domain.VersionStatus) (bool, error) {
	res := r.db.Model(&domain.ContentVersion{}).
		Where("id = ? AND status = ? AND deleted_at IS NULL", versionID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *reviewRepository) CreateAudit(a *domain.AuditHistory) error {
	return r.db.Create(a).Error
}

func (r *reviewRepository) ListAuditByEntity(entityID uint64) ([]*domain.AuditRecord, error) {
	var records []*domain.AuditRecord
	err := r.db.Table("audit_histories AS a").
		Select("v.uuid AS version_uuid, v.version AS version_number, a.auditor_id, a.decision, a.comment, a.created_at").
		Joins("JOIN content_versions v ON v.id = a.version_id").
		Where("v.entity_id = ? AND a.deleted_at IS NULL", entityID).
		Order("a.created_at DESC, a.id DESC").
		Scan(&records).Error
	return records, err
}
