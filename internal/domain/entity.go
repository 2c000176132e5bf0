package domain

import "time"

// EntityKind distinguishes the three publishable entity kinds. The review
// workflow is identical for all of them.
type EntityKind string

const (
	KindLesson  EntityKind = "lesson"
	KindNews    EntityKind = "news"
	KindMeeting EntityKind = "meeting"
)

// ParseEntityKind normalizes a kind token from the URL path.
func ParseEntityKind(s string) (EntityKind, bool) {
	switch EntityKind(s) {
	case KindLesson, KindNews, KindMeeting:
		return EntityKind(s), true
	}
	return "", false
}

// EntityStatus is the entity-level status. It is a projection of the two
// version pointers and is only ever written by the review workflow.
type EntityStatus string

const (
	EntityNoContent     EntityStatus = "no_content"
	EntityPendingReview EntityStatus = "pending_review"
	EntityActive        EntityStatus = "active"
	EntityArchived      EntityStatus = "archived"
)

// ContentEntity is the parent record of one lesson, news item, or meeting.
// It tracks which immutable version is published (current) and which one,
// if any, awaits review (pending). At most one version is pending at any
// time; the pending pointer always names a pending_review version and the
// current pointer always names a published one.
type ContentEntity struct {
	ID               uint64       `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	UUID             string       `gorm:"column:uuid;type:varchar(36);uniqueIndex" json:"uuid"`
	Kind             EntityKind   `gorm:"column:kind;type:varchar(20);index" json:"kind"`
	OwnerID          uint64       `gorm:"column:owner_id;index" json:"owner_id"`
	Status           EntityStatus `gorm:"column:status;type:varchar(20);index" json:"status"`
	CurrentVersionID *uint64      `gorm:"column:current_version_id" json:"-"`
	PendingVersionID *uint64      `gorm:"column:pending_version_id" json:"-"`
	Visible          bool         `gorm:"column:visible;default:true" json:"visible"`
	CreatedAt        time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt        *time.Time   `gorm:"column:deleted_at;index" json:"-"`
	DeletedBy        *uint64      `gorm:"column:deleted_by" json:"-"`
}

func (ContentEntity) TableName() string { return "content_entities" }

// ProjectStatus derives the entity status from its two pointers.
// archiveOnReject decides what a first-ever rejection leaves behind:
// archived (content never became visible) or no_content (owner may retry).
func ProjectStatus(currentID, pendingID *uint64, archiveOnReject bool) EntityStatus {
	switch {
	case pendingID != nil:
		return EntityPendingReview
	case currentID != nil:
		return EntityActive
	case archiveOnReject:
		return EntityArchived
	default:
		return EntityNoContent
	}
}

// EntityResponse is the API shape of a ContentEntity.
type EntityResponse struct {
	UUID           string           `json:"uuid"`
	Kind           EntityKind       `json:"kind"`
	Status         EntityStatus     `json:"status"`
	OwnerID        uint64           `json:"owner_id"`
	Visible        bool             `json:"visible"`
	CurrentVersion *VersionResponse `json:"current_version,omitempty"`
	PendingVersion *VersionResponse `json:"pending_version,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ToResponse converts the entity with optional resolved versions.
func (e *ContentEntity) ToResponse(current, pending *ContentVersion) *EntityResponse {
	resp := &EntityResponse{
		UUID:      e.UUID,
		Kind:      e.Kind,
		Status:    e.Status,
		OwnerID:   e.OwnerID,
		Visible:   e.Visible,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if current != nil {
		resp.CurrentVersion = current.ToResponse()
	}
	if pending != nil {
		resp.PendingVersion = pending.ToResponse()
	}
	return resp
}
