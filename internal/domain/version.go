package domain

import "time"

// VersionStatus is the per-version review status. Once a version leaves
// pending_review it is terminal: a newer version may supersede it as
// "current", but its own status never changes again.
type VersionStatus string

const (
	VersionPendingReview VersionStatus = "pending_review"
	VersionPublished     VersionStatus = "published"
	VersionRejected      VersionStatus = "rejected"
	VersionArchived      VersionStatus = "archived"
)

// versionTransitions is the closed transition table. archived is reachable
// from pending_review only when a newer submission supersedes the pending
// slot under the replace policy.
var versionTransitions = map[VersionStatus]map[VersionStatus]bool{
	VersionPendingReview: {
		VersionPublished: true,
		VersionRejected:  true,
		VersionArchived:  true,
	},
}

// CanTransitionTo reports whether the status may move to next.
func (s VersionStatus) CanTransitionTo(next VersionStatus) bool {
	return versionTransitions[s][next]
}

// Terminal reports whether the status admits no further transitions.
func (s VersionStatus) Terminal() bool {
	return len(versionTransitions[s]) == 0
}

// ContentVersion is one immutable snapshot of submitted content, numbered
// sequentially within its parent entity. Content fields, version number and
// creator never change after insert; only Status transitions, and only
// through the review workflow. The (entity_id, version) unique index is the
// backstop that keeps version numbers gapless and duplicate-free under
// concurrent submissions.
type ContentVersion struct {
	ID       uint64        `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	UUID     string        `gorm:"column:uuid;type:varchar(36);uniqueIndex" json:"uuid"`
	EntityID uint64        `gorm:"column:entity_id;uniqueIndex:idx_entity_version,priority:1" json:"-"`
	Version  uint          `gorm:"column:version;uniqueIndex:idx_entity_version,priority:2" json:"version"`
	Status   VersionStatus `gorm:"column:status;type:varchar(20);index" json:"status"`

	// Author-supplied content, opaque to the workflow. The union of the
	// three kinds' fields; each typed submission fills its own subset.
	Title         string     `gorm:"column:title;type:varchar(255)" json:"title"`
	Body          string     `gorm:"column:body;type:mediumtext" json:"body"`
	CoverImageURL string     `gorm:"column:cover_image_url;type:varchar(500)" json:"cover_image_url,omitempty"`
	ResourceURL   string     `gorm:"column:resource_url;type:varchar(500)" json:"resource_url,omitempty"`
	AuthorName    string     `gorm:"column:author_name;type:varchar(100)" json:"author_name,omitempty"`
	SortOrder     int        `gorm:"column:sort_order;default:0" json:"sort_order,omitempty"`
	StartsAt      *time.Time `gorm:"column:starts_at" json:"starts_at,omitempty"`
	EndsAt        *time.Time `gorm:"column:ends_at" json:"ends_at,omitempty"`

	CreatorID uint64     `gorm:"column:creator_id;index" json:"creator_id"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index" json:"-"`
}

func (ContentVersion) TableName() string { return "content_versions" }

// VersionResponse is the API shape of a ContentVersion.
type VersionResponse struct {
	UUID          string        `json:"uuid"`
	Version       uint          `json:"version"`
	Status        VersionStatus `json:"status"`
	Title         string        `json:"title"`
	Body          string        `json:"body"`
	CoverImageURL string        `json:"cover_image_url,omitempty"`
	ResourceURL   string        `json:"resource_url,omitempty"`
	AuthorName    string        `json:"author_name,omitempty"`
	SortOrder     int           `json:"sort_order,omitempty"`
	StartsAt      *time.Time    `json:"starts_at,omitempty"`
	EndsAt        *time.Time    `json:"ends_at,omitempty"`
	CreatorID     uint64        `json:"creator_id"`
	CreatedAt     time.Time     `json:"created_at"`
}

// ToResponse converts to the API shape
func (v *ContentVersion) ToResponse() *VersionResponse {
	return &VersionResponse{
		UUID:          v.UUID,
		Version:       v.Version,
		Status:        v.Status,
		Title:         v.Title,
		Body:          v.Body,
		CoverImageURL: v.CoverImageURL,
		ResourceURL:   v.ResourceURL,
		AuthorName:    v.AuthorName,
		SortOrder:     v.SortOrder,
		StartsAt:      v.StartsAt,
		EndsAt:        v.EndsAt,
		CreatorID:     v.CreatorID,
		CreatedAt:     v.CreatedAt,
	}
}
