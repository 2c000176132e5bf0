package domain

import "time"

// ReviewDecision is the outcome recorded by one completed review action.
type ReviewDecision string

const (
	DecisionApproved ReviewDecision = "approved"
	DecisionRejected ReviewDecision = "rejected"
)

// AuditHistory is the append-only record of review decisions. Exactly one
// row is written per completed approve/reject, including the engine-written
// approval when a privileged submitter auto-publishes. Rows are never
// mutated or deleted; when the parent entity is soft-deleted they are
// retained and only become unreachable through the history endpoint.
type AuditHistory struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	VersionID uint64         `gorm:"column:version_id;index" json:"-"`
	AuditorID uint64         `gorm:"column:auditor_id" json:"auditor_id"`
	Decision  ReviewDecision `gorm:"column:decision;type:varchar(20)" json:"decision"`
	Comment   string         `gorm:"column:comment;type:text" json:"comment"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	DeletedAt *time.Time     `gorm:"column:deleted_at;index" json:"-"`
}

func (AuditHistory) TableName() string { return "audit_histories" }

// AuditRecord is one audit trail row joined with its version number,
// as returned by the history endpoint.
type AuditRecord struct {
	VersionUUID   string         `json:"version_uuid"`
	VersionNumber uint           `json:"version_number"`
	AuditorID     uint64         `json:"auditor_id"`
	Decision      ReviewDecision `json:"decision"`
	Comment       string         `json:"comment"`
	CreatedAt     time.Time      `json:"created_at"`
}
