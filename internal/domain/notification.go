package domain

import "time"

// Notification is one outbound message. Delivery fans out through
// NotificationRecipient rows so a single message can reach several users.
type Notification struct {
	ID        uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	UUID      string     `gorm:"column:uuid;type:varchar(36);uniqueIndex" json:"uuid"`
	SenderID  *uint64    `gorm:"column:sender_id" json:"sender_id,omitempty"`
	Title     string     `gorm:"column:title;type:varchar(255)" json:"title"`
	Body      string     `gorm:"column:body;type:text" json:"body"`
	Kind      EntityKind `gorm:"column:related_kind;type:varchar(20)" json:"related_kind"`
	RelatedID uint64     `gorm:"column:related_id" json:"related_id"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

// NotificationRecipient tracks per-recipient read state.
type NotificationRecipient struct {
	ID             uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	NotificationID uint64     `gorm:"column:notification_id;index" json:"-"`
	RecipientID    uint64     `gorm:"column:recipient_id;index" json:"recipient_id"`
	IsRead         bool       `gorm:"column:is_read;default:false" json:"is_read"`
	ReadAt         *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	DeletedAt      *time.Time `gorm:"column:deleted_at;index" json:"-"`
}

func (NotificationRecipient) TableName() string { return "notification_recipients" }

// NotificationItem is one notification in a recipient's list.
type NotificationItem struct {
	UUID      string     `json:"uuid"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Kind      EntityKind `json:"related_kind"`
	IsRead    bool       `json:"is_read"`
	CreatedAt string     `json:"created_at"`
}

// NotificationListResponse is the paginated notification list.
type NotificationListResponse struct {
	Items       []NotificationItem `json:"items"`
	Total       int64              `json:"total"`
	UnreadCount int64              `json:"unread_count"`
	Page        int                `json:"page"`
	Limit       int                `json:"limit"`
}

// NotificationSummaryResponse carries the unread counter.
type NotificationSummaryResponse struct {
	TotalUnread int64 `json:"total_unread"`
}
