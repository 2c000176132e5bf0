package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/corplearn/corplearn-backend/internal/common"
	"github.com/corplearn/corplearn-backend/internal/domain"
)

// NotificationRepository persists notifications and their per-recipient
// read state.
type NotificationRepository interface {
	Create(n *domain.Notification, recipientIDs []uint64) error
	ListByRecipient(recipientID uint64, offset, limit int) ([]*domain.Notification, []*domain.NotificationRecipient, int64, error)
	UnreadCount(recipientID uint64) (int64, error)
	MarkAsRead(recipientID uint64, notificationUUID string) error
	MarkAllAsRead(recipientID uint64) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a NotificationRepository backed by GORM.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(n *domain.Notification, recipientIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		recipients := make([]domain.NotificationRecipient, len(recipientIDs))
		for i, id := range recipientIDs {
			recipients[i] = domain.NotificationRecipient{
				NotificationID: n.ID,
				RecipientID:    id,
			}
		}
		return tx.Create(&recipients).Error
	})
}

func (r *notificationRepository) ListByRecipient(recipientID uint64, offset, limit int) ([]*domain.Notification, []*domain.NotificationRecipient, int64, error) {
	q := r.db.Model(&domain.NotificationRecipient{}).
		Where("recipient_id = ? AND deleted_at IS NULL", recipientID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, nil, 0, err
	}

	var recipients []*domain.NotificationRecipient
	if err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&recipients).Error; err != nil {
		return nil, nil, 0, err
	}

	ids := make([]uint64, len(recipients))
	for i, rec := range recipients {
		ids[i] = rec.NotificationID
	}
	var notifications []*domain.Notification
	if len(ids) > 0 {
		if err := r.db.Where("id IN ?", ids).Find(&notifications).Error; err != nil {
			return nil, nil, 0, err
		}
	}
	return notifications, recipients, total, nil
}

func (r *notificationRepository) UnreadCount(recipientID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.NotificationRecipient{}).
		Where("recipient_id = ? AND is_read = ? AND deleted_at IS NULL", recipientID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkAsRead(recipientID uint64, notificationUUID string) error {
	var n domain.Notification
	err := r.db.Where("uuid = ?", notificationUUID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrNotFound
	}
	if err != nil {
		return err
	}

	now := time.Now()
	res := r.db.Model(&domain.NotificationRecipient{}).
		Where("notification_id = ? AND recipient_id = ? AND deleted_at IS NULL", n.ID, recipientID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(recipientID uint64) error {
	now := time.Now()
	return r.db.Model(&domain.NotificationRecipient{}).
		Where("recipient_id = ? AND is_read = ? AND deleted_at IS NULL", recipientID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}
