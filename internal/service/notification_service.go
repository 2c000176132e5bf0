package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corplearn/corplearn-backend/internal/domain"
	"github.com/corplearn/corplearn-backend/internal/repository"
	"github.com/corplearn/corplearn-backend/pkg/cache"
)

// NotificationService handles notification fan-out and read state. It is
// the in-process implementation of the workflow engine's Notifier contract.
type NotificationService struct {
	repo  repository.NotificationRepository
	cache cache.Service
}

// NewNotificationService creates a NotificationService. cache may be nil
// when redis is unavailable; unread counts then always hit the database.
func NewNotificationService(repo repository.NotificationRepository, cacheService cache.Service) *NotificationService {
	return &NotificationService{repo: repo, cache: cacheService}
}

// Notify records a notification for one recipient. Implements Notifier.
func (s *NotificationService) Notify(recipientID uint64, title, body string, kind domain.EntityKind, relatedID uint64) error {
	n := &domain.Notification{
		UUID:      uuid.New().String(),
		Title:     title,
		Body:      body,
		Kind:      kind,
		RelatedID: relatedID,
	}
	if err := s.repo.Create(n, []uint64{recipientID}); err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	s.invalidateUnread(recipientID)
	return nil
}

// GetList returns paginated notifications for a recipient.
func (s *NotificationService) GetList(recipientID uint64, page, limit int) (*domain.NotificationListResponse, error) {
	page, limit = clampPage(page, limit)

	notifications, recipients, total, err := s.repo.ListByRecipient(recipientID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.UnreadCount(recipientID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint64]*domain.Notification, len(notifications))
	for _, n := range notifications {
		byID[n.ID] = n
	}

	items := make([]domain.NotificationItem, 0, len(recipients))
	for _, rec := range recipients {
		n, ok := byID[rec.NotificationID]
		if !ok {
			continue
		}
		items = append(items, domain.NotificationItem{
			UUID:      n.UUID,
			Title:     n.Title,
			Body:      n.Body,
			Kind:      n.Kind,
			IsRead:    rec.IsRead,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		})
	}

	return &domain.NotificationListResponse{
		Items:       items,
		Total:       total,
		UnreadCount: unread,
		Page:        page,
		Limit:       limit,
	}, nil
}

// UnreadCount returns the unread counter, served from cache when warm.
func (s *NotificationService) UnreadCount(recipientID uint64) (int64, error) {
	ctx := context.Background()
	if s.cache != nil {
		var cached int64
		if err := s.cache.Get(ctx, cache.UnreadKey(recipientID), &cached); err == nil {
			return cached, nil
		}
	}

	count, err := s.repo.UnreadCount(recipientID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, cache.UnreadKey(recipientID), count, cache.TTLUnread)
	}
	return count, nil
}

// MarkAsRead marks one notification read for the recipient.
func (s *NotificationService) MarkAsRead(recipientID uint64, notificationUUID string) error {
	if err := s.repo.MarkAsRead(recipientID, notificationUUID); err != nil {
		return err
	}
	s.invalidateUnread(recipientID)
	return nil
}

// MarkAllAsRead marks every notification read for the recipient.
func (s *NotificationService) MarkAllAsRead(recipientID uint64) error {
	if err := s.repo.MarkAllAsRead(recipientID); err != nil {
		return err
	}
	s.invalidateUnread(recipientID)
	return nil
}

func (s *NotificationService) invalidateUnread(recipientID uint64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(context.Background(), cache.UnreadKey(recipientID))
}
