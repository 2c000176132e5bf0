package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/corplearn/corplearn-backend/internal/common"
	"github.com/corplearn/corplearn-backend/internal/domain"
	"github.com/corplearn/corplearn-backend/internal/middleware"
	"github.com/corplearn/corplearn-backend/internal/service"
)

// NotificationHandler exposes a recipient's notification feed.
type NotificationHandler struct {
	svc *service.NotificationService
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)

	resp, err := h.svc.GetList(actor.ID, queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.Success(c, resp)
}

// UnreadCount handles GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.svc.UnreadCount(middleware.GetActor(c).ID)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.Success(c, domain.NotificationSummaryResponse{TotalUnread: count})
}

// MarkAsRead handles PUT /api/v1/notifications/:uuid/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	if err := h.svc.MarkAsRead(middleware.GetActor(c).ID, c.Param("uuid")); err != nil {
		common.FailFromError(c, err)
		return
	}
	common.Success(c, gin.H{"read": true})
}

// MarkAllAsRead handles PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	if err := h.svc.MarkAllAsRead(middleware.GetActor(c).ID); err != nil {
		common.FailFromError(c, err)
		return
	}
	common.Success(c, gin.H{"read": true})
}

// queryInt parses an integer query parameter with a default.
func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}
