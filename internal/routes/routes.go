package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/corplearn/corplearn-backend/internal/handler"
	"github.com/corplearn/corplearn-backend/internal/middleware"
	"github.com/corplearn/corplearn-backend/pkg/jwt"
)

// Setup registers all API routes. Every content route is JWT-authenticated;
// review routes additionally require a reviewer role.
func Setup(
	router *gin.Engine,
	reviewHandler *handler.ReviewHandler,
	notificationHandler *handler.NotificationHandler,
	jwtManager *jwt.Manager,
) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "corplearn-backend",
			"time":    time.Now().Unix(),
		})
	})

	api := router.Group("/api/v1", middleware.JWTAuth(jwtManager))

	// Review queue and decisions. Registered before the :kind wildcard so
	// gin resolves /admin literally.
	admin := api.Group("/admin/review", middleware.RequireReviewer())
	admin.GET("/:kind", reviewHandler.ListPending)
	admin.POST("/versions/:uuid", reviewHandler.Review)

	notifications := api.Group("/notifications")
	notifications.GET("", notificationHandler.List)
	notifications.GET("/unread-count", notificationHandler.UnreadCount)
	notifications.PUT("/read-all", notificationHandler.MarkAllAsRead)
	notifications.PUT("/:uuid/read", notificationHandler.MarkAsRead)

	// Uniform content surface: lessons, news and meetings share one
	// handler keyed by the :kind segment.
	content := api.Group("/:kind")
	content.POST("", reviewHandler.Submit)
	content.GET("", reviewHandler.List)
	content.GET("/:uuid", reviewHandler.Detail)
	content.PUT("/:uuid", reviewHandler.Update)
	content.DELETE("/:uuid", reviewHandler.Delete)
	content.GET("/:uuid/history", reviewHandler.History)
}
