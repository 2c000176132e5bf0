package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/corplearn/corplearn-backend/internal/domain"
)

func serveWithActor(t *testing.T, actor *domain.Actor) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)

	if actor != nil {
		a := *actor
		r.Use(func(c *gin.Context) {
			SetActor(c, a)
			c.Next()
		})
	}
	r.Use(RequireReviewer())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequireReviewer_AdminAllowed(t *testing.T) {
	w := serveWithActor(t, &domain.Actor{ID: 1, Role: domain.RoleAdmin})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRequireReviewer_CompanyDenied(t *testing.T) {
	w := serveWithActor(t, &domain.Actor{ID: 1, Role: domain.RoleCompany})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestRequireReviewer_NoActor(t *testing.T) {
	w := serveWithActor(t, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}
