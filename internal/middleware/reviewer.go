package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/corplearn/corplearn-backend/internal/common"
)

// RequireReviewer rejects requests whose actor may not review content.
// Runs after JWTAuth.
func RequireReviewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if !actor.Role.CanReview() {
			common.ErrorResponse(c, 403, "reviewer role required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
