package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/corplearn/corplearn-backend/internal/common"
	"github.com/corplearn/corplearn-backend/internal/domain"
	"github.com/corplearn/corplearn-backend/pkg/jwt"
)

const actorKey = "actor"

// JWTAuth verifies the bearer token and stores the authenticated actor in
// the request context. The workflow trusts these values; role checks happen
// downstream against the capability table.
func JWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.ErrorResponse(c, 401, "missing authorization header", nil)
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			common.ErrorResponse(c, 401, "invalid authorization header format", nil)
			c.Abort()
			return
		}

		claims, err := jwtManager.VerifyToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				common.ErrorResponse(c, 401, "token expired", err)
			} else {
				common.ErrorResponse(c, 401, "invalid token", err)
			}
			c.Abort()
			return
		}

		c.Set(actorKey, domain.Actor{
			ID:   claims.UserID,
			UUID: claims.UserUUID,
			Role: domain.ParseRole(claims.Role),
		})
		c.Next()
	}
}

// GetActor extracts the authenticated actor from the request context.
func GetActor(c *gin.Context) domain.Actor {
	v, exists := c.Get(actorKey)
	if !exists {
		return domain.Actor{}
	}
	if actor, ok := v.(domain.Actor); ok {
		return actor
	}
	return domain.Actor{}
}

// SetActor stores an actor in the context. Test helper and escape hatch for
// internal callers that bypass JWT.
func SetActor(c *gin.Context, actor domain.Actor) {
	c.Set(actorKey, actor)
}
