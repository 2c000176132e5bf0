package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Claims is the token payload: the authenticated actor's public identity
// plus the role the workflow's capability table is keyed on.
type Claims struct {
	jwt.RegisteredClaims
	UserID   uint64 `json:"user_id"`
	UserUUID string `json:"user_uuid"`
	Role     string `json:"role"`
}

// Manager issues and verifies HS256 tokens.
type Manager struct {
	secretKey []byte
	expiresIn time.Duration
}

// NewManager creates a token manager.
func NewManager(secret string, expiresIn time.Duration) *Manager {
	return &Manager{secretKey: []byte(secret), expiresIn: expiresIn}
}

// GenerateToken issues a signed token for the given actor.
func (m *Manager) GenerateToken(userID uint64, userUUID, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiresIn)),
		},
		UserID:   userID,
		UserUUID: userUUID,
		Role:     role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// VerifyToken parses and validates a token.
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
