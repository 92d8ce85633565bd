// Package auth issues and validates the operator tokens guarding the
// read-side API. Call webhooks from the gateway are authenticated by
// network placement, not tokens.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OperatorClaims represents the claims in an operator token
type OperatorClaims struct {
	OperatorID string `json:"operator_id"`
	Role       string `json:"role"` // "operator" or "admin"
	jwt.RegisteredClaims
}

// ErrInvalidToken is returned for tokens that fail validation
var ErrInvalidToken = errors.New("invalid token")

// Manager signs and validates operator tokens with a shared secret
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a token manager. The secret comes from configuration,
// never from source.
func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// GenerateOperatorToken issues a token for dashboard and API access
func (m *Manager) GenerateOperatorToken(operatorID, role string) (string, error) {
	claims := &OperatorClaims{
		OperatorID: operatorID,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken validates a token string and returns its claims
func (m *Manager) ValidateToken(tokenString string) (*OperatorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*OperatorClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
