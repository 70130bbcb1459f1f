// Package token issues and verifies the bearer tokens handed out on login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/account-service/internal/apperror"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = time.Hour

var (
	ErrInvalidToken = apperror.New(apperror.Auth, "Invalid token")
	ErrExpired      = apperror.New(apperror.Auth, "Token expired")
)

// Claims carries the user id alongside the registered claims.
type Claims struct {
	UserID int `json:"userId"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Manager{secret: []byte(secret), ttl: ttl}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// SigningMethod is the only algorithm Issue uses and Verify accepts.
const SigningMethod = "HS256"

// SigningKey is the HMAC secret, for middleware that verifies tokens itself.
func (m *Manager) SigningKey() []byte {
	return m.secret
}

// Issue signs a token for userID that expires after the manager's TTL.
func (m *Manager) Issue(userID int) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the user id embedded in tokenString.
func (m *Manager) Verify(tokenString string) (int, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, m.Keyfunc)
	if err != nil {
		return 0, Classify(err)
	}
	if !tok.Valid || claims.ExpiresAt == nil || claims.UserID <= 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

// Keyfunc only accepts HMAC-signed tokens.
func (m *Manager) Keyfunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return m.secret, nil
}

// Classify maps a jwt parse error to ErrExpired or ErrInvalidToken. A bad
// signature wins over expiry.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidToken
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrInvalidToken
	}
}
