// Package auth holds the caller identity model and credential primitives.
// Identity is always passed explicitly; there is no ambient security context.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Role names stored on user rows and carried in tokens.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// ErrInvalidToken indicates a bearer token that failed validation.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated principal for the current request. The zero
// value is an unauthenticated caller.
type Identity struct {
	Email         string
	Roles         []string
	Authenticated bool
}

// IsAdmin reports whether the identity carries the administrator role.
func (id Identity) IsAdmin() bool {
	for _, role := range id.Roles {
		if role == RoleAdmin {
			return true
		}
	}
	return false
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a bcrypt hash.
func VerifyPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// TokenManager issues and validates signed bearer tokens carrying the
// principal's email and roles.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a token manager with the given signing secret.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// TTL reports how long issued tokens remain valid.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

type claims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Issue creates a signed token for the identity.
func (m *TokenManager) Issue(email string, roles []string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the identity it carries.
func (m *TokenManager) Verify(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	c, ok := token.Claims.(*claims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		Email:         c.Email,
		Roles:         c.Roles,
		Authenticated: true,
	}, nil
}
