package auth

import (
	"context"
	"errors"

	"concertbuddy/internal/store"
)

// ErrBadCredentials is returned when basic credentials do not match a user.
var ErrBadCredentials = errors.New("bad credentials")

// UserSource looks up users for credential verification.
type UserSource interface {
	UserByEmail(ctx context.Context, email string) (store.User, error)
}

// Verifier resolves request credentials into an Identity. It accepts either
// basic email/password pairs or bearer tokens.
type Verifier struct {
	users  UserSource
	tokens *TokenManager
}

// NewVerifier constructs a credential verifier.
func NewVerifier(users UserSource, tokens *TokenManager) *Verifier {
	return &Verifier{users: users, tokens: tokens}
}

// IdentityFromBasic checks an email/password pair against the user store.
// Any lookup or password failure maps to ErrBadCredentials.
func (v *Verifier) IdentityFromBasic(ctx context.Context, email, password string) (Identity, error) {
	user, err := v.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return Identity{}, ErrBadCredentials
		}
		return Identity{}, err
	}

	if err := VerifyPassword(password, user.PasswordHash); err != nil {
		return Identity{}, ErrBadCredentials
	}
	if !user.Enabled || user.AccountLocked {
		return Identity{}, ErrBadCredentials
	}

	return Identity{Email: user.Email, Roles: user.Roles, Authenticated: true}, nil
}

// IdentityFromToken validates a bearer token.
func (v *Verifier) IdentityFromToken(tokenString string) (Identity, error) {
	return v.tokens.Verify(tokenString)
}
