// Package access implements the self-or-admin ownership rule applied before
// every preference and account operation.
package access

import (
	"context"
	"errors"
	"fmt"

	"concertbuddy/internal/auth"
	"concertbuddy/internal/store"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNotAuthenticated indicates the request carried no valid principal.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrForbidden indicates the caller does not own the target resource.
	ErrForbidden = errors.New("access denied")
)

// UserDirectory resolves user ids to account records.
type UserDirectory interface {
	UserByID(ctx context.Context, id int64) (store.User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
}

// Guard answers "may this caller act on user X?".
type Guard struct {
	users UserDirectory
}

// NewGuard constructs a Guard over the given user directory.
func NewGuard(users UserDirectory) *Guard {
	return &Guard{users: users}
}

// Authorize enforces the self-or-admin rule. Admins are granted access to any
// existing user; a missing target yields store.ErrUserNotFound for admins and
// non-admins alike so the two cases are indistinguishable to callers. It has
// no side effects and is invoked explicitly per operation.
func (g *Guard) Authorize(ctx context.Context, caller auth.Identity, targetUserID int64) error {
	if !caller.Authenticated {
		return ErrNotAuthenticated
	}

	if caller.IsAdmin() {
		exists, err := g.users.UserExists(ctx, targetUserID)
		if err != nil {
			return fmt.Errorf("check target user: %w", err)
		}
		if !exists {
			return store.ErrUserNotFound
		}
		log.Debug().Int64("user_id", targetUserID).Str("caller", caller.Email).Msg("admin access granted")
		return nil
	}

	target, err := g.users.UserByID(ctx, targetUserID)
	if err != nil {
		return err
	}

	if target.Email != caller.Email {
		log.Warn().Int64("user_id", targetUserID).Str("caller", caller.Email).Msg("ownership check failed")
		return ErrForbidden
	}

	return nil
}
