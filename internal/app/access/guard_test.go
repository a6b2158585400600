package access

import (
	"context"
	"errors"
	"testing"

	"concertbuddy/internal/auth"
	"concertbuddy/internal/store"
)

type stubDirectory struct {
	users map[int64]store.User
}

func (d *stubDirectory) UserByID(ctx context.Context, id int64) (store.User, error) {
	user, ok := d.users[id]
	if !ok {
		return store.User{}, store.ErrUserNotFound
	}
	return user, nil
}

func (d *stubDirectory) UserExists(ctx context.Context, id int64) (bool, error) {
	_, ok := d.users[id]
	return ok, nil
}

func TestAuthorize(t *testing.T) {
	dir := &stubDirectory{users: map[int64]store.User{
		1: {ID: 1, Email: "owner@example.com"},
		2: {ID: 2, Email: "other@example.com"},
	}}
	guard := NewGuard(dir)

	owner := auth.Identity{Email: "owner@example.com", Roles: []string{auth.RoleUser}, Authenticated: true}
	admin := auth.Identity{Email: "admin@example.com", Roles: []string{auth.RoleUser, auth.RoleAdmin}, Authenticated: true}

	tests := []struct {
		name    string
		caller  auth.Identity
		target  int64
		wantErr error
	}{
		{name: "owner accesses self", caller: owner, target: 1},
		{name: "owner denied other user", caller: owner, target: 2, wantErr: ErrForbidden},
		{name: "owner missing target", caller: owner, target: 9, wantErr: store.ErrUserNotFound},
		{name: "admin accesses any user", caller: admin, target: 2},
		{name: "admin missing target", caller: admin, target: 9, wantErr: store.ErrUserNotFound},
		{name: "unauthenticated", caller: auth.Identity{}, target: 1, wantErr: ErrNotAuthenticated},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := guard.Authorize(context.Background(), tc.caller, tc.target)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
