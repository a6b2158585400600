package users

import (
	"context"
	"testing"
	"time"

	"concertbuddy/internal/auth"
	"concertbuddy/internal/store"

	"github.com/stretchr/testify/require"
)

type allowAllGuard struct{}

func (allowAllGuard) Authorize(ctx context.Context, caller auth.Identity, targetUserID int64) error {
	return nil
}

type stubStore struct {
	usersByID    map[int64]store.User
	usersByEmail map[string]store.User
	created      []store.User

	passwordUpdated string
}

func (s *stubStore) CreateUser(ctx context.Context, email, passwordHash, name string, roles []string, loc store.Location) (store.User, error) {
	if _, ok := s.usersByEmail[email]; ok {
		return store.User{}, store.ErrEmailTaken
	}
	user := store.User{ID: int64(len(s.created) + 1), Email: email, PasswordHash: passwordHash, Roles: roles, Enabled: true}
	s.created = append(s.created, user)
	return user, nil
}

func (s *stubStore) UserByID(ctx context.Context, id int64) (store.User, error) {
	user, ok := s.usersByID[id]
	if !ok {
		return store.User{}, store.ErrUserNotFound
	}
	return user, nil
}

func (s *stubStore) UserByEmail(ctx context.Context, email string) (store.User, error) {
	user, ok := s.usersByEmail[email]
	if !ok {
		return store.User{}, store.ErrUserNotFound
	}
	return user, nil
}

func (s *stubStore) ProfileByUserID(ctx context.Context, userID int64) (store.Profile, error) {
	return store.Profile{ID: userID * 10, UserID: userID, Name: "Jane"}, nil
}

func (s *stubStore) LocationByUserID(ctx context.Context, userID int64) (store.Location, error) {
	return store.Location{Municipality: "Austin", State: "Texas", Country: "USA"}, nil
}

func (s *stubStore) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	s.passwordUpdated = passwordHash
	return nil
}

func (s *stubStore) UpdateProfile(ctx context.Context, userID int64, email, name *string, loc *store.Location) error {
	return nil
}

func newTestService(st *stubStore) *Service {
	return New(allowAllGuard{}, st, auth.NewTokenManager("test-secret", time.Hour))
}

func TestRegisterParsesLocation(t *testing.T) {
	st := &stubStore{usersByEmail: map[string]store.User{}}
	svc := newTestService(st)

	account, err := svc.Register(context.Background(), RegisterRequest{
		Email:    " jane@example.com ",
		Password: "s3cret",
		Name:     "Jane",
		Location: "Austin, Texas, USA",
	})
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", account.Email)
	require.Equal(t, []string{auth.RoleUser}, account.Roles)
	require.Equal(t, store.Location{Municipality: "Austin", State: "Texas", Country: "USA"}, account.Location)

	require.Len(t, st.created, 1)
	require.NotEqual(t, "s3cret", st.created[0].PasswordHash, "password must be hashed before storage")
}

func TestParseLocationPartialInput(t *testing.T) {
	tests := []struct {
		raw  string
		want store.Location
	}{
		{"Austin, Texas, USA", store.Location{Municipality: "Austin", State: "Texas", Country: "USA"}},
		{"Austin", store.Location{Municipality: "Austin", State: "Unknown", Country: "Unknown"}},
		{"Austin, Texas", store.Location{Municipality: "Austin", State: "Texas", Country: "Unknown"}},
		{"", store.Location{Municipality: "Unknown", State: "Unknown", Country: "Unknown"}},
		{" , , ", store.Location{Municipality: "Unknown", State: "Unknown", Country: "Unknown"}},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, parseLocation(tc.raw), "input %q", tc.raw)
	}
}

func TestLoginSuccess(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	user := store.User{ID: 1, Email: "jane@example.com", PasswordHash: hash, Roles: []string{auth.RoleUser}, Enabled: true}
	st := &stubStore{
		usersByID:    map[int64]store.User{1: user},
		usersByEmail: map[string]store.User{"jane@example.com": user},
	}
	svc := newTestService(st)

	session, err := svc.Login(context.Background(), "jane@example.com", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	require.Equal(t, "jane@example.com", session.Account.Email)
	require.True(t, session.ExpiresAt.After(time.Now()))
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	user := store.User{ID: 1, Email: "jane@example.com", PasswordHash: hash, Enabled: true}
	st := &stubStore{usersByEmail: map[string]store.User{"jane@example.com": user}}
	svc := newTestService(st)

	_, wrongPassword := svc.Login(context.Background(), "jane@example.com", "nope")
	_, unknownEmail := svc.Login(context.Background(), "ghost@example.com", "s3cret")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
}

func TestLoginDisabledAccount(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	user := store.User{ID: 1, Email: "jane@example.com", PasswordHash: hash, Enabled: false}
	st := &stubStore{usersByEmail: map[string]store.User{"jane@example.com": user}}
	svc := newTestService(st)

	_, err = svc.Login(context.Background(), "jane@example.com", "s3cret")
	require.ErrorIs(t, err, ErrAccountDisabled)
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	hash, err := auth.HashPassword("old-pass")
	require.NoError(t, err)

	user := store.User{ID: 1, Email: "jane@example.com", PasswordHash: hash, Enabled: true}
	st := &stubStore{usersByID: map[int64]store.User{1: user}}
	svc := newTestService(st)

	callerID := auth.Identity{Email: "jane@example.com", Authenticated: true}

	err = svc.ChangePassword(context.Background(), callerID, 1, "wrong", "new-pass")
	require.ErrorIs(t, err, ErrWrongPassword)
	require.Empty(t, st.passwordUpdated)

	err = svc.ChangePassword(context.Background(), callerID, 1, "old-pass", "new-pass")
	require.NoError(t, err)
	require.NotEmpty(t, st.passwordUpdated)
	require.NoError(t, auth.VerifyPassword("new-pass", st.passwordUpdated))
}
