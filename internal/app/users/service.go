// Package users implements account lifecycle: registration, login, password
// and profile management.
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"concertbuddy/internal/auth"
	"concertbuddy/internal/store"

	"github.com/rs/zerolog/log"
)

var (
	// ErrInvalidCredentials is returned when the login email or password is wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountDisabled is returned when a disabled or locked account logs in.
	ErrAccountDisabled = errors.New("account is disabled or locked")
	// ErrWrongPassword is returned on a password change with a bad current password.
	ErrWrongPassword = errors.New("current password is incorrect")
)

// Store defines the persistence operations the service needs.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash, name string, roles []string, loc store.Location) (store.User, error)
	UserByID(ctx context.Context, id int64) (store.User, error)
	UserByEmail(ctx context.Context, email string) (store.User, error)
	ProfileByUserID(ctx context.Context, userID int64) (store.Profile, error)
	LocationByUserID(ctx context.Context, userID int64) (store.Location, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	UpdateProfile(ctx context.Context, userID int64, email, name *string, loc *store.Location) error
}

// Guard authorizes a caller to act on a target user's account.
type Guard interface {
	Authorize(ctx context.Context, caller auth.Identity, targetUserID int64) error
}

// Service implements account workflows.
type Service struct {
	guard  Guard
	store  Store
	tokens *auth.TokenManager
}

// New constructs the user service.
func New(guard Guard, st Store, tokens *auth.TokenManager) *Service {
	return &Service{guard: guard, store: st, tokens: tokens}
}

// RegisterRequest carries the fields needed to create an account.
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
	// Location is a free-form "City, State, Country" string.
	Location string
}

// Account is the public view of a user.
type Account struct {
	UserID   int64          `json:"userId"`
	Email    string         `json:"email"`
	Name     string         `json:"name"`
	Roles    []string       `json:"roles"`
	Location store.Location `json:"location"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Account   Account   `json:"account"`
}

// Status reports the account flags.
type Status struct {
	UserID        int64 `json:"userId"`
	Enabled       bool  `json:"enabled"`
	AccountLocked bool  `json:"accountLocked"`
}

// Register creates a user with a profile and parsed location. New accounts
// get the standard user role.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (Account, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return Account{}, err
	}

	loc := parseLocation(req.Location)
	user, err := s.store.CreateUser(ctx, strings.TrimSpace(req.Email), hash, strings.TrimSpace(req.Name), []string{auth.RoleUser}, loc)
	if err != nil {
		return Account{}, err
	}

	log.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("user registered")
	return Account{UserID: user.ID, Email: user.Email, Name: strings.TrimSpace(req.Name), Roles: user.Roles, Location: loc}, nil
}

// Login verifies credentials and issues a session token. Credential failures
// are indistinguishable so callers cannot probe for registered emails.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.store.UserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if err := auth.VerifyPassword(password, user.PasswordHash); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	if !user.Enabled || user.AccountLocked {
		return Session{}, ErrAccountDisabled
	}

	token, err := s.tokens.Issue(user.Email, user.Roles)
	if err != nil {
		return Session{}, err
	}

	account, err := s.accountView(ctx, user)
	if err != nil {
		return Session{}, err
	}

	log.Info().Int64("user_id", user.ID).Msg("user logged in")
	return Session{Token: token, ExpiresAt: time.Now().Add(s.tokens.TTL()), Account: account}, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, caller auth.Identity, userID int64, current, updated string) error {
	if err := s.guard.Authorize(ctx, caller, userID); err != nil {
		return err
	}

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := auth.VerifyPassword(current, user.PasswordHash); err != nil {
		return ErrWrongPassword
	}

	hash, err := auth.HashPassword(updated)
	if err != nil {
		return err
	}

	if err := s.store.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	log.Info().Int64("user_id", userID).Msg("password changed")
	return nil
}

// ProfileUpdate carries the independently optional profile fields.
type ProfileUpdate struct {
	Email    *string
	Name     *string
	Location *string
}

// UpdateProfile applies the supplied profile fields.
func (s *Service) UpdateProfile(ctx context.Context, caller auth.Identity, userID int64, req ProfileUpdate) (Account, error) {
	if err := s.guard.Authorize(ctx, caller, userID); err != nil {
		return Account{}, err
	}

	var loc *store.Location
	if req.Location != nil {
		parsed := parseLocation(*req.Location)
		loc = &parsed
	}

	if err := s.store.UpdateProfile(ctx, userID, req.Email, req.Name, loc); err != nil {
		return Account{}, err
	}

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return Account{}, err
	}

	log.Info().Int64("user_id", userID).Msg("profile updated")
	return s.accountView(ctx, user)
}

// GetUser returns the public view of an account.
func (s *Service) GetUser(ctx context.Context, caller auth.Identity, userID int64) (Account, error) {
	if err := s.guard.Authorize(ctx, caller, userID); err != nil {
		return Account{}, err
	}

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return Account{}, err
	}

	return s.accountView(ctx, user)
}

// AccountStatus reports the enabled and locked flags.
func (s *Service) AccountStatus(ctx context.Context, caller auth.Identity, userID int64) (Status, error) {
	if err := s.guard.Authorize(ctx, caller, userID); err != nil {
		return Status{}, err
	}

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return Status{}, err
	}

	return Status{UserID: user.ID, Enabled: user.Enabled, AccountLocked: user.AccountLocked}, nil
}

func (s *Service) accountView(ctx context.Context, user store.User) (Account, error) {
	profile, err := s.store.ProfileByUserID(ctx, user.ID)
	if err != nil {
		return Account{}, err
	}

	loc, err := s.store.LocationByUserID(ctx, user.ID)
	if err != nil {
		return Account{}, err
	}

	return Account{UserID: user.ID, Email: user.Email, Name: profile.Name, Roles: user.Roles, Location: loc}, nil
}

// parseLocation splits a "City, State, Country" string. Missing parts fall
// back to "Unknown".
func parseLocation(raw string) store.Location {
	loc := store.Location{Municipality: "Unknown", State: "Unknown", Country: "Unknown"}
	parts := strings.Split(raw, ",")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) != "" {
		loc.Municipality = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		loc.State = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		loc.Country = strings.TrimSpace(parts[2])
	}
	return loc
}
