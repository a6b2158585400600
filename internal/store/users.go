package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// User is an account row. Roles follow the ROLE_USER / ROLE_ADMIN convention.
type User struct {
	ID            int64
	Email         string
	PasswordHash  string
	Roles         []string
	Enabled       bool
	AccountLocked bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Profile anchors preference and favorites data for one user.
type Profile struct {
	ID     int64
	UserID int64
	Name   string
}

// Location is a profile's coarse geographic location.
type Location struct {
	Municipality string
	State        string
	Country      string
}

// CreateUser registers a user with a profile and location in one transaction.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash, name string, roles []string, loc Location) (User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var user User
	user.Email = email
	user.PasswordHash = passwordHash
	user.Roles = roles
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, roles)
		VALUES ($1, $2, $3)
		RETURNING id, enabled, account_locked, created_at, updated_at
	`, email, passwordHash, pq.Array(roles)).Scan(&user.ID, &user.Enabled, &user.AccountLocked, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	var profileID int64
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO profiles (user_id, name)
		VALUES ($1, $2)
		RETURNING id
	`, user.ID, name).Scan(&profileID); err != nil {
		return User{}, fmt.Errorf("insert profile: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO profile_locations (profile_id, municipality, state, country)
		VALUES ($1, $2, $3, $4)
	`, profileID, loc.Municipality, loc.State, loc.Country); err != nil {
		return User{}, fmt.Errorf("insert profile location: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return User{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return user, nil
}

// UserByID loads a user row.
func (s *Store) UserByID(ctx context.Context, id int64) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, roles, enabled, account_locked, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id))
}

// UserByEmail loads a user row by its unique email.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, roles, enabled, account_locked, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email))
}

func (s *Store) scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, pq.Array(&u.Roles), &u.Enabled, &u.AccountLocked, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// UserExists reports whether a user row exists for the id.
func (s *Store) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}

// ProfileByUserID resolves the profile owned by a user.
func (s *Store) ProfileByUserID(ctx context.Context, userID int64) (Profile, error) {
	var p Profile
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name
		FROM profiles
		WHERE user_id = $1
	`, userID).Scan(&p.ID, &p.UserID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("lookup profile: %w", err)
	}
	return p, nil
}

// UpdatePassword replaces a user's password hash.
func (s *Store) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateProfile applies the supplied profile fields; nil fields keep prior values.
func (s *Store) UpdateProfile(ctx context.Context, userID int64, email, name *string, loc *Location) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if email != nil {
		if _, err := tx.ExecContext(ctx, `
			UPDATE users
			SET email = $2, updated_at = NOW()
			WHERE id = $1
		`, userID, *email); err != nil {
			if isUniqueViolation(err) {
				return ErrEmailTaken
			}
			return fmt.Errorf("update email: %w", err)
		}
	}

	if name != nil {
		if _, err := tx.ExecContext(ctx, `
			UPDATE profiles
			SET name = $2
			WHERE user_id = $1
		`, userID, *name); err != nil {
			return fmt.Errorf("update profile name: %w", err)
		}
	}

	if loc != nil {
		if _, err := tx.ExecContext(ctx, `
			UPDATE profile_locations
			SET municipality = $2, state = $3, country = $4
			WHERE profile_id = (SELECT id FROM profiles WHERE user_id = $1)
		`, userID, loc.Municipality, loc.State, loc.Country); err != nil {
			return fmt.Errorf("update profile location: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return nil
}

// LocationByUserID loads the location attached to a user's profile.
func (s *Store) LocationByUserID(ctx context.Context, userID int64) (Location, error) {
	var loc Location
	err := s.db.QueryRowContext(ctx, `
		SELECT pl.municipality, pl.state, pl.country
		FROM profile_locations pl
		JOIN profiles p ON p.id = pl.profile_id
		WHERE p.user_id = $1
	`, userID).Scan(&loc.Municipality, &loc.State, &loc.Country)
	if errors.Is(err, sql.ErrNoRows) {
		return Location{}, ErrProfileNotFound
	}
	if err != nil {
		return Location{}, fmt.Errorf("lookup location: %w", err)
	}
	return loc, nil
}
