package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestCreateUserSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO users (email, password_hash, roles)
		VALUES ($1, $2, $3)
		RETURNING id, enabled, account_locked, created_at, updated_at
	`)).
		WithArgs("jane@example.com", "hash", pq.Array([]string{"ROLE_USER"})).
		WillReturnRows(sqlmock.NewRows([]string{"id", "enabled", "account_locked", "created_at", "updated_at"}).
			AddRow(int64(1), true, false, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO profiles (user_id, name)
		VALUES ($1, $2)
		RETURNING id
	`)).
		WithArgs(int64(1), "Jane").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO profile_locations (profile_id, municipality, state, country)
		VALUES ($1, $2, $3, $4)
	`)).
		WithArgs(int64(10), "Austin", "Texas", "USA").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	user, err := s.CreateUser(context.Background(), "jane@example.com", "hash", "Jane",
		[]string{"ROLE_USER"}, Location{Municipality: "Austin", State: "Texas", Country: "USA"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID != 1 || !user.Enabled || user.AccountLocked {
		t.Fatalf("unexpected user: %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateUserEmailTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO users (email, password_hash, roles)
		VALUES ($1, $2, $3)
		RETURNING id, enabled, account_locked, created_at, updated_at
	`)).
		WithArgs("jane@example.com", "hash", pq.Array([]string{"ROLE_USER"})).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	_, err = s.CreateUser(context.Background(), "jane@example.com", "hash", "Jane",
		[]string{"ROLE_USER"}, Location{})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUpdatePasswordMissingUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`)).
		WithArgs(int64(99), "newhash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = s.UpdatePassword(context.Background(), 99, "newhash")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestProfileByUserIDMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, user_id, name
		FROM profiles
		WHERE user_id = $1
	`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name"}))

	_, err = s.ProfileByUserID(context.Background(), 99)
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}
