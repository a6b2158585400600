package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	selectPreferenceQuery = `
		SELECT id, profile_id, search_radius_km, email_notifications
		FROM user_preferences
		WHERE profile_id = $1
	`
	insertPreferenceQuery = `
		INSERT INTO user_preferences (profile_id, search_radius_km, email_notifications)
		VALUES ($1, $2, $3)
		RETURNING id
	`
)

func preferenceRows(id, profileID int64, radius float64, notifications bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "profile_id", "search_radius_km", "email_notifications"}).
		AddRow(id, profileID, radius, notifications)
}

func TestGetOrCreatePreferenceExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectPreferenceQuery)).
		WithArgs(int64(7)).
		WillReturnRows(preferenceRows(3, 7, 50.0, false))

	pref, err := s.GetOrCreatePreference(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetOrCreatePreference: %v", err)
	}
	if pref.ID != 3 || pref.SearchRadiusKm != 50.0 || pref.EmailNotifications {
		t.Fatalf("unexpected preference: %+v", pref)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetOrCreatePreferenceCreatesDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectPreferenceQuery)).
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta(insertPreferenceQuery)).
		WithArgs(int64(7), DefaultSearchRadiusKm, DefaultEmailNotification).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	pref, err := s.GetOrCreatePreference(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetOrCreatePreference: %v", err)
	}
	if pref.ID != 11 {
		t.Fatalf("expected id 11, got %d", pref.ID)
	}
	if pref.SearchRadiusKm != DefaultSearchRadiusKm {
		t.Fatalf("expected default radius, got %v", pref.SearchRadiusKm)
	}
	if !pref.EmailNotifications {
		t.Fatalf("expected notifications enabled by default")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetOrCreatePreferenceLosesRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectPreferenceQuery)).
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	// A concurrent caller creates the row between our select and insert.
	mock.ExpectQuery(regexp.QuoteMeta(insertPreferenceQuery)).
		WithArgs(int64(7), DefaultSearchRadiusKm, DefaultEmailNotification).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	mock.ExpectQuery(regexp.QuoteMeta(selectPreferenceQuery)).
		WithArgs(int64(7)).
		WillReturnRows(preferenceRows(12, 7, DefaultSearchRadiusKm, true))

	pref, err := s.GetOrCreatePreference(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetOrCreatePreference: %v", err)
	}
	if pref.ID != 12 {
		t.Fatalf("expected winner's row, got %+v", pref)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetOrCreatePreferenceRereadGone(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectPreferenceQuery)).
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta(insertPreferenceQuery)).
		WithArgs(int64(7), DefaultSearchRadiusKm, DefaultEmailNotification).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	mock.ExpectQuery(regexp.QuoteMeta(selectPreferenceQuery)).
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	_, err = s.GetOrCreatePreference(context.Background(), 7)
	if !errors.Is(err, ErrPreferenceGone) {
		t.Fatalf("expected ErrPreferenceGone, got %v", err)
	}
}

func TestUpdatePreferencePartialFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectPreferenceQuery)).
		WithArgs(int64(7)).
		WillReturnRows(preferenceRows(3, 7, 25.0, true))

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE user_preferences
		SET search_radius_km = $2, email_notifications = $3
		WHERE id = $1
	`)).
		WithArgs(int64(3), 80.0, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	radius := 80.0
	pref, err := s.UpdatePreference(context.Background(), 7, &radius, nil)
	if err != nil {
		t.Fatalf("UpdatePreference: %v", err)
	}
	if pref.SearchRadiusKm != 80.0 {
		t.Fatalf("expected radius updated, got %v", pref.SearchRadiusKm)
	}
	if !pref.EmailNotifications {
		t.Fatalf("expected notifications unchanged")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
