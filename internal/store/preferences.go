package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Default values applied when a profile's preference row is created lazily.
const (
	DefaultSearchRadiusKm    = 25.0
	DefaultEmailNotification = true
)

// Preference is the per-profile preference row.
type Preference struct {
	ID                 int64
	ProfileID          int64
	SearchRadiusKm     float64
	EmailNotifications bool
}

// GetOrCreatePreference returns the profile's preference row, creating it with
// defaults on first access. Two callers racing to create the same row are
// resolved through the unique constraint on profile_id: the loser discards its
// insert and re-reads the winner's row. No lock is held across the operation.
func (s *Store) GetOrCreatePreference(ctx context.Context, profileID int64) (Preference, error) {
	pref, err := s.preferenceByProfile(ctx, profileID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Preference{}, fmt.Errorf("lookup preference: %w", err)
	}

	pref = Preference{
		ProfileID:          profileID,
		SearchRadiusKm:     DefaultSearchRadiusKm,
		EmailNotifications: DefaultEmailNotification,
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO user_preferences (profile_id, search_radius_km, email_notifications)
		VALUES ($1, $2, $3)
		RETURNING id
	`, profileID, pref.SearchRadiusKm, pref.EmailNotifications).Scan(&pref.ID)
	if err == nil {
		return pref, nil
	}
	if !isUniqueViolation(err) {
		return Preference{}, fmt.Errorf("insert preference: %w", err)
	}

	// A concurrent caller won the insert; a single re-read is sufficient.
	pref, err = s.preferenceByProfile(ctx, profileID)
	if errors.Is(err, sql.ErrNoRows) {
		return Preference{}, ErrPreferenceGone
	}
	if err != nil {
		return Preference{}, fmt.Errorf("reread preference: %w", err)
	}
	return pref, nil
}

// UpdatePreference applies the supplied fields to the profile's preference row,
// creating it with defaults first if absent. Nil fields keep prior values.
func (s *Store) UpdatePreference(ctx context.Context, profileID int64, radiusKm *float64, notifications *bool) (Preference, error) {
	pref, err := s.GetOrCreatePreference(ctx, profileID)
	if err != nil {
		return Preference{}, err
	}

	if radiusKm != nil {
		pref.SearchRadiusKm = *radiusKm
	}
	if notifications != nil {
		pref.EmailNotifications = *notifications
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE user_preferences
		SET search_radius_km = $2, email_notifications = $3
		WHERE id = $1
	`, pref.ID, pref.SearchRadiusKm, pref.EmailNotifications); err != nil {
		return Preference{}, fmt.Errorf("update preference: %w", err)
	}

	return pref, nil
}

func (s *Store) preferenceByProfile(ctx context.Context, profileID int64) (Preference, error) {
	var pref Preference
	err := s.db.QueryRowContext(ctx, `
		SELECT id, profile_id, search_radius_km, email_notifications
		FROM user_preferences
		WHERE profile_id = $1
	`, profileID).Scan(&pref.ID, &pref.ProfileID, &pref.SearchRadiusKm, &pref.EmailNotifications)
	if err != nil {
		return Preference{}, err
	}
	return pref, nil
}
