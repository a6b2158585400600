package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// FavoriteArtist is a membership row linking a profile to a Spotify artist id.
// Display metadata is never persisted; it is resolved fresh from the catalog.
type FavoriteArtist struct {
	ID        int64
	ProfileID int64
	SpotifyID string
}

// CountFavoriteArtists returns the number of favorite artists for a profile.
func (s *Store) CountFavoriteArtists(ctx context.Context, profileID int64) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM favorite_artists
		WHERE profile_id = $1
	`, profileID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count favorite artists: %w", err)
	}
	return count, nil
}

// FavoriteArtistExists reports whether the (profile, spotify id) pair is stored.
func (s *Store) FavoriteArtistExists(ctx context.Context, profileID int64, spotifyID string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM favorite_artists WHERE profile_id = $1 AND spotify_id = $2)
	`, profileID, spotifyID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check favorite artist: %w", err)
	}
	return exists, nil
}

// AddFavoriteArtist inserts a membership row. The unique constraint is the
// correctness mechanism under concurrent adds; a violation is reported as
// ErrFavoriteArtistExists.
func (s *Store) AddFavoriteArtist(ctx context.Context, profileID int64, spotifyID string) (FavoriteArtist, error) {
	fav := FavoriteArtist{ProfileID: profileID, SpotifyID: spotifyID}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO favorite_artists (profile_id, spotify_id)
		VALUES ($1, $2)
		RETURNING id
	`, profileID, spotifyID).Scan(&fav.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return FavoriteArtist{}, ErrFavoriteArtistExists
		}
		return FavoriteArtist{}, fmt.Errorf("insert favorite artist: %w", err)
	}
	return fav, nil
}

// RemoveFavoriteArtist deletes a membership row.
func (s *Store) RemoveFavoriteArtist(ctx context.Context, profileID int64, spotifyID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM favorite_artists
		WHERE profile_id = $1 AND spotify_id = $2
	`, profileID, spotifyID)
	if err != nil {
		return fmt.Errorf("delete favorite artist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrFavoriteArtistNotFound
	}
	return nil
}

// FavoriteArtistByID loads a single membership row.
func (s *Store) FavoriteArtistByID(ctx context.Context, profileID int64, spotifyID string) (FavoriteArtist, error) {
	var fav FavoriteArtist
	err := s.db.QueryRowContext(ctx, `
		SELECT id, profile_id, spotify_id
		FROM favorite_artists
		WHERE profile_id = $1 AND spotify_id = $2
	`, profileID, spotifyID).Scan(&fav.ID, &fav.ProfileID, &fav.SpotifyID)
	if errors.Is(err, sql.ErrNoRows) {
		return FavoriteArtist{}, ErrFavoriteArtistNotFound
	}
	if err != nil {
		return FavoriteArtist{}, fmt.Errorf("lookup favorite artist: %w", err)
	}
	return fav, nil
}

// ListFavoriteArtists returns a page of membership rows in insertion order.
// A limit of 0 returns all rows.
func (s *Store) ListFavoriteArtists(ctx context.Context, profileID int64, offset, limit int) ([]FavoriteArtist, error) {
	query := `
		SELECT id, profile_id, spotify_id
		FROM favorite_artists
		WHERE profile_id = $1
		ORDER BY id ASC`
	args := []any{profileID}
	if limit > 0 {
		query += `
		OFFSET $2 LIMIT $3`
		args = append(args, offset, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list favorite artists: %w", err)
	}
	defer rows.Close()

	var favorites []FavoriteArtist
	for rows.Next() {
		var fav FavoriteArtist
		if err := rows.Scan(&fav.ID, &fav.ProfileID, &fav.SpotifyID); err != nil {
			return nil, fmt.Errorf("scan favorite artist: %w", err)
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorite artists: %w", err)
	}

	return favorites, nil
}
