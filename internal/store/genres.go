package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Genre is a catalog entry; membership rows reference it by id.
type Genre struct {
	ID          int64
	Name        string
	Description string
}

// FavoriteGenre is a membership row linking a profile to a catalog genre.
type FavoriteGenre struct {
	ID        int64
	ProfileID int64
	GenreID   int64
}

// GenreByID resolves a catalog genre by its numeric id.
func (s *Store) GenreByID(ctx context.Context, id int64) (Genre, error) {
	return s.scanGenre(s.db.QueryRowContext(ctx, `
		SELECT id, name, description
		FROM music_genres
		WHERE id = $1
	`, id))
}

// GenreByName resolves a catalog genre by name, case-insensitively.
func (s *Store) GenreByName(ctx context.Context, name string) (Genre, error) {
	return s.scanGenre(s.db.QueryRowContext(ctx, `
		SELECT id, name, description
		FROM music_genres
		WHERE LOWER(name) = LOWER($1)
	`, name))
}

func (s *Store) scanGenre(row *sql.Row) (Genre, error) {
	var g Genre
	err := row.Scan(&g.ID, &g.Name, &g.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return Genre{}, ErrGenreNotFound
	}
	if err != nil {
		return Genre{}, fmt.Errorf("scan genre: %w", err)
	}
	return g, nil
}

// ListGenres returns the full genre catalog ordered by name.
func (s *Store) ListGenres(ctx context.Context) ([]Genre, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description
		FROM music_genres
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer rows.Close()

	var genres []Genre
	for rows.Next() {
		var g Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Description); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genres: %w", err)
	}

	return genres, nil
}

// CountFavoriteGenres returns the number of favorite genres for a profile.
func (s *Store) CountFavoriteGenres(ctx context.Context, profileID int64) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM favorite_genres
		WHERE profile_id = $1
	`, profileID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count favorite genres: %w", err)
	}
	return count, nil
}

// FavoriteGenreExists reports whether the (profile, genre) pair is stored.
func (s *Store) FavoriteGenreExists(ctx context.Context, profileID, genreID int64) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM favorite_genres WHERE profile_id = $1 AND genre_id = $2)
	`, profileID, genreID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check favorite genre: %w", err)
	}
	return exists, nil
}

// AddFavoriteGenre inserts a membership row, translating the unique constraint
// into ErrFavoriteGenreExists.
func (s *Store) AddFavoriteGenre(ctx context.Context, profileID, genreID int64) (FavoriteGenre, error) {
	fav := FavoriteGenre{ProfileID: profileID, GenreID: genreID}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO favorite_genres (profile_id, genre_id)
		VALUES ($1, $2)
		RETURNING id
	`, profileID, genreID).Scan(&fav.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return FavoriteGenre{}, ErrFavoriteGenreExists
		}
		return FavoriteGenre{}, fmt.Errorf("insert favorite genre: %w", err)
	}
	return fav, nil
}

// RemoveFavoriteGenre deletes a membership row.
func (s *Store) RemoveFavoriteGenre(ctx context.Context, profileID, genreID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM favorite_genres
		WHERE profile_id = $1 AND genre_id = $2
	`, profileID, genreID)
	if err != nil {
		return fmt.Errorf("delete favorite genre: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrFavoriteGenreNotFound
	}
	return nil
}

// ListFavoriteGenres returns a page of the profile's favorite genres joined
// with their catalog entries, in insertion order. Memberships whose catalog
// row is gone are returned with a nil Genre so callers can degrade them.
// A limit of 0 returns all rows.
func (s *Store) ListFavoriteGenres(ctx context.Context, profileID int64, offset, limit int) ([]FavoriteGenreEntry, error) {
	query := `
		SELECT fg.id, fg.profile_id, fg.genre_id, g.id, g.name, g.description
		FROM favorite_genres fg
		LEFT JOIN music_genres g ON g.id = fg.genre_id
		WHERE fg.profile_id = $1
		ORDER BY fg.id ASC`
	args := []any{profileID}
	if limit > 0 {
		query += `
		OFFSET $2 LIMIT $3`
		args = append(args, offset, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list favorite genres: %w", err)
	}
	defer rows.Close()

	var entries []FavoriteGenreEntry
	for rows.Next() {
		var (
			entry FavoriteGenreEntry
			gID   sql.NullInt64
			gName sql.NullString
			gDesc sql.NullString
		)
		if err := rows.Scan(&entry.Favorite.ID, &entry.Favorite.ProfileID, &entry.Favorite.GenreID, &gID, &gName, &gDesc); err != nil {
			return nil, fmt.Errorf("scan favorite genre: %w", err)
		}
		if gID.Valid {
			entry.Genre = &Genre{ID: gID.Int64, Name: gName.String, Description: gDesc.String}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorite genres: %w", err)
	}

	return entries, nil
}

// FavoriteGenreEntry pairs a membership row with its catalog genre, if present.
type FavoriteGenreEntry struct {
	Favorite FavoriteGenre
	Genre    *Genre
}
