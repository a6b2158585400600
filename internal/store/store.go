package store

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrEmailTaken signals the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUserNotFound indicates no user exists with the given id or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrProfileNotFound indicates a user has no profile row.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrPreferenceGone indicates a preference row could not be read back after
	// an insert conflict. This should never happen outside a broken schema.
	ErrPreferenceGone = errors.New("preference row missing after conflict")
	// ErrFavoriteArtistExists signals the (profile, artist) pair already exists.
	ErrFavoriteArtistExists = errors.New("artist already in favorites")
	// ErrFavoriteArtistNotFound indicates no such favorite membership.
	ErrFavoriteArtistNotFound = errors.New("favorite artist not found")
	// ErrFavoriteGenreExists signals the (profile, genre) pair already exists.
	ErrFavoriteGenreExists = errors.New("genre already in favorites")
	// ErrFavoriteGenreNotFound indicates no such favorite membership.
	ErrFavoriteGenreNotFound = errors.New("favorite genre not found")
	// ErrGenreNotFound indicates the genre catalog has no such genre.
	ErrGenreNotFound = errors.New("genre not found")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
