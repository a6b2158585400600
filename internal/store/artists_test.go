package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestAddFavoriteArtistSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO favorite_artists (profile_id, spotify_id)
		VALUES ($1, $2)
		RETURNING id
	`)).
		WithArgs(int64(7), "spotify-abc").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	fav, err := s.AddFavoriteArtist(context.Background(), 7, "spotify-abc")
	if err != nil {
		t.Fatalf("AddFavoriteArtist: %v", err)
	}
	if fav.ID != 5 || fav.SpotifyID != "spotify-abc" {
		t.Fatalf("unexpected favorite: %+v", fav)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAddFavoriteArtistDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO favorite_artists (profile_id, spotify_id)
		VALUES ($1, $2)
		RETURNING id
	`)).
		WithArgs(int64(7), "spotify-abc").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = s.AddFavoriteArtist(context.Background(), 7, "spotify-abc")
	if !errors.Is(err, ErrFavoriteArtistExists) {
		t.Fatalf("expected ErrFavoriteArtistExists, got %v", err)
	}
}

func TestRemoveFavoriteArtistMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM favorite_artists
		WHERE profile_id = $1 AND spotify_id = $2
	`)).
		WithArgs(int64(7), "spotify-abc").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = s.RemoveFavoriteArtist(context.Background(), 7, "spotify-abc")
	if !errors.Is(err, ErrFavoriteArtistNotFound) {
		t.Fatalf("expected ErrFavoriteArtistNotFound, got %v", err)
	}
}

func TestListFavoriteArtistsAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, profile_id, spotify_id
		FROM favorite_artists
		WHERE profile_id = $1
		ORDER BY id ASC`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "profile_id", "spotify_id"}).
			AddRow(int64(1), int64(7), "a").
			AddRow(int64(2), int64(7), "b"))

	favorites, err := s.ListFavoriteArtists(context.Background(), 7, 0, 0)
	if err != nil {
		t.Fatalf("ListFavoriteArtists: %v", err)
	}
	if len(favorites) != 2 || favorites[0].SpotifyID != "a" || favorites[1].SpotifyID != "b" {
		t.Fatalf("unexpected favorites: %+v", favorites)
	}
}

func TestListFavoriteArtistsPaged(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, profile_id, spotify_id
		FROM favorite_artists
		WHERE profile_id = $1
		ORDER BY id ASC
		OFFSET $2 LIMIT $3`)).
		WithArgs(int64(7), 10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "profile_id", "spotify_id"}).
			AddRow(int64(11), int64(7), "k"))

	favorites, err := s.ListFavoriteArtists(context.Background(), 7, 10, 5)
	if err != nil {
		t.Fatalf("ListFavoriteArtists: %v", err)
	}
	if len(favorites) != 1 || favorites[0].SpotifyID != "k" {
		t.Fatalf("unexpected favorites: %+v", favorites)
	}
}

func TestCountFavoriteArtists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT COUNT(*)
		FROM favorite_artists
		WHERE profile_id = $1
	`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(40))

	count, err := s.CountFavoriteArtists(context.Background(), 7)
	if err != nil {
		t.Fatalf("CountFavoriteArtists: %v", err)
	}
	if count != 40 {
		t.Fatalf("expected 40, got %d", count)
	}
}
