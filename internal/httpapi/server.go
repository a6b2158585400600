// Package httpapi exposes the service over HTTP with JSON request and
// response bodies.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"concertbuddy/internal/app/access"
	"concertbuddy/internal/app/comments"
	"concertbuddy/internal/app/prefs"
	"concertbuddy/internal/app/users"
	"concertbuddy/internal/auth"
	"concertbuddy/internal/musicapi"
	"concertbuddy/internal/store"
)

// PreferenceService captures the preference workflows needed by the handlers.
type PreferenceService interface {
	GetPreferences(ctx context.Context, caller auth.Identity, userID int64, full bool) (prefs.View, error)
	UpdatePreferences(ctx context.Context, caller auth.Identity, userID int64, req prefs.UpdateRequest) (prefs.BasicView, error)
	AddFavoriteArtist(ctx context.Context, caller auth.Identity, userID int64, spotifyID string) (musicapi.Artist, error)
	RemoveFavoriteArtist(ctx context.Context, caller auth.Identity, userID int64, spotifyID string) (prefs.Confirmation, error)
	ListFavoriteArtists(ctx context.Context, caller auth.Identity, userID int64, page, pageSize int) ([]musicapi.Artist, error)
	SearchArtists(ctx context.Context, query string, limit int) ([]musicapi.Artist, error)
	AddFavoriteGenre(ctx context.Context, caller auth.Identity, userID int64, query prefs.GenreQuery) (prefs.GenreView, error)
	RemoveFavoriteGenre(ctx context.Context, caller auth.Identity, userID int64, query prefs.GenreQuery) (prefs.Confirmation, error)
	ListFavoriteGenres(ctx context.Context, caller auth.Identity, userID int64, page, pageSize int) ([]prefs.GenreView, error)
	AllGenres(ctx context.Context) ([]prefs.GenreView, error)
}

// UserService captures the account workflows needed by the handlers.
type UserService interface {
	Register(ctx context.Context, req users.RegisterRequest) (users.Account, error)
	Login(ctx context.Context, email, password string) (users.Session, error)
	ChangePassword(ctx context.Context, caller auth.Identity, userID int64, current, updated string) error
	UpdateProfile(ctx context.Context, caller auth.Identity, userID int64, req users.ProfileUpdate) (users.Account, error)
	GetUser(ctx context.Context, caller auth.Identity, userID int64) (users.Account, error)
	AccountStatus(ctx context.Context, caller auth.Identity, userID int64) (users.Status, error)
}

// CommentService captures the feedback workflows needed by the handlers.
type CommentService interface {
	SubmitGeneral(ctx context.Context, caller auth.Identity, userID int64, text string) (comments.Result, error)
	SubmitConcert(ctx context.Context, caller auth.Identity, userID int64, concertName, text string) (comments.Result, error)
}

// Authenticator resolves request credentials into an identity.
type Authenticator interface {
	IdentityFromBasic(ctx context.Context, email, password string) (auth.Identity, error)
	IdentityFromToken(tokenString string) (auth.Identity, error)
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	prefs    PreferenceService
	users    UserService
	comments CommentService
	verifier Authenticator
}

// NewServer constructs the HTTP server.
func NewServer(prefService PreferenceService, userService UserService, commentService CommentService, verifier Authenticator) *Server {
	return &Server{prefs: prefService, users: userService, comments: commentService, verifier: verifier}
}

// Routes builds the service routing table.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/v1/users", s.handleRegister)
	mux.HandleFunc("POST /api/v1/users/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/users/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/users/logout", s.handleLogout)
	mux.HandleFunc("POST /api/v1/users/{userId}/logout", s.handleLogout)
	mux.HandleFunc("GET /api/v1/users/{userId}", s.handleGetUser)
	mux.HandleFunc("GET /api/v1/users/{userId}/status", s.handleAccountStatus)
	mux.HandleFunc("PUT /api/v1/users/{userId}/password", s.handleChangePassword)
	mux.HandleFunc("PUT /api/v1/users/{userId}/profile", s.handleUpdateProfile)

	mux.HandleFunc("GET /api/v1/users/{userId}/preferences", s.handleGetPreferences)
	mux.HandleFunc("GET /api/v1/users/{userId}/preferences/summary", s.handleGetPreferenceSummary)
	mux.HandleFunc("PUT /api/v1/users/{userId}/preferences", s.handleUpdatePreferences)

	mux.HandleFunc("POST /api/v1/users/{userId}/preferences/artists", s.handleAddFavoriteArtistBody)
	mux.HandleFunc("POST /api/v1/users/{userId}/preferences/artists/{spotifyId}", s.handleAddFavoriteArtist)
	mux.HandleFunc("DELETE /api/v1/users/{userId}/preferences/artists/{spotifyId}", s.handleRemoveFavoriteArtist)
	mux.HandleFunc("GET /api/v1/users/{userId}/preferences/artists", s.handleListFavoriteArtists)

	mux.HandleFunc("POST /api/v1/users/{userId}/preferences/genres", s.handleAddFavoriteGenre)
	mux.HandleFunc("DELETE /api/v1/users/{userId}/preferences/genres", s.handleRemoveFavoriteGenre)
	mux.HandleFunc("GET /api/v1/users/{userId}/preferences/genres", s.handleListFavoriteGenres)

	mux.HandleFunc("GET /api/v1/genres", s.handleListGenres)
	mux.HandleFunc("GET /api/v1/artists/search", s.handleSearchArtists)

	mux.HandleFunc("POST /api/v1/users/{userId}/comments/general", s.handleGeneralComment)
	mux.HandleFunc("POST /api/v1/users/{userId}/comments/concert", s.handleConcertComment)

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

// identity resolves the caller from the Authorization header. A missing
// header yields an unauthenticated identity; a malformed or invalid one is
// reported as an error so the handler can reject with 401.
func (s *Server) identity(r *http.Request) (auth.Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.Identity{}, nil
	}

	if token := parseBearerToken(header); token != "" {
		return s.verifier.IdentityFromToken(token)
	}

	if email, password, ok := r.BasicAuth(); ok {
		return s.verifier.IdentityFromBasic(r.Context(), email, password)
	}

	return auth.Identity{}, auth.ErrInvalidToken
}

// withIdentity resolves the caller and target user id, writing the error
// response itself on failure.
func (s *Server) withIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, int64, bool) {
	caller, err := s.identity(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		return auth.Identity{}, 0, false
	}

	userID, err := strconv.ParseInt(r.PathValue("userId"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return auth.Identity{}, 0, false
	}

	return caller, userID, true
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, access.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
	case errors.Is(err, access.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "access denied"})
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrProfileNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "user not found"})
	case errors.Is(err, musicapi.ErrArtistNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "artist not found"})
	case errors.Is(err, store.ErrGenreNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "genre not found"})
	case errors.Is(err, store.ErrFavoriteArtistNotFound),
		errors.Is(err, store.ErrFavoriteGenreNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "favorite not found"})
	case errors.Is(err, prefs.ErrArtistLimitReached),
		errors.Is(err, prefs.ErrGenreLimitReached),
		errors.Is(err, prefs.ErrInvalidGenreQuery),
		errors.Is(err, store.ErrFavoriteArtistExists),
		errors.Is(err, store.ErrFavoriteGenreExists),
		errors.Is(err, store.ErrEmailTaken),
		errors.Is(err, users.ErrWrongPassword),
		errors.Is(err, comments.ErrEmptyComment):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, users.ErrInvalidCredentials),
		errors.Is(err, users.ErrAccountDisabled):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// pagination reads page/pageSize query parameters, defaulting to the full
// list when absent. "size" is accepted as an alias.
func pagination(r *http.Request) (page, size int) {
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			page = n
		}
	}
	raw := r.URL.Query().Get("pageSize")
	if raw == "" {
		raw = r.URL.Query().Get("size")
	}
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			size = n
		}
	}
	return page, size
}

func parseBearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
