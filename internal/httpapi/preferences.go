package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"concertbuddy/internal/app/prefs"
)

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	caller, userID, ok := s.withIdentity(w, r)
	if !ok {
		return
	}

	// Summary by default; the enriched view costs one catalog call per entry.
	full := false
	if v := r.URL.Query().Get("full"); v != "" {
		full = v == "true" || v == "1"
	}

	view, err := s.prefs.GetPreferences(r.Context(), caller, userID, full)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetPreferenceSummary(w http.ResponseWriter, r *http.Request) {
	caller, userID, ok := s.withIdentity(w, r)
	if !ok {
		return
	}

	view, err := s.prefs.GetPreferences(r.Context(), caller, userID, false)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	caller, userID, ok := s.withIdentity(w, r)
	if !ok {
		return
	}

	var body struct {
		SearchRadiusKm     *float64 `json:"searchRadiusKm"`
		EmailNotifications *bool    `json:"emailNotifications"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if body.SearchRadiusKm != nil && *body.SearchRadiusKm <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "searchRadiusKm must be positive"})
		return
	}

	view, err := s.prefs.UpdatePreferences(r.Context(), caller, userID, prefs.UpdateRequest{
		SearchRadiusKm:     body.SearchRadiusKm,
		EmailNotifications: body.EmailNotifications,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAddFavoriteArtist(w http.ResponseWriter, r *http.Request) {
	caller, userID, ok := s.withIdentity(w, r)
	if !ok {
		return
	}

	spotifyID := r.PathValue("spotifyId")
	if spotifyID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing artist id"})
		return
	}

	artist, err := s.prefs.AddFavoriteArtist(r.Context(), caller, userID, spotifyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, artist)
}

// handleAddFavoriteArtistBody accepts the artist id in the request body
// instead of the path.
func (s *Server) handleAddFavoriteArtistBody(w http.ResponseWriter, r *http.Request) {
	caller, userID, ok := s.withIdentity(w, r)
	if !ok {
		return
	}

	var body struct {
		SpotifyID string `json:"spotifyId"`
	}
	if err := decodeJSON(r, &body); err != nil || body.SpotifyID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "spotifyId is required"})
		return
	}

	artist, err := s.prefs.AddFavoriteArtist(r.Context(), caller, userID, body.SpotifyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, artist)
}

func (s *Server) handleRemoveFavoriteArtist(w http.ResponseWriter, r *http.Request) {
	caller, userID, ok := s.withIdentity(w, r)
	if !ok {
		return
	}

	spotifyID := r.PathValue("spotifyId")
	if spotifyID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing artist id"})
		return
	}

	confirmation, err := s.prefs.RemoveFavoriteArtist(r.Context(), caller, userID, spotifyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, confirmation)
}

func (s *Server) handleListFavoriteArtists(w http.ResponseWriter, r *http.Request) {
	caller, userID, ok := s.withIdentity(w, r)
	if !ok {
		return
	}

	page, size := pagination(r)
	artists, err := s.prefs.ListFavoriteArtists(r.Context(), caller, userID, page, size)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, artists)
}

// The genre selector arrives as a JSON body on both POST and DELETE; deletes
// additionally accept genreId/genreName query parameters for clients that
// cannot send a body with DELETE.
func genreQueryFromBody(r *http.Request) (prefs.GenreQuery, error) {
	var body struct {
		GenreID   *int64  `json:"genreId"`
		GenreName *string `json:"genreName"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return prefs.GenreQuery{}, err
	}
	return prefs.GenreQuery{GenreID: body.GenreID, GenreName: body.GenreName}, nil
}

func genreQueryFromParams(r *http.Request) (prefs.GenreQuery, error) {
	var query prefs.GenreQuery
	if v := r.URL.Query().Get("genreId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return prefs.GenreQuery{}, prefs.ErrInvalidGenreQuery
		}
		query.GenreID = &id
	}
	if v := r.URL.Query().Get("genreName"); v != "" {
		name := v
		query.GenreName = &name
	}
	return query, nil
}

func (s *Server) handleAddFavoriteGenre(w http.ResponseWriter, r *http.Request) {
	caller, userID, ok := s.withIdentity(w, r)
	if !ok {
		return
	}

	query, err := genreQueryFromBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	genre, err := s.prefs.AddFavoriteGenre(r.Context(), caller, userID, query)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, genre)
}

func (s *Server) handleRemoveFavoriteGenre(w http.ResponseWriter, r *http.Request) {
	caller, userID, ok := s.withIdentity(w, r)
	if !ok {
		return
	}

	query, err := genreQueryFromBody(r)
	if err != nil || (query.GenreID == nil && query.GenreName == nil) {
		query, err = genreQueryFromParams(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}

	confirmation, err := s.prefs.RemoveFavoriteGenre(r.Context(), caller, userID, query)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, confirmation)
}

func (s *Server) handleListFavoriteGenres(w http.ResponseWriter, r *http.Request) {
	caller, userID, ok := s.withIdentity(w, r)
	if !ok {
		return
	}

	page, size := pagination(r)
	genres, err := s.prefs.ListFavoriteGenres(r.Context(), caller, userID, page, size)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, genres)
}

func (s *Server) handleListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.prefs.AllGenres(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, genres)
}

func (s *Server) handleSearchArtists(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing search query"})
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	artists, err := s.prefs.SearchArtists(r.Context(), query, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, artists)
}
