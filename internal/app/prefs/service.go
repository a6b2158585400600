// Package prefs orchestrates per-user preference state: the lazily created
// preference row and the bounded favorite artist and genre sets.
package prefs

import (
	"context"
	"errors"
	"fmt"

	"concertbuddy/internal/auth"
	"concertbuddy/internal/musicapi"
	"concertbuddy/internal/store"

	"github.com/rs/zerolog/log"
)

// Hard caps on the favorite sets.
const (
	MaxFavoriteArtists = 40
	MaxFavoriteGenres  = 30

	defaultArtistSearchResults = 20
	maxArtistSearchResults     = 50
)

// Placeholder names substituted when the catalog cannot resolve an id.
const (
	unknownArtistName = "Unknown Artist"
	unknownGenreName  = "Unknown Genre"
)

var (
	// ErrArtistLimitReached signals the favorite-artist cap was hit.
	ErrArtistLimitReached = fmt.Errorf("favorite artist limit of %d reached", MaxFavoriteArtists)
	// ErrGenreLimitReached signals the favorite-genre cap was hit.
	ErrGenreLimitReached = fmt.Errorf("favorite genre limit of %d reached", MaxFavoriteGenres)
	// ErrInvalidGenreQuery indicates neither or both of genre id and name were given.
	ErrInvalidGenreQuery = errors.New("exactly one of genreId or genreName must be provided")
)

// Store defines the persistence operations required by the facade.
type Store interface {
	ProfileByUserID(ctx context.Context, userID int64) (store.Profile, error)

	GetOrCreatePreference(ctx context.Context, profileID int64) (store.Preference, error)
	UpdatePreference(ctx context.Context, profileID int64, radiusKm *float64, notifications *bool) (store.Preference, error)

	CountFavoriteArtists(ctx context.Context, profileID int64) (int, error)
	FavoriteArtistExists(ctx context.Context, profileID int64, spotifyID string) (bool, error)
	AddFavoriteArtist(ctx context.Context, profileID int64, spotifyID string) (store.FavoriteArtist, error)
	RemoveFavoriteArtist(ctx context.Context, profileID int64, spotifyID string) error
	FavoriteArtistByID(ctx context.Context, profileID int64, spotifyID string) (store.FavoriteArtist, error)
	ListFavoriteArtists(ctx context.Context, profileID int64, offset, limit int) ([]store.FavoriteArtist, error)

	GenreByID(ctx context.Context, id int64) (store.Genre, error)
	GenreByName(ctx context.Context, name string) (store.Genre, error)
	ListGenres(ctx context.Context) ([]store.Genre, error)
	CountFavoriteGenres(ctx context.Context, profileID int64) (int, error)
	FavoriteGenreExists(ctx context.Context, profileID, genreID int64) (bool, error)
	AddFavoriteGenre(ctx context.Context, profileID, genreID int64) (store.FavoriteGenre, error)
	RemoveFavoriteGenre(ctx context.Context, profileID, genreID int64) error
	ListFavoriteGenres(ctx context.Context, profileID int64, offset, limit int) ([]store.FavoriteGenreEntry, error)
}

// Guard authorizes a caller to act on a target user's resources.
type Guard interface {
	Authorize(ctx context.Context, caller auth.Identity, targetUserID int64) error
}

// Service coordinates preference workflows. Every operation authorizes the
// caller first, then resolves the target user's profile.
type Service struct {
	guard   Guard
	store   Store
	catalog musicapi.ArtistCatalog
}

// New constructs the preference service.
func New(guard Guard, st Store, catalog musicapi.ArtistCatalog) *Service {
	return &Service{guard: guard, store: st, catalog: catalog}
}

// UpdateRequest carries the independently optional preference fields.
type UpdateRequest struct {
	SearchRadiusKm     *float64
	EmailNotifications *bool
}

// BasicView is the preference row without favorite enrichment.
type BasicView struct {
	PreferenceID       int64   `json:"preferenceId"`
	ProfileID          int64   `json:"profileId"`
	SearchRadiusKm     float64 `json:"searchRadiusKm"`
	EmailNotifications bool    `json:"emailNotifications"`
}

// View is the full or summary preference response. In the summary form the
// favorite lists are empty and only the counts are populated.
type View struct {
	BasicView
	FavoriteArtists      []musicapi.Artist `json:"favoriteArtists"`
	FavoriteGenres       []GenreView       `json:"favoriteGenres"`
	FavoriteArtistsCount int               `json:"favoriteArtistsCount"`
	FavoriteGenresCount  int               `json:"favoriteGenresCount"`
	MaxFavoriteArtists   int               `json:"maxFavoriteArtists"`
	MaxFavoriteGenres    int               `json:"maxFavoriteGenres"`
}

// GenreView is a catalog genre as returned to clients. GenreID is null for
// placeholder entries whose catalog row is gone.
type GenreView struct {
	GenreID     *int64 `json:"genreId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Confirmation acknowledges a successful removal.
type Confirmation struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

// GenreQuery selects a catalog genre by numeric id or case-insensitive name.
// Exactly one selector must be set.
type GenreQuery struct {
	GenreID   *int64
	GenreName *string
}

func (q GenreQuery) validate() error {
	if (q.GenreID == nil) == (q.GenreName == nil) {
		return ErrInvalidGenreQuery
	}
	return nil
}

// GetPreferences returns the caller-visible preference state, creating the
// preference row with defaults on first access. With full=true the favorite
// lists are enriched against the catalogs; otherwise only counts are returned.
func (s *Service) GetPreferences(ctx context.Context, caller auth.Identity, userID int64, full bool) (View, error) {
	if err := s.guard.Authorize(ctx, caller, userID); err != nil {
		return View{}, err
	}

	profile, err := s.store.ProfileByUserID(ctx, userID)
	if err != nil {
		return View{}, err
	}

	pref, err := s.store.GetOrCreatePreference(ctx, profile.ID)
	if err != nil {
		return View{}, err
	}

	view := View{
		BasicView:          basicView(pref),
		FavoriteArtists:    []musicapi.Artist{},
		FavoriteGenres:     []GenreView{},
		MaxFavoriteArtists: MaxFavoriteArtists,
		MaxFavoriteGenres:  MaxFavoriteGenres,
	}

	if !full {
		artistCount, err := s.store.CountFavoriteArtists(ctx, profile.ID)
		if err != nil {
			return View{}, err
		}
		genreCount, err := s.store.CountFavoriteGenres(ctx, profile.ID)
		if err != nil {
			return View{}, err
		}
		view.FavoriteArtistsCount = artistCount
		view.FavoriteGenresCount = genreCount
		return view, nil
	}

	artists, err := s.listArtists(ctx, profile.ID, 0, 0)
	if err != nil {
		return View{}, err
	}
	genres, err := s.listGenres(ctx, profile.ID, 0, 0)
	if err != nil {
		return View{}, err
	}

	view.FavoriteArtists = artists
	view.FavoriteGenres = genres
	view.FavoriteArtistsCount = len(artists)
	view.FavoriteGenresCount = len(genres)
	return view, nil
}

// UpdatePreferences applies the supplied fields and returns the basic view.
func (s *Service) UpdatePreferences(ctx context.Context, caller auth.Identity, userID int64, req UpdateRequest) (BasicView, error) {
	if err := s.guard.Authorize(ctx, caller, userID); err != nil {
		return BasicView{}, err
	}

	profile, err := s.store.ProfileByUserID(ctx, userID)
	if err != nil {
		return BasicView{}, err
	}

	pref, err := s.store.UpdatePreference(ctx, profile.ID, req.SearchRadiusKm, req.EmailNotifications)
	if err != nil {
		return BasicView{}, err
	}

	log.Info().Int64("user_id", userID).Msg("preferences updated")
	return basicView(pref), nil
}

// AddFavoriteArtist favorites a Spotify artist for the user. Checks run in a
// fixed order so error precedence is deterministic: limit, then catalog
// existence, then duplicate membership.
func (s *Service) AddFavoriteArtist(ctx context.Context, caller auth.Identity, userID int64, spotifyID string) (musicapi.Artist, error) {
	if err := s.guard.Authorize(ctx, caller, userID); err != nil {
		return musicapi.Artist{}, err
	}

	profile, err := s.store.ProfileByUserID(ctx, userID)
	if err != nil {
		return musicapi.Artist{}, err
	}

	count, err := s.store.CountFavoriteArtists(ctx, profile.ID)
	if err != nil {
		return musicapi.Artist{}, err
	}
	if count >= MaxFavoriteArtists {
		return musicapi.Artist{}, ErrArtistLimitReached
	}

	// The artist must exist upstream; a catalog outage fails the add.
	artist, err := s.catalog.GetArtist(ctx, spotifyID)
	if err != nil {
		if errors.Is(err, musicapi.ErrArtistNotFound) {
			return musicapi.Artist{}, err
		}
		return musicapi.Artist{}, fmt.Errorf("resolve artist %q: %w", spotifyID, err)
	}

	// Pre-check is a fast path only; the unique constraint decides races.
	exists, err := s.store.FavoriteArtistExists(ctx, profile.ID, spotifyID)
	if err != nil {
		return musicapi.Artist{}, err
	}
	if exists {
		return musicapi.Artist{}, store.ErrFavoriteArtistExists
	}

	if _, err := s.store.AddFavoriteArtist(ctx, profile.ID, spotifyID); err != nil {
		return musicapi.Artist{}, err
	}

	log.Info().Int64("user_id", userID).Str("spotify_id", spotifyID).Int("total", count+1).Msg("favorite artist added")
	return artist, nil
}

// RemoveFavoriteArtist unfavorites an artist. The confirmation name is
// resolved best-effort; removal succeeds even when the catalog is down.
func (s *Service) RemoveFavoriteArtist(ctx context.Context, caller auth.Identity, userID int64, spotifyID string) (Confirmation, error) {
	if err := s.guard.Authorize(ctx, caller, userID); err != nil {
		return Confirmation{}, err
	}

	profile, err := s.store.ProfileByUserID(ctx, userID)
	if err != nil {
		return Confirmation{}, err
	}

	if _, err := s.store.FavoriteArtistByID(ctx, profile.ID, spotifyID); err != nil {
		return Confirmation{}, err
	}

	name := unknownArtistName
	if artist, err := s.catalog.GetArtist(ctx, spotifyID); err == nil {
		name = artist.Name
	} else {
		log.Warn().Err(err).Str("spotify_id", spotifyID).Msg("could not resolve artist name for removal")
	}

	if err := s.store.RemoveFavoriteArtist(ctx, profile.ID, spotifyID); err != nil {
		return Confirmation{}, err
	}

	log.Info().Int64("user_id", userID).Str("spotify_id", spotifyID).Msg("favorite artist removed")
	return Confirmation{Message: "Artist removed successfully", Name: name}, nil
}

// ListFavoriteArtists returns a page of the user's favorite artists enriched
// with catalog metadata. Entries the catalog cannot resolve degrade to a
// placeholder instead of failing the page.
func (s *Service) ListFavoriteArtists(ctx context.Context, caller auth.Identity, userID int64, page, pageSize int) ([]musicapi.Artist, error) {
	if err := s.guard.Authorize(ctx, caller, userID); err != nil {
		return nil, err
	}

	profile, err := s.store.ProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.listArtists(ctx, profile.ID, page*pageSize, pageSize)
}

func (s *Service) listArtists(ctx context.Context, profileID int64, offset, limit int) ([]musicapi.Artist, error) {
	favorites, err := s.store.ListFavoriteArtists(ctx, profileID, offset, limit)
	if err != nil {
		return nil, err
	}

	artists := make([]musicapi.Artist, 0, len(favorites))
	for _, fav := range favorites {
		artist, err := s.catalog.GetArtist(ctx, fav.SpotifyID)
		if err != nil {
			log.Warn().Err(err).Str("spotify_id", fav.SpotifyID).Msg("catalog lookup failed, using placeholder")
			artist = musicapi.Artist{SpotifyID: fav.SpotifyID, Name: unknownArtistName}
		}
		artists = append(artists, artist)
	}

	return artists, nil
}

// AddFavoriteGenre favorites a catalog genre selected by id or name.
func (s *Service) AddFavoriteGenre(ctx context.Context, caller auth.Identity, userID int64, query GenreQuery) (GenreView, error) {
	if err := s.guard.Authorize(ctx, caller, userID); err != nil {
		return GenreView{}, err
	}

	profile, err := s.store.ProfileByUserID(ctx, userID)
	if err != nil {
		return GenreView{}, err
	}

	if err := query.validate(); err != nil {
		return GenreView{}, err
	}

	count, err := s.store.CountFavoriteGenres(ctx, profile.ID)
	if err != nil {
		return GenreView{}, err
	}
	if count >= MaxFavoriteGenres {
		return GenreView{}, ErrGenreLimitReached
	}

	genre, err := s.resolveGenre(ctx, query)
	if err != nil {
		return GenreView{}, err
	}

	exists, err := s.store.FavoriteGenreExists(ctx, profile.ID, genre.ID)
	if err != nil {
		return GenreView{}, err
	}
	if exists {
		return GenreView{}, store.ErrFavoriteGenreExists
	}

	if _, err := s.store.AddFavoriteGenre(ctx, profile.ID, genre.ID); err != nil {
		return GenreView{}, err
	}

	log.Info().Int64("user_id", userID).Str("genre", genre.Name).Int("total", count+1).Msg("favorite genre added")
	return genreView(genre), nil
}

// RemoveFavoriteGenre unfavorites a genre. The genre is resolved against the
// catalog first, so an id or name the catalog has never heard of reports the
// genre as missing regardless of membership.
func (s *Service) RemoveFavoriteGenre(ctx context.Context, caller auth.Identity, userID int64, query GenreQuery) (Confirmation, error) {
	if err := s.guard.Authorize(ctx, caller, userID); err != nil {
		return Confirmation{}, err
	}

	profile, err := s.store.ProfileByUserID(ctx, userID)
	if err != nil {
		return Confirmation{}, err
	}

	if err := query.validate(); err != nil {
		return Confirmation{}, err
	}

	genre, err := s.resolveGenre(ctx, query)
	if err != nil {
		return Confirmation{}, err
	}

	if err := s.store.RemoveFavoriteGenre(ctx, profile.ID, genre.ID); err != nil {
		return Confirmation{}, err
	}

	log.Info().Int64("user_id", userID).Str("genre", genre.Name).Msg("favorite genre removed")
	return Confirmation{Message: "Genre removed successfully", Name: genre.Name}, nil
}

// ListFavoriteGenres returns a page of the user's favorite genres. Memberships
// whose catalog row is gone degrade to a placeholder entry.
func (s *Service) ListFavoriteGenres(ctx context.Context, caller auth.Identity, userID int64, page, pageSize int) ([]GenreView, error) {
	if err := s.guard.Authorize(ctx, caller, userID); err != nil {
		return nil, err
	}

	profile, err := s.store.ProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.listGenres(ctx, profile.ID, page*pageSize, pageSize)
}

func (s *Service) listGenres(ctx context.Context, profileID int64, offset, limit int) ([]GenreView, error) {
	entries, err := s.store.ListFavoriteGenres(ctx, profileID, offset, limit)
	if err != nil {
		return nil, err
	}

	views := make([]GenreView, 0, len(entries))
	for _, entry := range entries {
		if entry.Genre == nil {
			views = append(views, GenreView{Name: unknownGenreName})
			continue
		}
		views = append(views, genreView(*entry.Genre))
	}

	return views, nil
}

// AllGenres returns the full genre catalog.
func (s *Service) AllGenres(ctx context.Context) ([]GenreView, error) {
	genres, err := s.store.ListGenres(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]GenreView, 0, len(genres))
	for _, g := range genres {
		views = append(views, genreView(g))
	}
	return views, nil
}

// SearchArtists queries the upstream catalog directly. Results are not tied
// to any user, so no ownership check applies.
func (s *Service) SearchArtists(ctx context.Context, query string, limit int) ([]musicapi.Artist, error) {
	if limit <= 0 || limit > maxArtistSearchResults {
		limit = defaultArtistSearchResults
	}

	artists, err := s.catalog.SearchArtists(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search artists: %w", err)
	}
	return artists, nil
}

func (s *Service) resolveGenre(ctx context.Context, query GenreQuery) (store.Genre, error) {
	if query.GenreID != nil {
		return s.store.GenreByID(ctx, *query.GenreID)
	}
	return s.store.GenreByName(ctx, *query.GenreName)
}

func basicView(pref store.Preference) BasicView {
	return BasicView{
		PreferenceID:       pref.ID,
		ProfileID:          pref.ProfileID,
		SearchRadiusKm:     pref.SearchRadiusKm,
		EmailNotifications: pref.EmailNotifications,
	}
}

func genreView(g store.Genre) GenreView {
	id := g.ID
	return GenreView{GenreID: &id, Name: g.Name, Description: g.Description}
}
