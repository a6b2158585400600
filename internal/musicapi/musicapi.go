package musicapi

import (
	"context"
	"errors"
)

// ErrArtistNotFound indicates the catalog has no artist with the given id.
var ErrArtistNotFound = errors.New("artist not found")

// Artist is display metadata resolved from an external catalog. It is never
// persisted; favorites store only the external id.
type Artist struct {
	SpotifyID   string   `json:"spotifyId"`
	Name        string   `json:"name"`
	Genres      []string `json:"genres,omitempty"`
	Popularity  int      `json:"popularity,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	ExternalURL string   `json:"externalUrl,omitempty"`
}

// ArtistCatalog resolves artist ids against an external, fallible service.
// Any failure other than ErrArtistNotFound should be treated by callers as a
// transient catalog outage.
type ArtistCatalog interface {
	GetArtist(ctx context.Context, spotifyID string) (Artist, error)
	SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error)
}

// ErrCatalogUnavailable indicates no catalog backend is configured.
var ErrCatalogUnavailable = errors.New("artist catalog unavailable")

// Unavailable is the catalog used when no credentials are configured. Every
// lookup fails, which downstream code handles the same way as an outage.
type Unavailable struct{}

func (Unavailable) GetArtist(ctx context.Context, spotifyID string) (Artist, error) {
	return Artist{}, ErrCatalogUnavailable
}

func (Unavailable) SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error) {
	return nil, ErrCatalogUnavailable
}
