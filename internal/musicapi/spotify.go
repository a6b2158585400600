package musicapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyAPIURL   = "https://api.spotify.com/v1"
)

// SpotifyClient implements ArtistCatalog against the Spotify Web API using the
// client-credentials flow.
type SpotifyClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string
	httpClient   *http.Client

	mu          sync.RWMutex
	accessToken string
	tokenExpiry time.Time
}

// NewSpotifyClient creates a new Spotify API client.
func NewSpotifyClient(clientID, clientSecret string) *SpotifyClient {
	return &SpotifyClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      spotifyAPIURL,
		tokenURL:     spotifyTokenURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSpotifyClientWithBaseURL is used by tests to point the client at a fake
// Spotify server.
func NewSpotifyClientWithBaseURL(clientID, clientSecret, baseURL, tokenURL string) *SpotifyClient {
	c := NewSpotifyClient(clientID, clientSecret)
	c.baseURL = baseURL
	c.tokenURL = tokenURL
	return c
}

type spotifyArtist struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Genres       []string            `json:"genres"`
	Popularity   int                 `json:"popularity"`
	Images       []spotifyImage      `json:"images"`
	ExternalURLs spotifyExternalURLs `json:"external_urls"`
}

type spotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type spotifyExternalURLs struct {
	Spotify string `json:"spotify"`
}

type spotifyTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// authenticate obtains an access token from Spotify if the cached one expired.
func (c *SpotifyClient) authenticate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.tokenExpiry) {
		return nil
	}

	authString := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))

	data := url.Values{}
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("create auth request: %w", err)
	}

	req.Header.Set("Authorization", "Basic "+authString)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("spotify auth failed: %s - %s", resp.Status, string(body))
	}

	var tokenResp spotifyTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return fmt.Errorf("decode auth response: %w", err)
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)

	return nil
}

// doRequest performs an authenticated GET against the Spotify API.
func (c *SpotifyClient) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if err := c.authenticate(ctx); err != nil {
		return err
	}

	c.mu.RLock()
	token := c.accessToken
	c.mu.RUnlock()

	apiURL := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrArtistNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("spotify api error: %s - %s", resp.Status, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// GetArtist retrieves full artist details by Spotify id.
func (c *SpotifyClient) GetArtist(ctx context.Context, spotifyID string) (Artist, error) {
	var sa spotifyArtist
	if err := c.doRequest(ctx, "artists/"+url.PathEscape(spotifyID), nil, &sa); err != nil {
		return Artist{}, err
	}
	return convertArtist(sa), nil
}

// SearchArtists searches for artists by name.
func (c *SpotifyClient) SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error) {
	params := url.Values{
		"q":     []string{query},
		"type":  []string{"artist"},
		"limit": []string{fmt.Sprintf("%d", limit)},
	}

	var result struct {
		Artists struct {
			Items []spotifyArtist `json:"items"`
		} `json:"artists"`
	}
	if err := c.doRequest(ctx, "search", params, &result); err != nil {
		return nil, err
	}

	artists := make([]Artist, 0, len(result.Artists.Items))
	for _, sa := range result.Artists.Items {
		artists = append(artists, convertArtist(sa))
	}

	return artists, nil
}

func convertArtist(sa spotifyArtist) Artist {
	imageURL := ""
	if len(sa.Images) > 0 {
		imageURL = sa.Images[0].URL
	}

	return Artist{
		SpotifyID:   sa.ID,
		Name:        sa.Name,
		Genres:      sa.Genres,
		Popularity:  sa.Popularity,
		ImageURL:    imageURL,
		ExternalURL: sa.ExternalURLs.Spotify,
	}
}
