package main

import (
	"net/http"

	"concertbuddy/internal/app/access"
	"concertbuddy/internal/app/comments"
	"concertbuddy/internal/app/prefs"
	"concertbuddy/internal/app/users"
	"concertbuddy/internal/auth"
	"concertbuddy/internal/httpapi"
	"concertbuddy/internal/musicapi"
	"concertbuddy/internal/store"
	"concertbuddy/internal/textanalytics"

	"github.com/rs/zerolog/log"
)

func newHTTPHandler(cfg Config, dataStore *store.Store) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	verifier := auth.NewVerifier(dataStore, tokens)
	guard := access.NewGuard(dataStore)

	catalog := newArtistCatalog(cfg)
	analyzer := newSentimentAnalyzer(cfg)

	prefSvc := prefs.New(guard, dataStore, catalog)
	userSvc := users.New(guard, dataStore, tokens)
	commentSvc := comments.New(guard, dataStore, analyzer)

	server := httpapi.NewServer(prefSvc, userSvc, commentSvc, verifier)

	handler := httpapi.WithCORS(cfg.AllowedOrigins, server.Routes())
	handler = httpapi.RequestLogging(handler)
	handler = httpapi.Recovery(handler)
	return handler
}

func newArtistCatalog(cfg Config) musicapi.ArtistCatalog {
	if cfg.SpotifyClientID == "" || cfg.SpotifyClientSecret == "" {
		log.Warn().Msg("Spotify credentials not provided, artist lookups will fail")
		return musicapi.Unavailable{}
	}
	log.Info().Msg("Spotify client initialized")
	return musicapi.NewSpotifyClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
}

func newSentimentAnalyzer(cfg Config) comments.Analyzer {
	if cfg.AzureLanguageEndpoint == "" || cfg.AzureLanguageKey == "" {
		log.Warn().Msg("Azure Language credentials not provided, comments will be stored unscored")
		return textanalytics.Noop{}
	}
	log.Info().Msg("Azure Language client initialized")
	return textanalytics.New(cfg.AzureLanguageEndpoint, cfg.AzureLanguageKey)
}
