package main

import (
	"context"
	"database/sql"
	"fmt"

	"concertbuddy/internal/auth"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// seedGenres is the initial genre catalog. Inserts are idempotent so restarts
// do not duplicate rows.
var seedGenres = []struct {
	name        string
	description string
}{
	{"Rock", "Guitar-driven music spanning classic to alternative"},
	{"Pop", "Mainstream contemporary music"},
	{"Hip Hop", "Rap and urban beats"},
	{"Jazz", "Improvisational music rooted in blues and swing"},
	{"Classical", "Orchestral and chamber music"},
	{"Electronic", "Synthesized and dance music"},
	{"Country", "American roots and western music"},
	{"R&B", "Rhythm and blues, soul and funk"},
	{"Metal", "Heavy, amplified rock"},
	{"Folk", "Acoustic traditional and singer-songwriter music"},
	{"Blues", "Twelve-bar and electric blues"},
	{"Reggae", "Jamaican offbeat rhythms"},
	{"Latin", "Latin American styles from salsa to reggaeton"},
	{"Indie", "Independent and alternative artists"},
	{"Punk", "Fast, raw rock"},
}

func bootstrap(ctx context.Context, db *sql.DB, cfg Config) error {
	if err := ensureGenres(ctx, db); err != nil {
		return err
	}
	if err := ensureAdminUser(ctx, db, cfg); err != nil {
		return err
	}
	return nil
}

func ensureGenres(ctx context.Context, db *sql.DB) error {
	for _, g := range seedGenres {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO music_genres (name, description)
			VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
		`, g.name, g.description); err != nil {
			return fmt.Errorf("seed genre %q: %w", g.name, err)
		}
	}
	return nil
}

// ensureAdminUser creates the administrator account when ADMIN_PASSWORD is
// set and the account does not exist yet.
func ensureAdminUser(ctx context.Context, db *sql.DB, cfg Config) error {
	if cfg.AdminPassword == "" {
		log.Warn().Msg("ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}

	var exists bool
	if err := db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
	`, cfg.AdminEmail).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	var userID int64
	if err := db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, roles, enabled, account_locked)
		VALUES ($1, $2, $3, TRUE, FALSE)
		RETURNING id
	`, cfg.AdminEmail, hash, pq.Array([]string{auth.RoleUser, auth.RoleAdmin})).Scan(&userID); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, name) VALUES ($1, 'Administrator')
	`, userID); err != nil {
		return fmt.Errorf("create admin profile: %w", err)
	}

	log.Info().Str("email", cfg.AdminEmail).Msg("admin user created")
	return nil
}
