// Package migrations applies the draw engine's database schema.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// statements run in order; each must be idempotent so Apply can run at every
// startup.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS draw_games (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		game_type TEXT NOT NULL,
		status TEXT NOT NULL,
		config JSONB NOT NULL DEFAULT '{}',
		draw_schedule TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS draw_claims (
		id TEXT PRIMARY KEY,
		game_id TEXT NOT NULL REFERENCES draw_games(id),
		participant_id TEXT NOT NULL DEFAULT '',
		row_num BIGINT NOT NULL DEFAULT 0,
		col_num BIGINT NOT NULL DEFAULT 0,
		ticket_number BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS draw_records (
		id TEXT PRIMARY KEY,
		game_id TEXT NOT NULL REFERENCES draw_games(id),
		seed_raw TEXT NOT NULL,
		seed_commitment TEXT NOT NULL,
		seed_created_at TIMESTAMPTZ NOT NULL,
		outcome JSONB NOT NULL DEFAULT '{}',
		winner_claim_id TEXT NOT NULL DEFAULT '',
		executed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS scratch_cards (
		id TEXT PRIMARY KEY,
		game_id TEXT NOT NULL REFERENCES draw_games(id),
		card_number BIGINT NOT NULL,
		prize JSONB,
		seal_seed TEXT NOT NULL,
		seal_hash TEXT NOT NULL,
		revealed BOOLEAN NOT NULL DEFAULT FALSE,
		issued_at TIMESTAMPTZ NOT NULL,
		revealed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	// One draw per game, ever.
	`CREATE UNIQUE INDEX IF NOT EXISTS draw_records_game_id_key ON draw_records (game_id)`,
	// One card per (game, number).
	`CREATE UNIQUE INDEX IF NOT EXISTS scratch_cards_game_number_key ON scratch_cards (game_id, card_number)`,
}

// Apply runs every schema statement in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
