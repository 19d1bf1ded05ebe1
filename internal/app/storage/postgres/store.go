package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sorteiohub/draw-engine/internal/app/domain/draw"
	"github.com/sorteiohub/draw-engine/internal/app/domain/game"
	"github.com/sorteiohub/draw-engine/internal/app/domain/scratch"
	"github.com/sorteiohub/draw-engine/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.GameStore = (*Store)(nil)
var _ storage.ClaimStore = (*Store)(nil)
var _ storage.DrawStore = (*Store)(nil)
var _ storage.CardStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// gameConfig is the persisted JSON form of a game's variant configuration.
type gameConfig struct {
	Grid    *game.GridConfig    `json:"grid,omitempty"`
	Ticket  *game.TicketConfig  `json:"ticket,omitempty"`
	Scratch *game.ScratchConfig `json:"scratch,omitempty"`
}

// --- GameStore --------------------------------------------------------------

func (s *Store) CreateGame(ctx context.Context, g game.Game) (game.Game, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	configJSON, err := json.Marshal(gameConfig{Grid: g.Grid, Ticket: g.Ticket, Scratch: g.Scratch})
	if err != nil {
		return game.Game{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO draw_games (id, account_id, name, game_type, status, config, draw_schedule, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, g.ID, g.AccountID, g.Name, string(g.Type), string(g.Status), configJSON, g.DrawSchedule, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return game.Game{}, err
	}
	return g, nil
}

func (s *Store) UpdateGame(ctx context.Context, g game.Game) (game.Game, error) {
	existing, err := s.GetGame(ctx, g.ID)
	if err != nil {
		return game.Game{}, err
	}

	g.CreatedAt = existing.CreatedAt
	g.UpdatedAt = time.Now().UTC()

	// Configuration is immutable; only lifecycle fields are written.
	result, err := s.db.ExecContext(ctx, `
		UPDATE draw_games
		SET status = $2, draw_schedule = $3, updated_at = $4
		WHERE id = $1
	`, g.ID, string(g.Status), g.DrawSchedule, g.UpdatedAt)
	if err != nil {
		return game.Game{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return game.Game{}, sql.ErrNoRows
	}
	return g, nil
}

func (s *Store) GetGame(ctx context.Context, id string) (game.Game, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, account_id, name, game_type, status, config, draw_schedule, created_at, updated_at
		FROM draw_games
		WHERE id = $1
	`, id)
	return scanGame(row)
}

func (s *Store) ListGames(ctx context.Context, accountID string) ([]game.Game, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, name, game_type, status, config, draw_schedule, created_at, updated_at
		FROM draw_games
		WHERE $1 = '' OR account_id = $1
		ORDER BY created_at
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []game.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (game.Game, error) {
	var (
		g         game.Game
		gameType  string
		status    string
		configRaw []byte
	)
	if err := row.Scan(&g.ID, &g.AccountID, &g.Name, &gameType, &status, &configRaw, &g.DrawSchedule, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return game.Game{}, err
	}
	g.Type = game.Type(gameType)
	g.Status = game.Status(status)

	var cfg gameConfig
	if len(configRaw) > 0 {
		if err := json.Unmarshal(configRaw, &cfg); err != nil {
			return game.Game{}, fmt.Errorf("decode game config: %w", err)
		}
	}
	g.Grid = cfg.Grid
	g.Ticket = cfg.Ticket
	g.Scratch = cfg.Scratch
	return g, nil
}

// --- ClaimStore -------------------------------------------------------------

func (s *Store) CreateClaim(ctx context.Context, claim draw.SlotClaim) (draw.SlotClaim, error) {
	if claim.ID == "" {
		claim.ID = uuid.NewString()
	}
	claim.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO draw_claims (id, game_id, participant_id, row_num, col_num, ticket_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, claim.ID, claim.GameID, claim.ParticipantID, claim.Row, claim.Col, claim.TicketNumber, claim.CreatedAt)
	if err != nil {
		return draw.SlotClaim{}, err
	}
	return claim, nil
}

func (s *Store) ListClaims(ctx context.Context, gameID string) ([]draw.SlotClaim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game_id, participant_id, row_num, col_num, ticket_number, created_at
		FROM draw_claims
		WHERE game_id = $1
		ORDER BY created_at
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []draw.SlotClaim
	for rows.Next() {
		var claim draw.SlotClaim
		if err := rows.Scan(&claim.ID, &claim.GameID, &claim.ParticipantID, &claim.Row, &claim.Col, &claim.TicketNumber, &claim.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, claim)
	}
	return result, rows.Err()
}

// --- DrawStore --------------------------------------------------------------

func (s *Store) CreateDraw(ctx context.Context, rec draw.Record) (draw.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	outcomeJSON, err := json.Marshal(rec.Outcome)
	if err != nil {
		return draw.Record{}, err
	}

	// The unique index on game_id is what makes a draw at-most-once; a
	// conflicting insert affects zero rows instead of failing the query.
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO draw_records (id, game_id, seed_raw, seed_commitment, seed_created_at, outcome, winner_claim_id, executed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (game_id) DO NOTHING
	`, rec.ID, rec.GameID, rec.Seed.Raw, rec.Seed.Commitment, rec.Seed.CreatedAt, outcomeJSON, rec.WinnerClaimID, nullTime(rec.ExecutedAt), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return draw.Record{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return draw.Record{}, storage.ErrDrawExists
	}
	return rec, nil
}

func (s *Store) UpdateDraw(ctx context.Context, rec draw.Record) (draw.Record, error) {
	existing, err := s.GetDrawByGame(ctx, rec.GameID)
	if err != nil {
		return draw.Record{}, err
	}

	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now().UTC()

	outcomeJSON, err := json.Marshal(rec.Outcome)
	if err != nil {
		return draw.Record{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE draw_records
		SET outcome = $2, winner_claim_id = $3, executed_at = $4, updated_at = $5
		WHERE id = $1
	`, rec.ID, outcomeJSON, rec.WinnerClaimID, nullTime(rec.ExecutedAt), rec.UpdatedAt)
	if err != nil {
		return draw.Record{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return draw.Record{}, sql.ErrNoRows
	}
	return rec, nil
}

func (s *Store) GetDrawByGame(ctx context.Context, gameID string) (draw.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, game_id, seed_raw, seed_commitment, seed_created_at, outcome, winner_claim_id, executed_at, created_at, updated_at
		FROM draw_records
		WHERE game_id = $1
	`, gameID)

	var (
		rec        draw.Record
		outcomeRaw []byte
		executedAt sql.NullTime
	)
	if err := row.Scan(&rec.ID, &rec.GameID, &rec.Seed.Raw, &rec.Seed.Commitment, &rec.Seed.CreatedAt, &outcomeRaw, &rec.WinnerClaimID, &executedAt, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return draw.Record{}, fmt.Errorf("game %s: %w", gameID, storage.ErrDrawNotFound)
		}
		return draw.Record{}, err
	}
	if len(outcomeRaw) > 0 {
		if err := json.Unmarshal(outcomeRaw, &rec.Outcome); err != nil {
			return draw.Record{}, fmt.Errorf("decode draw outcome: %w", err)
		}
	}
	if executedAt.Valid {
		rec.ExecutedAt = executedAt.Time
	}
	return rec, nil
}

// --- CardStore --------------------------------------------------------------

func (s *Store) CreateCard(ctx context.Context, card scratch.Card) (scratch.Card, error) {
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	card.CreatedAt = now
	card.UpdatedAt = now

	prizeJSON, err := json.Marshal(card.Prize)
	if err != nil {
		return scratch.Card{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO scratch_cards (id, game_id, card_number, prize, seal_seed, seal_hash, revealed, issued_at, revealed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (game_id, card_number) DO NOTHING
	`, card.ID, card.GameID, card.CardNumber, prizeJSON, card.SealSeed, card.SealHash, card.Revealed, card.IssuedAt, nullTime(card.RevealedAt), card.CreatedAt, card.UpdatedAt)
	if err != nil {
		return scratch.Card{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return scratch.Card{}, fmt.Errorf("card %d already issued for game %s", card.CardNumber, card.GameID)
	}
	return card, nil
}

func (s *Store) UpdateCard(ctx context.Context, card scratch.Card) (scratch.Card, error) {
	existing, err := s.GetCard(ctx, card.ID)
	if err != nil {
		return scratch.Card{}, err
	}

	card.CreatedAt = existing.CreatedAt
	card.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE scratch_cards
		SET revealed = $2, revealed_at = $3, updated_at = $4
		WHERE id = $1
	`, card.ID, card.Revealed, nullTime(card.RevealedAt), card.UpdatedAt)
	if err != nil {
		return scratch.Card{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return scratch.Card{}, sql.ErrNoRows
	}
	return card, nil
}

func (s *Store) GetCard(ctx context.Context, id string) (scratch.Card, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, game_id, card_number, prize, seal_seed, seal_hash, revealed, issued_at, revealed_at, created_at, updated_at
		FROM scratch_cards
		WHERE id = $1
	`, id)
	return scanCard(row)
}

func (s *Store) ListCards(ctx context.Context, gameID string) ([]scratch.Card, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game_id, card_number, prize, seal_seed, seal_hash, revealed, issued_at, revealed_at, created_at, updated_at
		FROM scratch_cards
		WHERE game_id = $1
		ORDER BY card_number
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []scratch.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, card)
	}
	return result, rows.Err()
}

func (s *Store) NextCardNumber(ctx context.Context, gameID string) (uint, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(card_number), 0) + 1
		FROM scratch_cards
		WHERE game_id = $1
	`, gameID)

	var next uint
	if err := row.Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func scanCard(row rowScanner) (scratch.Card, error) {
	var (
		card       scratch.Card
		prizeRaw   []byte
		revealedAt sql.NullTime
	)
	if err := row.Scan(&card.ID, &card.GameID, &card.CardNumber, &prizeRaw, &card.SealSeed, &card.SealHash, &card.Revealed, &card.IssuedAt, &revealedAt, &card.CreatedAt, &card.UpdatedAt); err != nil {
		return scratch.Card{}, err
	}
	if len(prizeRaw) > 0 && string(prizeRaw) != "null" {
		var prize game.PrizeBand
		if err := json.Unmarshal(prizeRaw, &prize); err != nil {
			return scratch.Card{}, fmt.Errorf("decode card prize: %w", err)
		}
		card.Prize = &prize
	}
	if revealedAt.Valid {
		card.RevealedAt = revealedAt.Time
	}
	return card, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
