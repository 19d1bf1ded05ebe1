// Package draws runs commit-reveal draws and verifies published results.
package draws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sorteiohub/draw-engine/internal/app/domain/draw"
	"github.com/sorteiohub/draw-engine/internal/app/domain/game"
	"github.com/sorteiohub/draw-engine/internal/app/fair"
	"github.com/sorteiohub/draw-engine/internal/app/metrics"
	"github.com/sorteiohub/draw-engine/internal/app/storage"
	"github.com/sorteiohub/draw-engine/pkg/logger"
)

// Service orchestrates the commit-reveal draw flow for games.
type Service struct {
	games  storage.GameStore
	claims storage.ClaimStore
	draws  storage.DrawStore
	log    *logger.Logger
}

// New constructs a draws service.
func New(games storage.GameStore, claims storage.ClaimStore, draws storage.DrawStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("draws")
	}
	return &Service{games: games, claims: claims, draws: draws, log: log}
}

// Prepare generates a seed for the game and records its commitment so the
// commitment can be published before the draw runs. The raw seed stays
// private until Execute reveals it.
func (s *Service) Prepare(ctx context.Context, gameID string) (draw.Record, error) {
	g, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return draw.Record{}, err
	}
	if g.Status == game.StatusDrawn {
		return draw.Record{}, fmt.Errorf("game %s has already been drawn", gameID)
	}

	seed, err := fair.GenerateSeed(g.ID)
	if err != nil {
		return draw.Record{}, err
	}

	rec, err := s.draws.CreateDraw(ctx, draw.Record{GameID: g.ID, Seed: seed})
	if err != nil {
		return draw.Record{}, err
	}
	s.log.WithField("game_id", g.ID).Infof("commitment %s published", rec.Seed.Commitment)
	return rec, nil
}

// Execute reveals the seed, derives the outcome and resolves the winner.
// The game must be closed first. If no commitment was prepared one is
// generated on the spot, which skips the public commit step.
func (s *Service) Execute(ctx context.Context, gameID string) (draw.Record, error) {
	g, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return draw.Record{}, err
	}
	switch g.Status {
	case game.StatusClosed:
	case game.StatusOpen:
		return draw.Record{}, fmt.Errorf("game %s must be closed before drawing", gameID)
	default:
		return draw.Record{}, fmt.Errorf("game %s has already been drawn", gameID)
	}

	rec, err := s.draws.GetDrawByGame(ctx, gameID)
	switch {
	case errors.Is(err, storage.ErrDrawNotFound):
		if rec, err = s.Prepare(ctx, gameID); err != nil {
			return draw.Record{}, err
		}
		s.log.WithField("game_id", gameID).Warnf("no prior commitment, generated seed at draw time")
	case err != nil:
		return draw.Record{}, err
	}
	if rec.Executed() {
		return draw.Record{}, fmt.Errorf("draw for game %s already executed", gameID)
	}

	outcome, err := fair.DeriveOutcome(g, rec.Seed.Raw)
	if err != nil {
		return draw.Record{}, err
	}

	claims, err := s.claims.ListClaims(ctx, gameID)
	if err != nil {
		return draw.Record{}, err
	}
	res := fair.ResolveWinner(outcome, claims)
	if res.Duplicate() {
		metrics.RecordDuplicateClaims()
		s.log.WithField("game_id", gameID).Warnf("winning slot has %d claims, keeping the earliest", len(res.Matches))
	}

	rec.Outcome = outcome
	rec.ExecutedAt = time.Now().UTC()
	if res.Winner != nil {
		rec.WinnerClaimID = res.Winner.ID
	}

	updated, err := s.draws.UpdateDraw(ctx, rec)
	if err != nil {
		return draw.Record{}, err
	}

	g.Status = game.StatusDrawn
	if _, err := s.games.UpdateGame(ctx, g); err != nil {
		return draw.Record{}, fmt.Errorf("mark game drawn: %w", err)
	}

	metrics.RecordDrawExecuted(string(g.Type))
	log := s.log.WithField("game_id", gameID)
	if res.Winner != nil {
		log.Infof("draw executed, winner claim %s", res.Winner.ID)
	} else {
		log.Infof("draw executed, winning slot unclaimed")
	}
	return updated, nil
}

// Get returns the draw record for a game. Until the draw executes the raw
// seed is blanked so only the commitment is visible.
func (s *Service) Get(ctx context.Context, gameID string) (draw.Record, error) {
	rec, err := s.draws.GetDrawByGame(ctx, gameID)
	if err != nil {
		return draw.Record{}, err
	}
	if !rec.Executed() {
		rec.Seed.Raw = ""
	}
	return rec, nil
}

// Verify recomputes the commitment and outcome of an executed draw and
// reports whether both match the published record.
func (s *Service) Verify(ctx context.Context, gameID string) (bool, error) {
	g, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return false, err
	}
	rec, err := s.draws.GetDrawByGame(ctx, gameID)
	if err != nil {
		return false, err
	}
	if !rec.Executed() {
		return false, fmt.Errorf("draw for game %s has not executed", gameID)
	}

	ok := fair.CommitmentHash(rec.Seed.Raw) == rec.Seed.Commitment
	if ok {
		outcome, err := fair.DeriveOutcome(g, rec.Seed.Raw)
		ok = err == nil && sameOutcome(outcome, rec.Outcome)
	}
	metrics.RecordVerification(ok)
	if !ok {
		s.log.WithField("game_id", gameID).Warnf("draw verification failed")
	}
	return ok, nil
}

func sameOutcome(a, b draw.Outcome) bool {
	return a.Type == b.Type &&
		a.Row == b.Row && a.Col == b.Col && a.CellIndex == b.CellIndex &&
		a.TicketNumber == b.TicketNumber
}
