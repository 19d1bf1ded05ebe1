// Package games manages game lifecycle and slot claims.
package games

import (
	"context"
	"fmt"

	"github.com/sorteiohub/draw-engine/internal/app/domain/draw"
	"github.com/sorteiohub/draw-engine/internal/app/domain/game"
	"github.com/sorteiohub/draw-engine/internal/app/fair"
	"github.com/sorteiohub/draw-engine/internal/app/storage"
	"github.com/sorteiohub/draw-engine/pkg/logger"
)

// Service manages games and participant claims.
type Service struct {
	games  storage.GameStore
	claims storage.ClaimStore
	log    *logger.Logger
}

// New constructs a games service.
func New(games storage.GameStore, claims storage.ClaimStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("games")
	}
	return &Service{games: games, claims: claims, log: log}
}

// Create registers a new game after validating its configuration.
func (s *Service) Create(ctx context.Context, g game.Game) (game.Game, error) {
	if g.AccountID == "" {
		return game.Game{}, fmt.Errorf("account_id is required")
	}
	if g.Name == "" {
		return game.Game{}, fmt.Errorf("name is required")
	}
	g.Status = game.StatusOpen
	if err := g.Validate(); err != nil {
		return game.Game{}, err
	}

	created, err := s.games.CreateGame(ctx, g)
	if err != nil {
		return game.Game{}, err
	}
	s.log.WithField("game_id", created.ID).Infof("game %q created (%s)", created.Name, created.Type)
	return created, nil
}

// Get returns a game by ID.
func (s *Service) Get(ctx context.Context, id string) (game.Game, error) {
	return s.games.GetGame(ctx, id)
}

// List returns games, optionally filtered by account.
func (s *Service) List(ctx context.Context, accountID string) ([]game.Game, error) {
	return s.games.ListGames(ctx, accountID)
}

// Close moves an open game to the closed state so no further claims are
// accepted and the draw may proceed.
func (s *Service) Close(ctx context.Context, id string) (game.Game, error) {
	g, err := s.games.GetGame(ctx, id)
	if err != nil {
		return game.Game{}, err
	}
	switch g.Status {
	case game.StatusOpen:
	case game.StatusClosed:
		return g, nil
	default:
		return game.Game{}, fmt.Errorf("game %s cannot be closed in status %s", id, g.Status)
	}

	g.Status = game.StatusClosed
	updated, err := s.games.UpdateGame(ctx, g)
	if err != nil {
		return game.Game{}, err
	}
	s.log.WithField("game_id", id).Infof("game closed")
	return updated, nil
}

// Claim records a participant's claim on a slot of an open game. The slot
// must exist within the game's configured space.
func (s *Service) Claim(ctx context.Context, claim draw.SlotClaim) (draw.SlotClaim, error) {
	if claim.ParticipantID == "" {
		return draw.SlotClaim{}, fmt.Errorf("participant_id is required")
	}

	g, err := s.games.GetGame(ctx, claim.GameID)
	if err != nil {
		return draw.SlotClaim{}, err
	}
	if g.Status != game.StatusOpen {
		return draw.SlotClaim{}, fmt.Errorf("game %s is not open for claims", g.ID)
	}

	if err := validateSlot(g, claim); err != nil {
		return draw.SlotClaim{}, err
	}

	created, err := s.claims.CreateClaim(ctx, claim)
	if err != nil {
		return draw.SlotClaim{}, err
	}
	s.log.WithField("game_id", g.ID).Debugf("claim %s recorded for participant %s", created.ID, created.ParticipantID)
	return created, nil
}

// Claims returns all claims recorded for a game.
func (s *Service) Claims(ctx context.Context, gameID string) ([]draw.SlotClaim, error) {
	if _, err := s.games.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	return s.claims.ListClaims(ctx, gameID)
}

func validateSlot(g game.Game, claim draw.SlotClaim) error {
	switch g.Type {
	case game.TypeGrid:
		if claim.Row < 1 || claim.Row > g.Grid.Rows || claim.Col < 1 || claim.Col > g.Grid.Cols {
			return fmt.Errorf("slot (%d,%d) outside %dx%d grid: %w",
				claim.Row, claim.Col, g.Grid.Rows, g.Grid.Cols, fair.ErrOutOfRange)
		}
	case game.TypeTicket:
		if claim.TicketNumber < 1 || claim.TicketNumber > g.Ticket.TotalTickets {
			return fmt.Errorf("ticket %d outside range 1..%d: %w",
				claim.TicketNumber, g.Ticket.TotalTickets, fair.ErrOutOfRange)
		}
	default:
		return fmt.Errorf("game type %s does not accept slot claims", g.Type)
	}
	return nil
}
