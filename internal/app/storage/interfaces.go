package storage

import (
	"context"
	"errors"

	"github.com/sorteiohub/draw-engine/internal/app/domain/draw"
	"github.com/sorteiohub/draw-engine/internal/app/domain/game"
	"github.com/sorteiohub/draw-engine/internal/app/domain/scratch"
)

// ErrDrawExists is returned by CreateDraw when a draw record already exists
// for the game. Stores must enforce this so a game is drawn at most once.
var ErrDrawExists = errors.New("draw record already exists for game")

// ErrDrawNotFound is returned by GetDrawByGame when no draw record exists
// for the game, so callers can tell "not yet prepared" apart from a
// storage failure.
var ErrDrawNotFound = errors.New("no draw record for game")

// GameStore persists game instances. Game configuration is immutable after
// creation; UpdateGame is only meant for status transitions.
type GameStore interface {
	CreateGame(ctx context.Context, g game.Game) (game.Game, error)
	UpdateGame(ctx context.Context, g game.Game) (game.Game, error)
	GetGame(ctx context.Context, id string) (game.Game, error)
	// ListGames returns games for an account; an empty accountID lists all.
	ListGames(ctx context.Context, accountID string) ([]game.Game, error)
}

// ClaimStore persists participant slot claims. Claims are append-only from
// the engine's point of view; slot uniqueness is enforced upstream.
type ClaimStore interface {
	CreateClaim(ctx context.Context, claim draw.SlotClaim) (draw.SlotClaim, error)
	ListClaims(ctx context.Context, gameID string) ([]draw.SlotClaim, error)
}

// DrawStore persists draw records, at most one per game.
type DrawStore interface {
	CreateDraw(ctx context.Context, rec draw.Record) (draw.Record, error)
	UpdateDraw(ctx context.Context, rec draw.Record) (draw.Record, error)
	// GetDrawByGame returns ErrDrawNotFound when no record exists for the game.
	GetDrawByGame(ctx context.Context, gameID string) (draw.Record, error)
}

// CardStore persists scratch cards. NextCardNumber plus the unique
// (game, card number) constraint on CreateCard give at-most-once issuance
// per card number; callers are expected to serialize issuance per game.
type CardStore interface {
	CreateCard(ctx context.Context, card scratch.Card) (scratch.Card, error)
	UpdateCard(ctx context.Context, card scratch.Card) (scratch.Card, error)
	GetCard(ctx context.Context, id string) (scratch.Card, error)
	ListCards(ctx context.Context, gameID string) ([]scratch.Card, error)
	NextCardNumber(ctx context.Context, gameID string) (uint, error)
}
