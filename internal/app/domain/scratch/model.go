// Package scratch defines issued scratch card records.
package scratch

import (
	"time"

	"github.com/sorteiohub/draw-engine/internal/app/domain/game"
)

// Card is one issued scratch card. The prize is decided and sealed at
// issuance; Revealed flips exactly once, from false to true, when the player
// scratches the card.
type Card struct {
	ID         string
	GameID     string
	CardNumber uint
	Prize      *game.PrizeBand // nil means no prize
	SealSeed   string
	SealHash   string
	Revealed   bool
	IssuedAt   time.Time
	RevealedAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
