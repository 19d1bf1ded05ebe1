// Package draw defines the seed, outcome and claim records produced and
// consumed by the draw engine.
package draw

import (
	"time"

	"github.com/sorteiohub/draw-engine/internal/app/domain/game"
)

// Seed is the committed entropy behind a draw. Raw stays secret until the
// draw executes; Commitment (sha256 hex of Raw) can be published while entry
// is still open.
type Seed struct {
	Raw        string
	Commitment string
	CreatedAt  time.Time
}

// Outcome is the authoritative result of a draw, variant by game type. Only
// the fields of the matching variant are set.
type Outcome struct {
	Type game.Type

	// Grid games (1-indexed, row-major).
	Row       uint
	Col       uint
	CellIndex uint

	// Ticket games (1-indexed).
	TicketNumber uint

	// Scratch cards.
	CardNumber uint
	Prize      *game.PrizeBand
}

// SlotClaim is a participant's pre-registered choice of grid cell or ticket
// number. Uniqueness per slot is an invariant the surrounding platform
// enforces; the engine only reads claims.
type SlotClaim struct {
	ID            string
	GameID        string
	ParticipantID string
	Row           uint
	Col           uint
	TicketNumber  uint
	CreatedAt     time.Time
}

// Record is the permanent persisted account of one draw. A record may exist
// in a prepared state (seed committed, outcome not yet derived); ExecutedAt
// is zero until the draw runs.
type Record struct {
	ID            string
	GameID        string
	Seed          Seed
	Outcome       Outcome
	WinnerClaimID string
	ExecutedAt    time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Executed reports whether the record carries a derived outcome.
func (r Record) Executed() bool { return !r.ExecutedAt.IsZero() }
