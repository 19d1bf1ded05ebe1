package fair

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sorteiohub/draw-engine/internal/app/domain/draw"
	"github.com/sorteiohub/draw-engine/internal/app/domain/game"
)

// DeriveOutcome maps a seed onto a structured outcome for a grid or ticket
// game. The derivation is fully deterministic: anyone who learns the seed
// can recompute the published result.
//
// The draw value is the first 8 hex characters of sha256(seed) parsed as an
// unsigned 32-bit integer, reduced with mod. The mod step is slightly biased
// when the slot count does not divide 2^32; the bias is negligible for
// realistic grid and ticket sizes and is preserved deliberately so that
// independently published verifiers keep reproducing stored results. Slot
// counts above 2^32 have no well-defined mapping and are rejected as
// invalid configuration.
func DeriveOutcome(g game.Game, seed string) (draw.Outcome, error) {
	if err := g.Validate(); err != nil {
		return draw.Outcome{}, err
	}

	switch g.Type {
	case game.TypeGrid:
		total := uint64(g.Grid.Rows) * uint64(g.Grid.Cols)
		if total > math.MaxUint32 {
			return draw.Outcome{}, fmt.Errorf("%w: %d cells exceed the 32-bit draw space", game.ErrInvalidConfig, total)
		}
		n := drawValue(seed)
		idx := uint(n % uint32(total))
		return draw.Outcome{
			Type:      game.TypeGrid,
			Row:       idx/g.Grid.Cols + 1,
			Col:       idx%g.Grid.Cols + 1,
			CellIndex: idx,
		}, nil
	case game.TypeTicket:
		if uint64(g.Ticket.TotalTickets) > math.MaxUint32 {
			return draw.Outcome{}, fmt.Errorf("%w: %d tickets exceed the 32-bit draw space", game.ErrInvalidConfig, g.Ticket.TotalTickets)
		}
		n := drawValue(seed)
		return draw.Outcome{
			Type:         game.TypeTicket,
			TicketNumber: uint(n%uint32(g.Ticket.TotalTickets)) + 1,
		}, nil
	default:
		return draw.Outcome{}, fmt.Errorf("%w: game type %q has no drawn outcome", game.ErrInvalidConfig, g.Type)
	}
}

// drawValue truncates sha256(seed) to its first 4 bytes and interprets them
// as a big-endian uint32. The 8-hex-character convention is part of the
// public verification contract.
func drawValue(seed string) uint32 {
	digest := CommitmentHash(seed)
	n, err := strconv.ParseUint(digest[:8], 16, 32)
	if err != nil {
		// digest is always 64 hex chars; unreachable for any input
		panic(fmt.Sprintf("parse draw value: %v", err))
	}
	return uint32(n)
}
