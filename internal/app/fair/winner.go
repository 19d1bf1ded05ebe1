package fair

import (
	"github.com/sorteiohub/draw-engine/internal/app/domain/draw"
	"github.com/sorteiohub/draw-engine/internal/app/domain/game"
)

// Resolution is the result of matching a derived outcome against the
// registered slot claims.
type Resolution struct {
	// Winner is the first matching claim in traversal order, or nil when the
	// winning slot was never claimed. An unclaimed win is a normal outcome,
	// not an error.
	Winner *draw.SlotClaim

	// Matches holds every matching claim. Slot uniqueness is an external
	// invariant, so more than one entry means the caller's data is
	// inconsistent; resolution still proceeds with the first match but the
	// condition should be surfaced as a data-integrity warning.
	Matches []draw.SlotClaim
}

// Duplicate reports whether more than one claim matched the outcome.
func (r Resolution) Duplicate() bool { return len(r.Matches) > 1 }

// ResolveWinner finds the claim, if any, that exactly matches the outcome's
// coordinate or number.
func ResolveWinner(out draw.Outcome, claims []draw.SlotClaim) Resolution {
	var res Resolution
	for _, claim := range claims {
		if !claimMatches(out, claim) {
			continue
		}
		res.Matches = append(res.Matches, claim)
		if res.Winner == nil {
			winner := claim
			res.Winner = &winner
		}
	}
	return res
}

func claimMatches(out draw.Outcome, claim draw.SlotClaim) bool {
	switch out.Type {
	case game.TypeGrid:
		return claim.Row == out.Row && claim.Col == out.Col
	case game.TypeTicket:
		return claim.TicketNumber == out.TicketNumber
	default:
		return false
	}
}
