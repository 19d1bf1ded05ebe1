package fair

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sorteiohub/draw-engine/internal/app/domain/game"
	"github.com/sorteiohub/draw-engine/internal/app/domain/scratch"
)

// sealPayload is the canonical form hashed into a card's seal. Keys are
// declared in alphabetical order; struct field order fixes the byte layout,
// so the same inputs always serialize to the same bytes. Any change here
// invalidates every previously sealed card.
type sealPayload struct {
	CardNumber uint            `json:"card_number"`
	Prize      *game.PrizeBand `json:"prize"`
	SealSeed   string          `json:"seal_seed"`
}

// SealCard decides and seals a card's outcome at issuance time: it draws a
// per-card seed, allocates the prize for the given card number, and hashes
// the canonical form of the result. The prize is fixed here, before the
// player ever sees the card, so nothing at reveal time can influence it.
// Card numbers are assigned sequentially by the caller's store, not derived
// from the seed.
func SealCard(table []game.PrizeBand, stock, cardNumber uint, context string) (scratch.Card, error) {
	prize, err := AllocatePrize(table, stock, cardNumber)
	if err != nil {
		return scratch.Card{}, err
	}

	seed, err := GenerateSeed(fmt.Sprintf("%s-card-%d", context, cardNumber))
	if err != nil {
		return scratch.Card{}, err
	}

	hash, err := SealHash(seed.Raw, prize, cardNumber)
	if err != nil {
		return scratch.Card{}, err
	}

	return scratch.Card{
		CardNumber: cardNumber,
		Prize:      prize,
		SealSeed:   seed.Raw,
		SealHash:   hash,
		IssuedAt:   time.Now().UTC(),
	}, nil
}

// SealHash computes the sha256 hex digest of the canonical seal payload.
func SealHash(sealSeed string, prize *game.PrizeBand, cardNumber uint) (string, error) {
	payload, err := json.Marshal(sealPayload{
		CardNumber: cardNumber,
		Prize:      prize,
		SealSeed:   sealSeed,
	})
	if err != nil {
		return "", fmt.Errorf("marshal seal payload: %w", err)
	}
	return CommitmentHash(string(payload)), nil
}

// Verify recomputes a card's seal hash from its stored components and
// compares it against the stored hash. A mismatch means the sealed result
// was altered after issuance. Verification never depends on the card's
// revealed state, so an auditor can check unrevealed stock without exposing
// outcomes to players.
func Verify(sealSeed string, prize *game.PrizeBand, cardNumber uint, sealHash string) bool {
	computed, err := SealHash(sealSeed, prize, cardNumber)
	if err != nil {
		return false
	}
	return computed == sealHash
}
