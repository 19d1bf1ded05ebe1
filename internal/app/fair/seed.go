// Package fair implements the verifiable draw and prize-allocation core:
// seed commitment, deterministic outcome derivation, winner resolution,
// prize-band allocation and seal verification. Every function here is pure
// apart from entropy collection at seed time; callers persist the results.
package fair

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sorteiohub/draw-engine/internal/app/domain/draw"
)

// ErrOutOfRange marks a card or ticket number outside its valid domain.
var ErrOutOfRange = errors.New("out of range")

const seedEntropyBytes = 16

// GenerateSeed produces a draw seed for the given context string. The raw
// seed combines the context, a UTC nanosecond timestamp and 16 bytes from
// crypto/rand, so two invocations never collide even for the same context.
// The commitment is the sha256 hex of the raw seed and is safe to publish
// before the raw seed is revealed.
func GenerateSeed(context string) (draw.Seed, error) {
	context = strings.TrimSpace(context)
	if context == "" {
		return draw.Seed{}, errors.New("seed context must not be empty")
	}

	buf := make([]byte, seedEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return draw.Seed{}, fmt.Errorf("read randomness: %w", err)
	}

	now := time.Now().UTC()
	raw := fmt.Sprintf("%s-%d-%s", context, now.UnixNano(), hex.EncodeToString(buf))
	return draw.Seed{
		Raw:        raw,
		Commitment: CommitmentHash(raw),
		CreatedAt:  now,
	}, nil
}

// CommitmentHash returns the lowercase hex sha256 digest of the input. This
// is the bit-exact commitment format; previously published commitments
// depend on it never changing.
func CommitmentHash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
