// Package cards issues, reveals and audits sealed scratch cards.
package cards

import (
	"context"
	"fmt"
	"time"

	"github.com/sorteiohub/draw-engine/internal/app/domain/game"
	"github.com/sorteiohub/draw-engine/internal/app/domain/scratch"
	"github.com/sorteiohub/draw-engine/internal/app/fair"
	"github.com/sorteiohub/draw-engine/internal/app/metrics"
	"github.com/sorteiohub/draw-engine/internal/app/storage"
	"github.com/sorteiohub/draw-engine/pkg/logger"
)

// ErrStockExhausted is returned when a game has no cards left to issue.
var ErrStockExhausted = fmt.Errorf("card stock exhausted")

// Service manages the scratch card lifecycle.
type Service struct {
	games storage.GameStore
	cards storage.CardStore
	log   *logger.Logger
}

// New constructs a cards service.
func New(games storage.GameStore, cards storage.CardStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("cards")
	}
	return &Service{games: games, cards: cards, log: log}
}

// Issue seals and stores the next card of a scratch game. The returned card
// is redacted: prize and seal seed stay hidden until the card is revealed.
func (s *Service) Issue(ctx context.Context, gameID string) (scratch.Card, error) {
	g, err := s.scratchGame(ctx, gameID)
	if err != nil {
		return scratch.Card{}, err
	}
	if g.Status != game.StatusOpen {
		return scratch.Card{}, fmt.Errorf("game %s is not open for issuance", gameID)
	}

	number, err := s.cards.NextCardNumber(ctx, gameID)
	if err != nil {
		return scratch.Card{}, err
	}
	if number > g.Scratch.Stock {
		return scratch.Card{}, fmt.Errorf("game %s: %w", gameID, ErrStockExhausted)
	}

	card, err := fair.SealCard(g.Scratch.PrizeTable, g.Scratch.Stock, number, g.ID)
	if err != nil {
		return scratch.Card{}, err
	}
	card.GameID = g.ID

	created, err := s.cards.CreateCard(ctx, card)
	if err != nil {
		return scratch.Card{}, err
	}

	metrics.RecordCardIssued()
	s.log.WithField("game_id", g.ID).Debugf("card %d issued", created.CardNumber)
	return redact(created), nil
}

// Reveal marks a card as scratched and returns its prize and seal seed so
// the holder can verify the seal independently. Revealing is one-way.
func (s *Service) Reveal(ctx context.Context, cardID string) (scratch.Card, error) {
	card, err := s.cards.GetCard(ctx, cardID)
	if err != nil {
		return scratch.Card{}, err
	}
	if card.Revealed {
		return card, nil
	}

	card.Revealed = true
	card.RevealedAt = time.Now().UTC()
	updated, err := s.cards.UpdateCard(ctx, card)
	if err != nil {
		return scratch.Card{}, err
	}

	metrics.RecordCardRevealed()
	s.log.WithField("game_id", card.GameID).Debugf("card %d revealed", card.CardNumber)
	return updated, nil
}

// Get returns a card, redacted while unrevealed.
func (s *Service) Get(ctx context.Context, cardID string) (scratch.Card, error) {
	card, err := s.cards.GetCard(ctx, cardID)
	if err != nil {
		return scratch.Card{}, err
	}
	if !card.Revealed {
		card = redact(card)
	}
	return card, nil
}

// List returns a game's cards, each redacted while unrevealed.
func (s *Service) List(ctx context.Context, gameID string) ([]scratch.Card, error) {
	if _, err := s.scratchGame(ctx, gameID); err != nil {
		return nil, err
	}
	cards, err := s.cards.ListCards(ctx, gameID)
	if err != nil {
		return nil, err
	}
	for i := range cards {
		if !cards[i].Revealed {
			cards[i] = redact(cards[i])
		}
	}
	return cards, nil
}

// Verify recomputes a revealed card's seal and reports whether it matches.
func (s *Service) Verify(ctx context.Context, cardID string) (bool, error) {
	card, err := s.cards.GetCard(ctx, cardID)
	if err != nil {
		return false, err
	}
	if !card.Revealed {
		return false, fmt.Errorf("card %s has not been revealed", cardID)
	}

	ok := fair.Verify(card.SealSeed, card.Prize, card.CardNumber, card.SealHash)
	metrics.RecordVerification(ok)
	if !ok {
		s.log.WithField("game_id", card.GameID).Warnf("seal mismatch on card %d", card.CardNumber)
	}
	return ok, nil
}

// AuditReport summarises a full-game seal and allocation audit.
type AuditReport struct {
	GameID      string
	TotalCards  int
	SealsOK     int
	SealsBad    []uint
	PrizesBad   []uint
	CompletedAt time.Time
}

// Clean reports whether the audit found no discrepancies.
func (r AuditReport) Clean() bool {
	return len(r.SealsBad) == 0 && len(r.PrizesBad) == 0
}

// Audit re-verifies every issued card of a game: the seal hash must match
// and the stored prize must equal the deterministic band allocation.
func (s *Service) Audit(ctx context.Context, gameID string) (AuditReport, error) {
	g, err := s.scratchGame(ctx, gameID)
	if err != nil {
		return AuditReport{}, err
	}
	cards, err := s.cards.ListCards(ctx, gameID)
	if err != nil {
		return AuditReport{}, err
	}

	report := AuditReport{GameID: gameID, TotalCards: len(cards)}
	for _, card := range cards {
		if fair.Verify(card.SealSeed, card.Prize, card.CardNumber, card.SealHash) {
			report.SealsOK++
		} else {
			report.SealsBad = append(report.SealsBad, card.CardNumber)
		}

		expected, err := fair.AllocatePrize(g.Scratch.PrizeTable, g.Scratch.Stock, card.CardNumber)
		if err != nil || !samePrize(expected, card.Prize) {
			report.PrizesBad = append(report.PrizesBad, card.CardNumber)
		}
	}
	report.CompletedAt = time.Now().UTC()

	if !report.Clean() {
		s.log.WithField("game_id", gameID).Warnf("audit found %d bad seals, %d bad prizes",
			len(report.SealsBad), len(report.PrizesBad))
	}
	return report, nil
}

func (s *Service) scratchGame(ctx context.Context, gameID string) (game.Game, error) {
	g, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return game.Game{}, err
	}
	if g.Type != game.TypeScratch {
		return game.Game{}, fmt.Errorf("game %s is not a scratch game", gameID)
	}
	return g, nil
}

func redact(card scratch.Card) scratch.Card {
	card.Prize = nil
	card.SealSeed = ""
	return card
}

func samePrize(a, b *game.PrizeBand) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name == b.Name && a.Percentage.Equal(b.Percentage) && a.Value.Equal(b.Value)
}
