package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sorteiohub/draw-engine/internal/app/domain/draw"
	"github.com/sorteiohub/draw-engine/internal/app/domain/game"
	"github.com/sorteiohub/draw-engine/internal/app/domain/scratch"
	"github.com/sorteiohub/draw-engine/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local
// development.
type Store struct {
	mu          sync.RWMutex
	nextID      int64
	games       map[string]game.Game
	claims      map[string][]draw.SlotClaim
	drawsByGame map[string]draw.Record
	cards       map[string]scratch.Card
	cardNumbers map[string]map[uint]bool
}

var _ storage.GameStore = (*Store)(nil)
var _ storage.ClaimStore = (*Store)(nil)
var _ storage.DrawStore = (*Store)(nil)
var _ storage.CardStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:      1,
		games:       make(map[string]game.Game),
		claims:      make(map[string][]draw.SlotClaim),
		drawsByGame: make(map[string]draw.Record),
		cards:       make(map[string]scratch.Card),
		cardNumbers: make(map[string]map[uint]bool),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

// GameStore implementation ----------------------------------------------------

func (s *Store) CreateGame(_ context.Context, g game.Game) (game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = s.nextIDLocked()
	} else if _, exists := s.games[g.ID]; exists {
		return game.Game{}, fmt.Errorf("game %s already exists", g.ID)
	}

	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	g = cloneGame(g)

	s.games[g.ID] = g
	return cloneGame(g), nil
}

func (s *Store) UpdateGame(_ context.Context, g game.Game) (game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.games[g.ID]
	if !ok {
		return game.Game{}, fmt.Errorf("game %s not found", g.ID)
	}

	g.CreatedAt = original.CreatedAt
	g.UpdatedAt = time.Now().UTC()
	g = cloneGame(g)

	s.games[g.ID] = g
	return cloneGame(g), nil
}

func (s *Store) GetGame(_ context.Context, id string) (game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return game.Game{}, fmt.Errorf("game %s not found", id)
	}
	return cloneGame(g), nil
}

func (s *Store) ListGames(_ context.Context, accountID string) ([]game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]game.Game, 0, len(s.games))
	for _, g := range s.games {
		if accountID != "" && g.AccountID != accountID {
			continue
		}
		result = append(result, cloneGame(g))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// ClaimStore implementation ---------------------------------------------------

func (s *Store) CreateClaim(_ context.Context, claim draw.SlotClaim) (draw.SlotClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[claim.GameID]; !ok {
		return draw.SlotClaim{}, fmt.Errorf("game %s not found", claim.GameID)
	}

	if claim.ID == "" {
		claim.ID = s.nextIDLocked()
	}
	claim.CreatedAt = time.Now().UTC()

	s.claims[claim.GameID] = append(s.claims[claim.GameID], claim)
	return claim, nil
}

func (s *Store) ListClaims(_ context.Context, gameID string) ([]draw.SlotClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	claims := s.claims[gameID]
	result := make([]draw.SlotClaim, len(claims))
	copy(result, claims)
	return result, nil
}

// DrawStore implementation ----------------------------------------------------

func (s *Store) CreateDraw(_ context.Context, rec draw.Record) (draw.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.drawsByGame[rec.GameID]; exists {
		return draw.Record{}, storage.ErrDrawExists
	}
	if rec.ID == "" {
		rec.ID = s.nextIDLocked()
	}

	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	s.drawsByGame[rec.GameID] = rec
	return rec, nil
}

func (s *Store) UpdateDraw(_ context.Context, rec draw.Record) (draw.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.drawsByGame[rec.GameID]
	if !ok || original.ID != rec.ID {
		return draw.Record{}, fmt.Errorf("draw %s not found", rec.ID)
	}

	rec.CreatedAt = original.CreatedAt
	rec.UpdatedAt = time.Now().UTC()

	s.drawsByGame[rec.GameID] = rec
	return rec, nil
}

func (s *Store) GetDrawByGame(_ context.Context, gameID string) (draw.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.drawsByGame[gameID]
	if !ok {
		return draw.Record{}, fmt.Errorf("game %s: %w", gameID, storage.ErrDrawNotFound)
	}
	return rec, nil
}

// CardStore implementation ----------------------------------------------------

func (s *Store) CreateCard(_ context.Context, card scratch.Card) (scratch.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if card.CardNumber < 1 {
		return scratch.Card{}, fmt.Errorf("card number must be positive")
	}
	numbers, ok := s.cardNumbers[card.GameID]
	if !ok {
		numbers = make(map[uint]bool)
		s.cardNumbers[card.GameID] = numbers
	}
	if numbers[card.CardNumber] {
		return scratch.Card{}, fmt.Errorf("card %d already issued for game %s", card.CardNumber, card.GameID)
	}

	if card.ID == "" {
		card.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	card.CreatedAt = now
	card.UpdatedAt = now
	card = cloneCard(card)

	numbers[card.CardNumber] = true
	s.cards[card.ID] = card
	return cloneCard(card), nil
}

func (s *Store) UpdateCard(_ context.Context, card scratch.Card) (scratch.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.cards[card.ID]
	if !ok {
		return scratch.Card{}, fmt.Errorf("card %s not found", card.ID)
	}

	card.CreatedAt = original.CreatedAt
	card.UpdatedAt = time.Now().UTC()
	card = cloneCard(card)

	s.cards[card.ID] = card
	return cloneCard(card), nil
}

func (s *Store) GetCard(_ context.Context, id string) (scratch.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, ok := s.cards[id]
	if !ok {
		return scratch.Card{}, fmt.Errorf("card %s not found", id)
	}
	return cloneCard(card), nil
}

func (s *Store) ListCards(_ context.Context, gameID string) ([]scratch.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []scratch.Card
	for _, card := range s.cards {
		if card.GameID == gameID {
			result = append(result, cloneCard(card))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CardNumber < result[j].CardNumber })
	return result, nil
}

func (s *Store) NextCardNumber(_ context.Context, gameID string) (uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.games[gameID]; !ok {
		return 0, fmt.Errorf("game %s not found", gameID)
	}

	var max uint
	for number := range s.cardNumbers[gameID] {
		if number > max {
			max = number
		}
	}
	return max + 1, nil
}

// clone helpers ---------------------------------------------------------------

func cloneGame(g game.Game) game.Game {
	if g.Grid != nil {
		grid := *g.Grid
		g.Grid = &grid
	}
	if g.Ticket != nil {
		ticket := *g.Ticket
		g.Ticket = &ticket
	}
	if g.Scratch != nil {
		sc := *g.Scratch
		sc.PrizeTable = game.ClonePrizeTable(sc.PrizeTable)
		g.Scratch = &sc
	}
	return g
}

func cloneCard(card scratch.Card) scratch.Card {
	if card.Prize != nil {
		prize := *card.Prize
		card.Prize = &prize
	}
	return card
}
