package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/sorteiohub/draw-engine/internal/app/domain/draw"
	"github.com/sorteiohub/draw-engine/internal/app/domain/game"
	"github.com/sorteiohub/draw-engine/internal/app/domain/scratch"
	"github.com/sorteiohub/draw-engine/internal/app/storage"
)

func TestCreateDrawIsOncePerGame(t *testing.T) {
	ctx := context.Background()
	store := New()

	g, err := store.CreateGame(ctx, game.Game{
		AccountID: "acct",
		Type:      game.TypeTicket,
		Ticket:    &game.TicketConfig{TotalTickets: 100},
		Status:    game.StatusOpen,
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	if _, err := store.GetDrawByGame(ctx, g.ID); !errors.Is(err, storage.ErrDrawNotFound) {
		t.Fatalf("expected ErrDrawNotFound before prepare, got %v", err)
	}

	if _, err := store.CreateDraw(ctx, draw.Record{GameID: g.ID}); err != nil {
		t.Fatalf("first draw: %v", err)
	}
	_, err = store.CreateDraw(ctx, draw.Record{GameID: g.ID})
	if !errors.Is(err, storage.ErrDrawExists) {
		t.Fatalf("expected ErrDrawExists, got %v", err)
	}
}

func TestCardNumberUniqueness(t *testing.T) {
	ctx := context.Background()
	store := New()

	g, err := store.CreateGame(ctx, game.Game{
		AccountID: "acct",
		Type:      game.TypeScratch,
		Scratch:   &game.ScratchConfig{Stock: 10},
		Status:    game.StatusOpen,
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	next, err := store.NextCardNumber(ctx, g.ID)
	if err != nil {
		t.Fatalf("next card number: %v", err)
	}
	if next != 1 {
		t.Fatalf("expected first card number 1, got %d", next)
	}

	if _, err := store.CreateCard(ctx, scratch.Card{GameID: g.ID, CardNumber: 1}); err != nil {
		t.Fatalf("create card: %v", err)
	}
	if _, err := store.CreateCard(ctx, scratch.Card{GameID: g.ID, CardNumber: 1}); err == nil {
		t.Fatal("expected duplicate card number to be rejected")
	}

	next, err = store.NextCardNumber(ctx, g.ID)
	if err != nil {
		t.Fatalf("next card number: %v", err)
	}
	if next != 2 {
		t.Fatalf("expected next card number 2, got %d", next)
	}
}

func TestStoredGameIsIsolatedFromCaller(t *testing.T) {
	ctx := context.Background()
	store := New()

	cfg := &game.ScratchConfig{Stock: 10, PrizeTable: []game.PrizeBand{{Name: "p"}}}
	g, err := store.CreateGame(ctx, game.Game{AccountID: "acct", Type: game.TypeScratch, Scratch: cfg})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	// Mutating the caller's config must not reach the stored copy.
	cfg.PrizeTable[0].Name = "changed"
	stored, err := store.GetGame(ctx, g.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if stored.Scratch.PrizeTable[0].Name != "p" {
		t.Fatalf("stored prize table mutated: %q", stored.Scratch.PrizeTable[0].Name)
	}
}

func TestListGamesFiltersByAccount(t *testing.T) {
	ctx := context.Background()
	store := New()

	for _, acct := range []string{"a", "a", "b"} {
		if _, err := store.CreateGame(ctx, game.Game{
			AccountID: acct,
			Type:      game.TypeTicket,
			Ticket:    &game.TicketConfig{TotalTickets: 10},
		}); err != nil {
			t.Fatalf("create game: %v", err)
		}
	}

	games, err := store.ListGames(ctx, "a")
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games for account a, got %d", len(games))
	}

	all, err := store.ListGames(ctx, "")
	if err != nil {
		t.Fatalf("list all games: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 games in total, got %d", len(all))
	}
}
