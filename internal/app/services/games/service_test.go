package games

import (
	"context"
	"errors"
	"testing"

	"github.com/sorteiohub/draw-engine/internal/app/domain/draw"
	"github.com/sorteiohub/draw-engine/internal/app/domain/game"
	"github.com/sorteiohub/draw-engine/internal/app/fair"
	"github.com/sorteiohub/draw-engine/internal/app/storage/memory"
)

func newGridGame(t *testing.T, svc *Service) game.Game {
	t.Helper()
	g, err := svc.Create(context.Background(), game.Game{
		AccountID: "acct-1",
		Name:      "Rifa de Natal",
		Type:      game.TypeGrid,
		Grid:      &game.GridConfig{Rows: 10, Cols: 10},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return g
}

func TestCreateAndList(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)

	g := newGridGame(t, svc)
	if g.ID == "" {
		t.Fatalf("expected generated id")
	}
	if g.Status != game.StatusOpen {
		t.Fatalf("expected open status, got %s", g.Status)
	}

	list, err := svc.List(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 game, got %d", len(list))
	}

	other, err := svc.List(context.Background(), "acct-2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no games for other account, got %d", len(other))
	}
}

func TestCreateRejectsInvalidConfig(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)

	_, err := svc.Create(context.Background(), game.Game{
		AccountID: "acct-1",
		Name:      "broken",
		Type:      game.TypeGrid,
		Grid:      &game.GridConfig{Rows: 0, Cols: 10},
	})
	if !errors.Is(err, game.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestClaimValidation(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	g := newGridGame(t, svc)

	claim, err := svc.Claim(context.Background(), draw.SlotClaim{
		GameID:        g.ID,
		ParticipantID: "maria",
		Row:           3,
		Col:           6,
	})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claim.ID == "" {
		t.Fatalf("expected claim id")
	}

	_, err = svc.Claim(context.Background(), draw.SlotClaim{
		GameID:        g.ID,
		ParticipantID: "joao",
		Row:           11,
		Col:           1,
	})
	if !errors.Is(err, fair.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}

	_, err = svc.Claim(context.Background(), draw.SlotClaim{GameID: g.ID, Row: 1, Col: 1})
	if err == nil {
		t.Fatalf("expected error for missing participant")
	}
}

func TestClaimRejectedAfterClose(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	g := newGridGame(t, svc)

	closed, err := svc.Close(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != game.StatusClosed {
		t.Fatalf("expected closed status, got %s", closed.Status)
	}

	_, err = svc.Claim(context.Background(), draw.SlotClaim{
		GameID:        g.ID,
		ParticipantID: "maria",
		Row:           1,
		Col:           1,
	})
	if err == nil {
		t.Fatalf("expected claim on closed game to fail")
	}

	// Closing again is a no-op.
	if _, err := svc.Close(context.Background(), g.ID); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestTicketClaimBounds(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)

	g, err := svc.Create(context.Background(), game.Game{
		AccountID: "acct-1",
		Name:      "Bilhetes",
		Type:      game.TypeTicket,
		Ticket:    &game.TicketConfig{TotalTickets: 200},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Claim(context.Background(), draw.SlotClaim{
		GameID:        g.ID,
		ParticipantID: "ana",
		TicketNumber:  200,
	}); err != nil {
		t.Fatalf("claim ticket 200: %v", err)
	}

	_, err = svc.Claim(context.Background(), draw.SlotClaim{
		GameID:        g.ID,
		ParticipantID: "ana",
		TicketNumber:  201,
	})
	if !errors.Is(err, fair.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}
