package draws

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sorteiohub/draw-engine/internal/app/domain/draw"
	"github.com/sorteiohub/draw-engine/internal/app/domain/game"
	"github.com/sorteiohub/draw-engine/internal/app/fair"
	"github.com/sorteiohub/draw-engine/internal/app/storage"
	"github.com/sorteiohub/draw-engine/internal/app/storage/memory"
)

// faultyDrawStore simulates a store whose reads fail outright.
type faultyDrawStore struct {
	storage.DrawStore
	err error
}

func (f faultyDrawStore) GetDrawByGame(context.Context, string) (draw.Record, error) {
	return draw.Record{}, f.err
}

func seedGame(t *testing.T, store *memory.Store, status game.Status) game.Game {
	t.Helper()
	g, err := store.CreateGame(context.Background(), game.Game{
		AccountID: "acct-1",
		Name:      "Quadricula",
		Type:      game.TypeGrid,
		Status:    status,
		Grid:      &game.GridConfig{Rows: 10, Cols: 10},
	})
	if err != nil {
		t.Fatalf("seed game: %v", err)
	}
	return g
}

func TestPreparePublishesCommitmentOnly(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	g := seedGame(t, store, game.StatusOpen)

	rec, err := svc.Prepare(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if rec.Seed.Commitment == "" || len(rec.Seed.Commitment) != 64 {
		t.Fatalf("expected 64-char commitment, got %q", rec.Seed.Commitment)
	}
	if rec.Executed() {
		t.Fatalf("prepared draw must not be executed")
	}

	// A second commitment for the same game must be rejected.
	if _, err := svc.Prepare(context.Background(), g.ID); err == nil {
		t.Fatalf("expected second prepare to fail")
	}

	// Fetching before execution hides the raw seed.
	fetched, err := svc.Get(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Seed.Raw != "" {
		t.Fatalf("raw seed leaked before execution")
	}
	if fetched.Seed.Commitment != rec.Seed.Commitment {
		t.Fatalf("commitment changed between prepare and get")
	}
}

func TestExecuteResolvesWinner(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	g := seedGame(t, store, game.StatusClosed)

	prepared, err := svc.Prepare(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	outcome, err := fair.DeriveOutcome(g, prepared.Seed.Raw)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}

	winning, err := store.CreateClaim(context.Background(), draw.SlotClaim{
		GameID:        g.ID,
		ParticipantID: "maria",
		Row:           outcome.Row,
		Col:           outcome.Col,
	})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}

	rec, err := svc.Execute(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !rec.Executed() {
		t.Fatalf("expected executed record")
	}
	if rec.WinnerClaimID != winning.ID {
		t.Fatalf("expected winner %s, got %s", winning.ID, rec.WinnerClaimID)
	}
	if rec.Seed.Raw != prepared.Seed.Raw {
		t.Fatalf("revealed seed does not match commitment seed")
	}

	updated, err := store.GetGame(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if updated.Status != game.StatusDrawn {
		t.Fatalf("expected drawn status, got %s", updated.Status)
	}

	// The draw runs at most once.
	if _, err := svc.Execute(context.Background(), g.ID); err == nil {
		t.Fatalf("expected repeat execute to fail")
	}
}

func TestExecuteRequiresClosedGame(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	g := seedGame(t, store, game.StatusOpen)

	if _, err := svc.Execute(context.Background(), g.ID); err == nil {
		t.Fatalf("expected execute on open game to fail")
	}
}

func TestExecuteWithoutPriorCommitment(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	g := seedGame(t, store, game.StatusClosed)

	rec, err := svc.Execute(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if rec.Seed.Commitment == "" {
		t.Fatalf("expected generated commitment")
	}
	if rec.WinnerClaimID != "" {
		t.Fatalf("expected unclaimed winning slot")
	}
}

func TestExecutePropagatesStorageFailure(t *testing.T) {
	store := memory.New()
	svc := New(store, store, faultyDrawStore{DrawStore: store, err: fmt.Errorf("connection reset")}, nil)
	g := seedGame(t, store, game.StatusClosed)

	_, err := svc.Execute(context.Background(), g.ID)
	if err == nil || errors.Is(err, storage.ErrDrawNotFound) {
		t.Fatalf("expected storage failure to propagate, got %v", err)
	}

	// A read failure must not fall back to generating a fresh seed.
	if _, err := store.GetDrawByGame(context.Background(), g.ID); !errors.Is(err, storage.ErrDrawNotFound) {
		t.Fatalf("expected no draw record after failed execute, got %v", err)
	}
	updated, err := store.GetGame(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if updated.Status != game.StatusClosed {
		t.Fatalf("expected game to stay closed, got %s", updated.Status)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	g := seedGame(t, store, game.StatusClosed)

	if _, err := svc.Execute(context.Background(), g.ID); err != nil {
		t.Fatalf("execute: %v", err)
	}

	ok, err := svc.Verify(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected honest draw to verify")
	}

	rec, err := store.GetDrawByGame(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("get draw: %v", err)
	}
	rec.Seed.Raw = rec.Seed.Raw + "-tampered"
	if _, err := store.UpdateDraw(context.Background(), rec); err != nil {
		t.Fatalf("update draw: %v", err)
	}

	ok, err = svc.Verify(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("verify tampered: %v", err)
	}
	if ok {
		t.Fatalf("expected tampered seed to fail verification")
	}
}

func TestVerifyRequiresExecution(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	g := seedGame(t, store, game.StatusOpen)

	if _, err := svc.Prepare(context.Background(), g.ID); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if _, err := svc.Verify(context.Background(), g.ID); err == nil {
		t.Fatalf("expected verify before execution to fail")
	}
}
