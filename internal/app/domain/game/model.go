// Package game defines game configuration records for the draw engine.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Type discriminates the supported game variants.
type Type string

const (
	TypeGrid    Type = "grid"
	TypeTicket  Type = "ticket"
	TypeScratch Type = "scratch"
)

// Status represents the lifecycle state of a game instance.
type Status string

const (
	StatusOpen   Status = "open"   // accepting claims / issuing cards
	StatusClosed Status = "closed" // entry closed, drawable
	StatusDrawn  Status = "drawn"  // draw executed, terminal
)

// ErrInvalidConfig marks a malformed game configuration. Configuration is
// rejected before any derivation runs and is never silently coerced.
var ErrInvalidConfig = errors.New("invalid game config")

// GridConfig configures a bingo-style grid game.
type GridConfig struct {
	Rows uint `json:"rows"`
	Cols uint `json:"cols"`
}

// TicketConfig configures a numbered-ticket raffle.
type TicketConfig struct {
	TotalTickets uint `json:"total_tickets"`
}

// ScratchConfig configures an instant-win scratch card game.
type ScratchConfig struct {
	Stock      uint        `json:"stock"`
	PrizeTable []PrizeBand `json:"prize_table"`
}

// PrizeBand is one tier of a scratch game's prize table. Table order is
// significant: bands listed first claim the lowest card numbers, and the
// table is immutable once a game is created.
type PrizeBand struct {
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
	Value      decimal.Decimal `json:"value"`
}

// Game is a single game instance owned by an organizer account. Exactly one
// of Grid, Ticket, Scratch is set, matching Type.
type Game struct {
	ID           string
	AccountID    string
	Name         string
	Type         Type
	Status       Status
	Grid         *GridConfig
	Ticket       *TicketConfig
	Scratch      *ScratchConfig
	DrawSchedule string // optional cron expression for automatic draws
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var hundred = decimal.NewFromInt(100)

// Validate checks the variant configuration against its invariants.
func (g Game) Validate() error {
	switch g.Type {
	case TypeGrid:
		if g.Grid == nil {
			return fmt.Errorf("%w: grid settings missing", ErrInvalidConfig)
		}
		if g.Grid.Rows < 1 || g.Grid.Cols < 1 {
			return fmt.Errorf("%w: rows and cols must be at least 1", ErrInvalidConfig)
		}
	case TypeTicket:
		if g.Ticket == nil {
			return fmt.Errorf("%w: ticket settings missing", ErrInvalidConfig)
		}
		if g.Ticket.TotalTickets < 1 {
			return fmt.Errorf("%w: total tickets must be at least 1", ErrInvalidConfig)
		}
	case TypeScratch:
		if g.Scratch == nil {
			return fmt.Errorf("%w: scratch settings missing", ErrInvalidConfig)
		}
		return ValidatePrizeTable(g.Scratch.PrizeTable, g.Scratch.Stock)
	default:
		return fmt.Errorf("%w: unknown game type %q", ErrInvalidConfig, g.Type)
	}
	return nil
}

// ValidatePrizeTable checks a prize table against a stock size: stock must be
// positive, every percentage must lie in (0, 100], and the percentages must
// not sum past 100.
func ValidatePrizeTable(table []PrizeBand, stock uint) error {
	if stock < 1 {
		return fmt.Errorf("%w: stock must be at least 1", ErrInvalidConfig)
	}

	sum := decimal.Zero
	for i, band := range table {
		if band.Name == "" {
			return fmt.Errorf("%w: prize band %d has no name", ErrInvalidConfig, i)
		}
		if band.Percentage.LessThanOrEqual(decimal.Zero) || band.Percentage.GreaterThan(hundred) {
			return fmt.Errorf("%w: prize band %q percentage must be in (0, 100]", ErrInvalidConfig, band.Name)
		}
		if band.Value.IsNegative() {
			return fmt.Errorf("%w: prize band %q value must not be negative", ErrInvalidConfig, band.Name)
		}
		sum = sum.Add(band.Percentage)
	}
	if sum.GreaterThan(hundred) {
		return fmt.Errorf("%w: prize band percentages sum to %s, must not exceed 100", ErrInvalidConfig, sum)
	}
	return nil
}

// ClonePrizeTable returns a defensive copy of a prize table.
func ClonePrizeTable(table []PrizeBand) []PrizeBand {
	if table == nil {
		return nil
	}
	out := make([]PrizeBand, len(table))
	copy(out, table)
	return out
}
