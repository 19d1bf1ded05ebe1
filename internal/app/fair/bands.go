package fair

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sorteiohub/draw-engine/internal/app/domain/game"
)

var hundred = decimal.NewFromInt(100)

// Band is a prize band resolved onto a contiguous range of card numbers,
// [First, Last] inclusive. A band whose rounded quantity is zero claims no
// range and is omitted.
type Band struct {
	Prize game.PrizeBand
	First uint
	Last  uint
}

// ComputeBands partitions the card-number space [1, stock] into contiguous
// ranges, walking the prize table in its given order from card 1. Each
// band's quantity is round(percentage * stock / 100) using banker's rounding
// (round-half-to-even); the rounding rule is a fixed contract, since
// changing it would re-band cards already in circulation. The final band is
// clamped so no range extends past the stock.
//
// Contiguous deterministic bands, rather than per-card random rolls,
// guarantee the promised prize counts are distributed exactly regardless of
// how many cards end up sold or revealed.
func ComputeBands(table []game.PrizeBand, stock uint) ([]Band, error) {
	if err := game.ValidatePrizeTable(table, stock); err != nil {
		return nil, err
	}

	stockDec := decimal.NewFromInt(int64(stock))
	bands := make([]Band, 0, len(table))
	cursor := uint(1)

	for _, prize := range table {
		if cursor > stock {
			break
		}
		quantity := prize.Percentage.Mul(stockDec).Div(hundred).RoundBank(0).IntPart()
		if quantity < 1 {
			continue
		}
		last := cursor + uint(quantity) - 1
		if last > stock {
			last = stock
		}
		bands = append(bands, Band{Prize: prize, First: cursor, Last: last})
		cursor = last + 1
	}

	return bands, nil
}

// AllocatePrize resolves which prize band, if any, the given card number
// falls into. Card numbers beyond the last claimed range win nothing, which
// is the majority case. The allocation depends only on its inputs, so
// repeated calls for the same card always agree.
func AllocatePrize(table []game.PrizeBand, stock, cardNumber uint) (*game.PrizeBand, error) {
	if cardNumber < 1 || cardNumber > stock {
		return nil, fmt.Errorf("%w: card number %d not in [1, %d]", ErrOutOfRange, cardNumber, stock)
	}

	bands, err := ComputeBands(table, stock)
	if err != nil {
		return nil, err
	}

	for _, band := range bands {
		if cardNumber >= band.First && cardNumber <= band.Last {
			prize := band.Prize
			return &prize, nil
		}
	}
	return nil, nil
}
