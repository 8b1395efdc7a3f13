// Package tick implements the bidirectional conversion between real prices
// and integer tick indices that every other piece of the book indexes on.
// Equality between prices is always decided on the integer tick index, never
// on a raw float or decimal comparison, so the ambiguity the matching engine
// cannot tolerate never enters the hot path.
package tick

import (
	"github.com/shopspring/decimal"

	"fenrir/internal/bookerr"
)

// Kind names one of the configurable tick sizes a book can be constructed
// with: quarters, tenths, thirty-seconds, hundredths, thousandths, and
// ten-thousandths of the quote unit.
type Kind int

const (
	Quarter Kind = iota
	Tenth
	ThirtySecond
	Hundredth
	Thousandth
	TenThousandth
)

// denominator returns how many ticks make up one unit of quote currency for
// the given kind, e.g. Hundredth -> 100 ticks per dollar.
func (k Kind) denominator() (int64, error) {
	switch k {
	case Quarter:
		return 4, nil
	case Tenth:
		return 10, nil
	case ThirtySecond:
		return 32, nil
	case Hundredth:
		return 100, nil
	case Thousandth:
		return 1000, nil
	case TenThousandth:
		return 10000, nil
	default:
		return 0, bookerr.Newf(bookerr.InvalidArgument, "unknown tick kind %d", k)
	}
}

func (k Kind) String() string {
	switch k {
	case Quarter:
		return "1/4"
	case Tenth:
		return "1/10"
	case ThirtySecond:
		return "1/32"
	case Hundredth:
		return "1/100"
	case Thousandth:
		return "1/1000"
	case TenThousandth:
		return "1/10000"
	default:
		return "unknown"
	}
}

// Arithmetic converts between tick indices (0 .. N-1) and prices for a book
// fixed at construction to [min, max] at a given Kind. Tick 0 is min, the
// highest valid tick is max.
type Arithmetic struct {
	kind       Kind
	denom      int64
	minScaled  int64 // min price * denom, rounded half-up
	maxScaled  int64
}

// NewArithmetic validates the configured range and builds the converter.
// min must be > 0 and min <= max; each bound is then rounded half-up onto
// the tick grid of kind, so a bound that is not tick-aligned is snapped to
// the nearest tick rather than rejected.
func NewArithmetic(kind Kind, min, max decimal.Decimal) (*Arithmetic, error) {
	denom, err := kind.denominator()
	if err != nil {
		return nil, err
	}
	if min.Sign() <= 0 {
		return nil, bookerr.New(bookerr.InvalidArgument, "min_price must be > 0")
	}
	if min.GreaterThan(max) {
		return nil, bookerr.New(bookerr.InvalidArgument, "min_price must be <= max_price")
	}

	a := &Arithmetic{kind: kind, denom: denom}
	minScaled, err := a.scale(min)
	if err != nil {
		return nil, bookerr.New(bookerr.InvalidArgument, "min_price does not round onto a valid tick")
	}
	maxScaled, err := a.scale(max)
	if err != nil {
		return nil, bookerr.New(bookerr.InvalidArgument, "max_price does not round onto a valid tick")
	}
	a.minScaled = minScaled
	a.maxScaled = maxScaled
	return a, nil
}

// scale rounds p onto the nearest tick (half-up) and returns it as an
// integer count of ticks-from-zero, independent of [min,max].
func (a *Arithmetic) scale(p decimal.Decimal) (int64, error) {
	scaled := p.Mul(decimal.NewFromInt(a.denom)).Round(0)
	return scaled.IntPart(), nil
}

// Kind returns the tick kind the book was constructed with.
func (a *Arithmetic) Kind() Kind { return a.kind }

// TickSize returns the size of one tick as an exact decimal, e.g. 0.01 for
// Hundredth.
func (a *Arithmetic) TickSize() decimal.Decimal {
	return decimal.NewFromInt(1).Div(decimal.NewFromInt(a.denom))
}

// N returns the number of valid ticks in the book's configured range
// (tick_memory_required for a unit-size element).
func (a *Arithmetic) N() int {
	return int(a.maxScaled-a.minScaled) + 1
}

// PriceToTick rounds p to the nearest tick (half-up) and returns its index,
// erroring if the rounded price falls outside [min, max].
func (a *Arithmetic) PriceToTick(p decimal.Decimal) (int, error) {
	scaled, _ := a.scale(p)
	if scaled < a.minScaled || scaled > a.maxScaled {
		return 0, bookerr.Newf(bookerr.InvalidArgument, "price %s rounds outside [%s, %s]", p, a.MinPrice(), a.MaxPrice())
	}
	return int(scaled - a.minScaled), nil
}

// TickToPrice returns the exact decimal price named by tick t. Callers that
// already validated t (e.g. via PriceToTick or an internal tick index) can
// rely on this never erroring for 0 <= t < N(); t is not range-checked, so
// an out-of-range tick maps to a price outside [min, max].
func (a *Arithmetic) TickToPrice(t int) decimal.Decimal {
	scaled := a.minScaled + int64(t)
	return decimal.NewFromInt(scaled).Div(decimal.NewFromInt(a.denom))
}

// IsValidPrice reports whether p rounds onto a tick within [min, max].
func (a *Arithmetic) IsValidPrice(p decimal.Decimal) bool {
	_, err := a.PriceToTick(p)
	return err == nil
}

// MinPrice returns the price at tick 0.
func (a *Arithmetic) MinPrice() decimal.Decimal {
	return a.TickToPrice(0)
}

// MaxPrice returns the price at the highest valid tick.
func (a *Arithmetic) MaxPrice() decimal.Decimal {
	return a.TickToPrice(a.N() - 1)
}

// TicksInRange returns how many ticks lie between lo and hi inclusive, once
// both are rounded onto the grid. MemoryRequired builds on it.
func TicksInRange(kind Kind, lo, hi decimal.Decimal) (int, error) {
	if lo.GreaterThan(hi) {
		return 0, bookerr.New(bookerr.InvalidArgument, "low must be <= high")
	}
	a, err := NewArithmetic(kind, lo, hi)
	if err != nil {
		return 0, err
	}
	return a.N(), nil
}

// MemoryRequired estimates the bytes a dense price-level vector spanning
// [lo, hi] would occupy, for callers sizing a grow operation ahead of time.
// perLevelBytes is the caller's measured or assumed per-level footprint.
func MemoryRequired(kind Kind, lo, hi decimal.Decimal, perLevelBytes uintptr) (uintptr, error) {
	n, err := TicksInRange(kind, lo, hi)
	if err != nil {
		return 0, err
	}
	return uintptr(n) * perLevelBytes, nil
}

// growAbove returns a new Arithmetic with the same min and kind but a higher
// max, along with the count of newly appended ticks.
func (a *Arithmetic) growAbove(newMax decimal.Decimal) (*Arithmetic, int, error) {
	na, err := NewArithmetic(a.kind, a.MinPrice(), newMax)
	if err != nil {
		return nil, 0, err
	}
	if na.maxScaled <= a.maxScaled {
		return nil, 0, bookerr.New(bookerr.InvalidState, "grow_book_above requires a strictly higher max")
	}
	return na, int(na.maxScaled - a.maxScaled), nil
}

// growBelow returns a new Arithmetic with the same max and kind but a lower
// min, along with the count of newly prepended ticks (the shift every
// existing tick index must move up by).
func (a *Arithmetic) growBelow(newMin decimal.Decimal) (*Arithmetic, int, error) {
	na, err := NewArithmetic(a.kind, newMin, a.MaxPrice())
	if err != nil {
		return nil, 0, err
	}
	if na.minScaled >= a.minScaled {
		return nil, 0, bookerr.New(bookerr.InvalidState, "grow_book_below requires a strictly lower min")
	}
	return na, int(a.minScaled - na.minScaled), nil
}

// GrowAbove is the exported form of growAbove for the book package.
func (a *Arithmetic) GrowAbove(newMax decimal.Decimal) (*Arithmetic, int, error) {
	return a.growAbove(newMax)
}

// GrowBelow is the exported form of growBelow for the book package.
func (a *Arithmetic) GrowBelow(newMin decimal.Decimal) (*Arithmetic, int, error) {
	return a.growBelow(newMin)
}
