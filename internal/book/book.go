// Package book implements the single-instrument, in-memory limit order
// book and matching engine: the price-indexed storage, the matching and
// stop-trigger algorithm, the order registry, and the deferred notification
// pipeline. Every public method here is synchronous and serialized by the
// book's own mutex, matching the "coarse lock around top-level operations"
// concurrency model the core requires — different Book instances may be
// driven from different goroutines independently, and concurrent calls
// into one Book are serialized by that mutex.
package book

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"

	"fenrir/internal/bookerr"
	"fenrir/internal/metrics"
	"fenrir/internal/tick"
)

// noTick is the sentinel stored in insideBid/insideAsk when that side of
// the book holds no resting limit liquidity.
const noTick = -1

// Book is one instrument's order book.
type Book struct {
	mu sync.Mutex

	symbol string
	arith  *tick.Arithmetic
	levels []level
	reg    *registry
	j      *journal

	insideBid int
	insideAsk int

	limitSide []Side // which side currently occupies levels[t].limit, valid only while nonempty

	occupiedLimitBuy  *btree.BTreeG[int] // ascending ticks with a nonempty BUY limit chain
	occupiedLimitSell *btree.BTreeG[int] // ascending ticks with a nonempty SELL limit chain
	occupiedStopBuy   *btree.BTreeG[int] // ascending ticks with a nonempty BUY stop chain
	occupiedStopSell  *btree.BTreeG[int] // ascending ticks with a nonempty SELL stop chain

	lastPrice decimal.Decimal
	lastSize  uint64
	volume    uint64

	logger  zerolog.Logger
	metrics *metrics.Collector
}

// Option configures a Book at construction.
type Option func(*Book)

// WithSymbol sets the instrument symbol surfaced in logs and metrics.
func WithSymbol(symbol string) Option {
	return func(b *Book) { b.symbol = symbol }
}

// WithLogger overrides the zerolog.Logger used for out-of-band reporting
// (e.g. a recovered panic from a user callback). Defaults to the global
// zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Book) { b.logger = l }
}

// WithMetrics attaches a Prometheus collector. A nil collector (the
// default) makes every metrics call a no-op.
func WithMetrics(c *metrics.Collector) Option {
	return func(b *Book) { b.metrics = c }
}

// WithJournalCapacity overrides the default bound on the time-and-sales
// vector.
func WithJournalCapacity(n int) Option {
	return func(b *Book) { b.j = newJournal(n) }
}

// New constructs a Book spanning [minPrice, maxPrice] at the given tick
// kind. Both bounds must be positive and minPrice <= maxPrice; each bound
// is rounded half-up onto the tick grid of kind.
func New(kind tick.Kind, minPrice, maxPrice decimal.Decimal, opts ...Option) (*Book, error) {
	arith, err := tick.NewArithmetic(kind, minPrice, maxPrice)
	if err != nil {
		return nil, err
	}

	b := &Book{
		arith:             arith,
		levels:            make([]level, arith.N()),
		limitSide:         make([]Side, arith.N()),
		reg:               newRegistry(),
		j:                 newJournal(defaultJournalCap),
		insideBid:         noTick,
		insideAsk:         noTick,
		lastPrice:         decimal.Zero,
		logger:            log.Logger,
		occupiedLimitBuy:  btree.NewBTreeG(lessInt),
		occupiedLimitSell: btree.NewBTreeG(lessInt),
		occupiedStopBuy:   btree.NewBTreeG(lessInt),
		occupiedStopSell:  btree.NewBTreeG(lessInt),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func lessInt(a, b int) bool { return a < b }

func (b *Book) levelAt(t int) *level { return &b.levels[t] }

// occupiedSet returns the occupied-level index tracking nonempty chains of
// the given kind (limit or stop) on side.
func (b *Book) occupiedSet(side Side, isStop bool) *btree.BTreeG[int] {
	switch {
	case !isStop && side == Buy:
		return b.occupiedLimitBuy
	case !isStop && side == Sell:
		return b.occupiedLimitSell
	case isStop && side == Buy:
		return b.occupiedStopBuy
	default:
		return b.occupiedStopSell
	}
}

// markOccupied records that tick t now holds a nonempty chain on side,
// called exactly on the 0->1 count transition for that chain.
func (b *Book) markOccupied(t int, side Side, isStop bool) {
	if !isStop {
		b.limitSide[t] = side
	}
	b.occupiedSet(side, isStop).Set(t)
}

// markVacated records that tick t's chain of the given kind just emptied.
func (b *Book) markVacated(t int, side Side, isStop bool) {
	b.occupiedSet(side, isStop).Delete(t)
}

func (b *Book) validateSize(size uint64) error {
	if size == 0 {
		return bookerr.New(bookerr.InvalidArgument, "size must be > 0")
	}
	return nil
}

// validateCallback exists for symmetry with validateSize; a nil callback is
// valid and simply means the caller does not want lifecycle notifications
// (dispatch already guards against invoking a nil callback).
func (b *Book) validateCallback(cb Callback) error {
	return nil
}

func (b *Book) priceToTick(p decimal.Decimal) (int, error) {
	return b.arith.PriceToTick(p)
}

// TickSize returns the size of one tick as an exact decimal.
func (b *Book) TickSize() decimal.Decimal { return b.arith.TickSize() }

// MinPrice returns the price at tick 0.
func (b *Book) MinPrice() decimal.Decimal { return b.arith.MinPrice() }

// MaxPrice returns the price at the highest valid tick.
func (b *Book) MaxPrice() decimal.Decimal { return b.arith.MaxPrice() }

// Symbol returns the instrument symbol the book was constructed with.
func (b *Book) Symbol() string { return b.symbol }
