// Package registry is the process-local directory of live order books,
// one per traded symbol. It is the multi-instrument counterpart of a
// single engine.Engine's Books map: a gateway process holds exactly one
// registry and every inbound request is dispatched through it by symbol.
package registry

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"

	"fenrir/internal/book"
	"fenrir/internal/bookerr"
	"fenrir/internal/metrics"
	"fenrir/internal/tick"
)

// entry is one symbol's slot in the ordered tree, keyed for ascending
// symbol order so admin iteration is deterministic across calls.
type entry struct {
	symbol string
	book   *book.Book
}

func lessEntry(a, b entry) bool { return a.symbol < b.symbol }

// Registry maps symbol to its Book. Safe for concurrent use; each Book it
// hands out still serializes its own operations internally. Symbols are
// held in a github.com/tidwall/btree.BTreeG ordered by symbol so that
// Symbols always returns them in the same, ascending order rather than
// Go's randomized map order.
type Registry struct {
	mu     sync.RWMutex
	books  *btree.BTreeG[entry]
	logger zerolog.Logger
}

// New constructs an empty Registry. Logger is attached to every Book
// created through it; pass zerolog.Nop() for silence.
func New(logger zerolog.Logger) *Registry {
	return &Registry{
		books:  btree.NewBTreeG(lessEntry),
		logger: logger,
	}
}

// Create registers a new Book for symbol, spanning [minPrice, maxPrice] at
// the given tick kind. It is an error to create a symbol that already
// exists.
func (r *Registry) Create(symbol string, kind tick.Kind, minPrice, maxPrice decimal.Decimal, collector *metrics.Collector) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.books.Get(entry{symbol: symbol}); exists {
		return nil, bookerr.Newf(bookerr.InvalidState, "symbol %q already registered", symbol)
	}

	b, err := book.New(kind, minPrice, maxPrice,
		book.WithSymbol(symbol),
		book.WithLogger(r.logger.With().Str("symbol", symbol).Logger()),
		book.WithMetrics(collector),
	)
	if err != nil {
		return nil, err
	}

	r.books.Set(entry{symbol: symbol, book: b})
	return b, nil
}

// Lookup returns the Book for symbol, or an error if no such symbol has
// been created.
func (r *Registry) Lookup(symbol string) (*book.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.books.Get(entry{symbol: symbol})
	if !ok {
		return nil, bookerr.Newf(bookerr.NotFound, "symbol %q not registered", symbol)
	}
	return e.book, nil
}

// Remove deletes symbol from the registry. It does not affect any Book
// instance already held by a caller.
func (r *Registry) Remove(symbol string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.books.Delete(entry{symbol: symbol})
}

// Symbols returns every currently registered symbol in ascending order.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, r.books.Len())
	r.books.Scan(func(e entry) bool {
		out = append(out, e.symbol)
		return true
	})
	return out
}

// DumpSymbols returns every registered symbol paired with its Book, for
// admin/introspection tooling that needs both the name and a handle. The
// result is a Go map, so ranging over it does not follow the ascending
// order that Symbols returns.
func (r *Registry) DumpSymbols() map[string]*book.Book {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*book.Book, r.books.Len())
	r.books.Scan(func(e entry) bool {
		out[e.symbol] = e.book
		return true
	})
	return out
}
