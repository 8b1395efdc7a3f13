package compose_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/book"
	"fenrir/internal/compose"
	"fenrir/internal/tick"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestBook(t *testing.T) *book.Book {
	t.Helper()
	b, err := book.New(tick.Hundredth, dec("1.00"), dec("1000.00"))
	require.NoError(t, err)
	return b
}

func TestInsertOCO_PartialFillDoesNotCancelSibling(t *testing.T) {
	b := newTestBook(t)

	legA := func(cb book.Callback) (uint64, error) { return b.InsertLimit(book.Buy, dec("99.00"), 20, cb) }
	legB := func(cb book.Callback) (uint64, error) { return b.InsertLimit(book.Buy, dec("98.00"), 20, cb) }

	h, err := compose.InsertOCO(b, 20, 20, legA, legB, nil)
	require.NoError(t, err)

	// Partially fill leg A for less than its full size.
	_, err = b.InsertLimit(book.Sell, dec("99.00"), 5, nil)
	require.NoError(t, err)

	// Leg B must still be resting: cancelling it directly should succeed.
	require.NoError(t, h.Cancel())
}

func TestInsertOCO_ExhaustingFillCancelsSibling(t *testing.T) {
	b := newTestBook(t)

	legA := func(cb book.Callback) (uint64, error) { return b.InsertLimit(book.Buy, dec("99.00"), 20, cb) }
	legB := func(cb book.Callback) (uint64, error) { return b.InsertLimit(book.Buy, dec("98.00"), 20, cb) }

	var events []book.MessageKind
	onEvent := func(msg book.MessageKind, id uint64, price decimal.Decimal, size uint64) {
		events = append(events, msg)
	}

	_, err := compose.InsertOCO(b, 20, 20, legA, legB, onEvent)
	require.NoError(t, err)

	// Fully fill leg A in two partial fills; only the second should cancel
	// leg B.
	_, err = b.InsertLimit(book.Sell, dec("99.00"), 12, nil)
	require.NoError(t, err)
	_, err = b.InsertLimit(book.Sell, dec("99.00"), 8, nil)
	require.NoError(t, err)

	require.Contains(t, events, book.MsgFill)
	require.Contains(t, events, book.MsgCancel)

	// Leg B's bid level should be gone now that it was pulled as the
	// sibling of the exhausted leg A.
	bids := b.BidDepth(0)
	assert.Empty(t, bids)
}
