package compose_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/book"
	"fenrir/internal/compose"
)

func TestTrailingStop_AdvanceTightensWithoutFalseCancel(t *testing.T) {
	b := newTestBook(t)

	_, err := b.InsertLimit(book.Sell, dec("100.00"), 50, nil)
	require.NoError(t, err)
	_, err = b.InsertLimit(book.Buy, dec("100.00"), 50, nil)
	require.NoError(t, err)

	var events []book.MessageKind
	ts, err := compose.NewTrailingStop(b, book.Sell, dec("2.00"), 10, func(msg book.MessageKind, id uint64, price decimal.Decimal, size uint64) {
		events = append(events, msg)
	})
	require.NoError(t, err)

	_, err = b.InsertLimit(book.Sell, dec("105.00"), 50, nil)
	require.NoError(t, err)
	_, err = b.InsertLimit(book.Buy, dec("105.00"), 50, nil)
	require.NoError(t, err)

	require.NoError(t, ts.Advance())

	// The replace-induced cancel of the superseded leg must not be
	// forwarded to the caller as a real event.
	assert.NotContains(t, events, book.MsgCancel)

	// A second advance must still work, proving the trail wasn't marked
	// dead by the first replace's internal cancel.
	_, err = b.InsertLimit(book.Sell, dec("110.00"), 100, nil)
	require.NoError(t, err)
	_, err = b.InsertLimit(book.Buy, dec("110.00"), 50, nil)
	require.NoError(t, err)
	require.NoError(t, ts.Advance())

	require.NoError(t, ts.Cancel())
}
