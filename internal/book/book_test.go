package book_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/book"
	"fenrir/internal/tick"
)

func newTestBook(t *testing.T) *book.Book {
	t.Helper()
	b, err := book.New(tick.Hundredth, dec("1.00"), dec("1000.00"))
	require.NoError(t, err)
	return b
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type recorder struct {
	events []event
}

type event struct {
	msg   book.MessageKind
	id    uint64
	price decimal.Decimal
	size  uint64
}

func (r *recorder) cb() book.Callback {
	return func(msg book.MessageKind, id uint64, price decimal.Decimal, size uint64) {
		r.events = append(r.events, event{msg, id, price, size})
	}
}

func TestInsertLimit_RestsWhenNoCross(t *testing.T) {
	b := newTestBook(t)
	r := &recorder{}

	id, err := b.InsertLimit(book.Buy, dec("99.00"), 100, r.cb())
	require.NoError(t, err)
	assert.NotZero(t, id)

	bid, err := b.BidPrice()
	require.NoError(t, err)
	assert.True(t, dec("99.00").Equal(bid))
	assert.Equal(t, uint64(100), b.BidSize())
	assert.Empty(t, r.events)
}

func TestInsertLimit_FullyMatchesRestingOrder(t *testing.T) {
	b := newTestBook(t)
	maker := &recorder{}
	taker := &recorder{}

	_, err := b.InsertLimit(book.Sell, dec("100.00"), 50, maker.cb())
	require.NoError(t, err)

	_, err = b.InsertLimit(book.Buy, dec("100.00"), 50, taker.cb())
	require.NoError(t, err)

	require.Len(t, maker.events, 1)
	require.Len(t, taker.events, 1)
	assert.Equal(t, book.MsgFill, maker.events[0].msg)
	assert.Equal(t, book.MsgFill, taker.events[0].msg)
	assert.Equal(t, uint64(50), maker.events[0].size)

	assert.True(t, dec("100.00").Equal(b.LastPrice()))
	assert.Equal(t, uint64(50), b.LastSize())
	assert.Equal(t, uint64(50), b.Volume())

	_, err = b.AskPrice()
	assert.Error(t, err)
}

func TestInsertLimit_PartialFillRestsResidual(t *testing.T) {
	b := newTestBook(t)
	maker := &recorder{}
	taker := &recorder{}

	_, err := b.InsertLimit(book.Sell, dec("100.00"), 50, maker.cb())
	require.NoError(t, err)

	_, err = b.InsertLimit(book.Buy, dec("100.00"), 80, taker.cb())
	require.NoError(t, err)

	require.Len(t, taker.events, 1)
	assert.Equal(t, book.MsgFill, taker.events[0].msg)
	assert.Equal(t, uint64(50), taker.events[0].size)

	bid, err := b.BidPrice()
	require.NoError(t, err)
	assert.True(t, dec("100.00").Equal(bid))
	assert.Equal(t, uint64(30), b.BidSize())
}

func TestInsertLimit_SweepsMultipleLevels(t *testing.T) {
	b := newTestBook(t)

	_, err := b.InsertLimit(book.Sell, dec("100.00"), 10, nil)
	require.NoError(t, err)
	_, err = b.InsertLimit(book.Sell, dec("101.00"), 10, nil)
	require.NoError(t, err)
	_, err = b.InsertLimit(book.Sell, dec("102.00"), 10, nil)
	require.NoError(t, err)

	taker := &recorder{}
	_, err = b.InsertLimit(book.Buy, dec("101.50"), 25, taker.cb())
	require.NoError(t, err)

	// 102.00 is above the taker's limit, so only the 100.00 and 101.00
	// levels cross; the remaining 5 rests at 101.50.
	require.Len(t, taker.events, 2)
	assert.Equal(t, uint64(10), taker.events[0].size)
	assert.Equal(t, uint64(10), taker.events[1].size)

	ask, err := b.AskPrice()
	require.NoError(t, err)
	assert.True(t, dec("102.00").Equal(ask))
	assert.Equal(t, uint64(10), b.AskSize())

	bid, err := b.BidPrice()
	require.NoError(t, err)
	assert.True(t, dec("101.50").Equal(bid))
	assert.Equal(t, uint64(5), b.BidSize())
}

func TestInsertMarket_ConsumesResidualAsCancel(t *testing.T) {
	b := newTestBook(t)

	_, err := b.InsertLimit(book.Sell, dec("100.00"), 10, nil)
	require.NoError(t, err)

	taker := &recorder{}
	_, err = b.InsertMarket(book.Buy, 30, taker.cb())
	require.NoError(t, err)

	require.Len(t, taker.events, 2)
	assert.Equal(t, book.MsgFill, taker.events[0].msg)
	assert.Equal(t, uint64(10), taker.events[0].size)
	assert.Equal(t, book.MsgCancel, taker.events[1].msg)
	assert.Equal(t, uint64(20), taker.events[1].size)
}

func TestInsertStop_TriggersOnCrossingTrade(t *testing.T) {
	b := newTestBook(t)

	_, err := b.InsertLimit(book.Sell, dec("100.00"), 100, nil)
	require.NoError(t, err)

	stopHolder := &recorder{}
	_, err = b.InsertStop(book.Buy, dec("100.00"), 20, stopHolder.cb())
	require.NoError(t, err)

	// Trading through 100.00 should trigger the buy stop, promoting it to a
	// MARKET order that consumes remaining resting liquidity.
	_, err = b.InsertLimit(book.Buy, dec("100.00"), 10, nil)
	require.NoError(t, err)

	require.NotEmpty(t, stopHolder.events)
	assert.Equal(t, book.MsgFill, stopHolder.events[0].msg)
}

func TestInsertStopLimit_EmitsStopToLimitThenMatches(t *testing.T) {
	b := newTestBook(t)

	_, err := b.InsertLimit(book.Sell, dec("100.00"), 100, nil)
	require.NoError(t, err)

	holder := &recorder{}
	_, err = b.InsertStopLimit(book.Buy, dec("100.00"), dec("100.50"), 20, holder.cb())
	require.NoError(t, err)

	_, err = b.InsertLimit(book.Buy, dec("100.00"), 10, nil)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(holder.events), 2)
	assert.Equal(t, book.MsgStopToLimit, holder.events[0].msg)
	assert.Equal(t, book.MsgFill, holder.events[1].msg)
}

func TestPullOrder_RemovesRestingOrderAndNotifiesCancel(t *testing.T) {
	b := newTestBook(t)
	r := &recorder{}

	id, err := b.InsertLimit(book.Buy, dec("99.00"), 40, r.cb())
	require.NoError(t, err)

	require.NoError(t, b.PullOrder(id))
	require.Len(t, r.events, 1)
	assert.Equal(t, book.MsgCancel, r.events[0].msg)
	assert.Equal(t, uint64(40), r.events[0].size)

	_, err = b.BidPrice()
	assert.Error(t, err)
}

func TestPullOrder_UnknownIDErrors(t *testing.T) {
	b := newTestBook(t)
	err := b.PullOrder(9999)
	assert.Error(t, err)
}

func TestTimeAndSales_RecordsTrades(t *testing.T) {
	b := newTestBook(t)

	_, err := b.InsertLimit(book.Sell, dec("100.00"), 10, nil)
	require.NoError(t, err)
	_, err = b.InsertLimit(book.Buy, dec("100.00"), 10, nil)
	require.NoError(t, err)

	fills := b.TimeAndSales(0)
	require.Len(t, fills, 1)
	assert.Equal(t, uint64(10), fills[0].Size)
	assert.True(t, dec("100.00").Equal(fills[0].Price))
}

func TestDepth_AggregatesBySide(t *testing.T) {
	b := newTestBook(t)

	_, err := b.InsertLimit(book.Buy, dec("99.00"), 10, nil)
	require.NoError(t, err)
	_, err = b.InsertLimit(book.Buy, dec("98.00"), 20, nil)
	require.NoError(t, err)
	_, err = b.InsertLimit(book.Sell, dec("101.00"), 15, nil)
	require.NoError(t, err)

	bids := b.BidDepth(0)
	require.Len(t, bids, 2)
	assert.True(t, dec("99.00").Equal(bids[0].Price))
	assert.True(t, dec("98.00").Equal(bids[1].Price))

	asks := b.AskDepth(0)
	require.Len(t, asks, 1)
	assert.Equal(t, uint64(15), asks[0].Size)
}

func TestGrowBelow_ShiftsRestingOrdersAndInsidePointers(t *testing.T) {
	b, err := book.New(tick.Hundredth, dec("5.00"), dec("1000.00"))
	require.NoError(t, err)

	r := &recorder{}
	id, err := b.InsertLimit(book.Buy, dec("5.00"), 10, r.cb())
	require.NoError(t, err)

	require.NoError(t, b.GrowBelow(dec("1.00")))

	bid, err := b.BidPrice()
	require.NoError(t, err)
	assert.True(t, dec("5.00").Equal(bid))

	require.NoError(t, b.PullOrder(id))
	require.Len(t, r.events, 1)
	assert.Equal(t, uint64(10), r.events[0].size)
}

func TestInsertLimit_CallbackMayReenterTheSameBook(t *testing.T) {
	b := newTestBook(t)

	restingID, err := b.InsertLimit(book.Buy, dec("98.00"), 10, nil)
	require.NoError(t, err)

	reentered := false
	cb := func(msg book.MessageKind, id uint64, price decimal.Decimal, size uint64) {
		if msg == book.MsgFill && !reentered {
			reentered = true
			// A fill callback pulling an unrelated resting order must not
			// deadlock against the Book's own mutex.
			require.NoError(t, b.PullOrder(restingID))
		}
	}

	_, err = b.InsertLimit(book.Sell, dec("100.00"), 10, nil)
	require.NoError(t, err)
	_, err = b.InsertLimit(book.Buy, dec("100.00"), 10, cb)
	require.NoError(t, err)

	assert.True(t, reentered)
	_, err = b.BidPrice()
	assert.Error(t, err)
}

func TestReplaceWithLimit_CancelsOldAndInsertsNew(t *testing.T) {
	b := newTestBook(t)
	old := &recorder{}
	neu := &recorder{}

	id, err := b.InsertLimit(book.Buy, dec("99.00"), 40, old.cb())
	require.NoError(t, err)

	newID, err := b.ReplaceWithLimit(id, book.Buy, dec("99.50"), 25, neu.cb())
	require.NoError(t, err)
	assert.NotEqual(t, id, newID)

	require.Len(t, old.events, 1)
	assert.Equal(t, book.MsgCancel, old.events[0].msg)
	assert.Equal(t, uint64(40), old.events[0].size)
	assert.Empty(t, neu.events)

	bid, err := b.BidPrice()
	require.NoError(t, err)
	assert.True(t, dec("99.50").Equal(bid))
	assert.Equal(t, uint64(25), b.BidSize())

	assert.Error(t, b.PullOrder(id))
}

func TestReplaceWithMarket_CancelsOldAndMatchesNew(t *testing.T) {
	b := newTestBook(t)
	old := &recorder{}
	neu := &recorder{}

	id, err := b.InsertLimit(book.Buy, dec("99.00"), 40, old.cb())
	require.NoError(t, err)
	_, err = b.InsertLimit(book.Sell, dec("100.00"), 10, nil)
	require.NoError(t, err)

	newID, err := b.ReplaceWithMarket(id, book.Buy, 10, neu.cb())
	require.NoError(t, err)

	require.Len(t, old.events, 1)
	assert.Equal(t, book.MsgCancel, old.events[0].msg)

	require.Len(t, neu.events, 1)
	assert.Equal(t, book.MsgFill, neu.events[0].msg)
	assert.Equal(t, newID, neu.events[0].id)
}

func TestReplaceWithStop_CancelsOldAndRestsNewStop(t *testing.T) {
	b := newTestBook(t)
	old := &recorder{}
	neu := &recorder{}

	id, err := b.InsertLimit(book.Buy, dec("99.00"), 15, old.cb())
	require.NoError(t, err)

	_, err = b.ReplaceWithStop(id, book.Buy, dec("101.00"), 15, neu.cb())
	require.NoError(t, err)

	require.Len(t, old.events, 1)
	assert.Equal(t, book.MsgCancel, old.events[0].msg)

	_, err = b.InsertLimit(book.Sell, dec("101.00"), 100, nil)
	require.NoError(t, err)
	_, err = b.InsertLimit(book.Buy, dec("101.00"), 5, nil)
	require.NoError(t, err)

	require.NotEmpty(t, neu.events)
	assert.Equal(t, book.MsgFill, neu.events[0].msg)
}

func TestGrowAbove_ExtendsRangeWithoutDisturbingExisting(t *testing.T) {
	b := newTestBook(t)

	_, err := b.InsertLimit(book.Sell, dec("999.00"), 10, nil)
	require.NoError(t, err)

	require.NoError(t, b.GrowAbove(dec("2000.00")))

	ask, err := b.AskPrice()
	require.NoError(t, err)
	assert.True(t, dec("999.00").Equal(ask))
	assert.True(t, dec("2000.00").Equal(b.MaxPrice()))
}
