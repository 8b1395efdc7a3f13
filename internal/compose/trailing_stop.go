package compose

import (
	"sync"

	"github.com/shopspring/decimal"

	"fenrir/internal/book"
)

// TrailingStop maintains a resting STOP order whose trigger price follows
// the book's last trade price by a fixed offset, moving only in the
// direction that tightens the stop: up behind the market for a SELL
// trailing stop protecting a long, down behind the market for a BUY
// trailing stop covering a short. It has no hook into the book's matching
// loop; it is driven purely by re-observing LastPrice and atomically
// replacing the resting stop (via Book.ReplaceWithStop) when the trail
// should advance.
type TrailingStop struct {
	b      *book.Book
	side   book.Side
	offset decimal.Decimal
	size   uint64
	cb     book.Callback

	mu          sync.Mutex
	orderID     uint64
	replacingID uint64 // id of the leg currently being superseded by ReplaceWithStop, or 0
	triggerAt   decimal.Decimal
	live        bool
}

// NewTrailingStop places the initial STOP at the given offset from the
// book's current last price.
func NewTrailingStop(b *book.Book, side book.Side, offset decimal.Decimal, size uint64, cb book.Callback) (*TrailingStop, error) {
	t := &TrailingStop{b: b, side: side, offset: offset, size: size}
	t.cb = t.wrap(cb)

	trigger := computeTrigger(side, b.LastPrice(), offset)
	id, err := b.InsertStop(side, trigger, size, t.cb)
	if err != nil {
		return nil, err
	}
	t.orderID = id
	t.triggerAt = trigger
	t.live = true
	return t, nil
}

// wrap intercepts terminal events to mark the trail dead once the
// underlying stop has triggered or been cancelled away. A MsgCancel fired
// for the leg currently being superseded by Advance's own ReplaceWithStop
// call is internal bookkeeping noise, not a real terminal event, so it is
// neither forwarded to inner nor allowed to mark the trail dead.
func (t *TrailingStop) wrap(inner book.Callback) book.Callback {
	return func(msg book.MessageKind, id uint64, price decimal.Decimal, size uint64) {
		if msg == book.MsgCancel {
			t.mu.Lock()
			superseded := id == t.replacingID
			t.mu.Unlock()
			if superseded {
				return
			}
		}
		if msg != book.MsgStopToLimit {
			t.mu.Lock()
			t.live = false
			t.mu.Unlock()
		}
		if inner != nil {
			inner(msg, id, price, size)
		}
	}
}

// computeTrigger places the stop offset (a price amount) behind last:
// below it for a SELL (protecting a long), above it for a BUY (covering a
// short).
func computeTrigger(side book.Side, last, offset decimal.Decimal) decimal.Decimal {
	if side == book.Sell {
		return last.Sub(offset)
	}
	return last.Add(offset)
}

// Advance re-evaluates the trail against the book's current last price,
// atomically replacing the resting stop if the new price has moved the
// trigger in the tightening direction. It is a no-op once the stop has
// already triggered or been cancelled.
func (t *TrailingStop) Advance() error {
	t.mu.Lock()
	if !t.live {
		t.mu.Unlock()
		return nil
	}
	side, offset, triggerAt, orderID, size, cb := t.side, t.offset, t.triggerAt, t.orderID, t.size, t.cb
	t.mu.Unlock()

	last := t.b.LastPrice()
	candidate := computeTrigger(side, last, offset)

	improves := false
	if side == book.Sell {
		improves = candidate.GreaterThan(triggerAt)
	} else {
		improves = candidate.LessThan(triggerAt)
	}
	if !improves {
		return nil
	}

	t.mu.Lock()
	if !t.live || t.orderID != orderID {
		t.mu.Unlock()
		return nil
	}
	t.replacingID = orderID
	t.mu.Unlock()

	// ReplaceWithStop drains its notification queue (including the old
	// leg's MsgCancel) before returning, so replacingID must already be
	// set and must not be cleared until afterward.
	id, err := t.b.ReplaceWithStop(orderID, side, candidate, size, cb)

	t.mu.Lock()
	t.replacingID = 0
	if err == nil {
		t.orderID = id
		t.triggerAt = candidate
	}
	t.mu.Unlock()

	return err
}

// Cancel pulls the resting stop if still live.
func (t *TrailingStop) Cancel() error {
	t.mu.Lock()
	if !t.live {
		t.mu.Unlock()
		return nil
	}
	t.live = false
	orderID := t.orderID
	t.mu.Unlock()
	// PullOrder drains the MsgCancel into wrap, which takes t.mu.
	return t.b.PullOrder(orderID)
}
