package book

import (
	"github.com/shopspring/decimal"
)

// InsertLimit submits a new LIMIT order and returns its id. Every fill it
// produces is reported through cb before InsertLimit returns. Size
// remaining after matching rests at price.
func (b *Book) InsertLimit(side Side, price decimal.Decimal, size uint64, cb Callback) (uint64, error) {
	if err := b.validateSize(size); err != nil {
		return 0, err
	}
	if err := b.validateCallback(cb); err != nil {
		return 0, err
	}
	t, err := b.priceToTick(price)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()

	id := b.reg.allocateID()
	ctx := newMatchCtx()
	residual := b.matchIncoming(id, Limit, side, t, size, cb, ctx)
	if residual > 0 {
		b.restLimit(id, side, t, residual, cb)
	}

	b.mu.Unlock()
	ctx.q.drain(b)
	return id, nil
}

// InsertMarket submits a new MARKET order: it matches immediately against
// whatever liquidity is available and any unfilled residual is reported as
// a cancel rather than rested, since MARKET orders never occupy a chain.
func (b *Book) InsertMarket(side Side, size uint64, cb Callback) (uint64, error) {
	if err := b.validateSize(size); err != nil {
		return 0, err
	}
	if err := b.validateCallback(cb); err != nil {
		return 0, err
	}

	b.mu.Lock()

	id := b.reg.allocateID()
	ctx := newMatchCtx()
	residual := b.matchIncoming(id, Market, side, 0, size, cb, ctx)
	if residual > 0 {
		ctx.q.cancel(&orderNode{id: id, side: side, cb: cb}, residual)
	}

	b.mu.Unlock()
	ctx.q.drain(b)
	return id, nil
}

// InsertStop submits a resting STOP: it rests untouched at its trigger tick
// until a trade at or through that tick promotes it to a MARKET order.
func (b *Book) InsertStop(side Side, triggerPrice decimal.Decimal, size uint64, cb Callback) (uint64, error) {
	if err := b.validateSize(size); err != nil {
		return 0, err
	}
	if err := b.validateCallback(cb); err != nil {
		return 0, err
	}
	t, err := b.priceToTick(triggerPrice)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.reg.allocateID()
	b.restStop(id, side, t, size, cb, Stop, 0, false)
	return id, nil
}

// InsertStopLimit submits a resting STOP_LIMIT: once a trade at or through
// triggerPrice occurs, it promotes to a LIMIT at limitPrice and a
// MsgStopToLimit notification fires before the resulting LIMIT is matched.
func (b *Book) InsertStopLimit(side Side, triggerPrice, limitPrice decimal.Decimal, size uint64, cb Callback) (uint64, error) {
	if err := b.validateSize(size); err != nil {
		return 0, err
	}
	if err := b.validateCallback(cb); err != nil {
		return 0, err
	}
	t, err := b.priceToTick(triggerPrice)
	if err != nil {
		return 0, err
	}
	lt, err := b.priceToTick(limitPrice)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.reg.allocateID()
	b.restStop(id, side, t, size, cb, StopLimit, lt, true)
	return id, nil
}

// PullOrder cancels a resting order by id, reporting its remaining size via
// a MsgCancel notification. It is an error to pull an order that is not
// currently resting (already fully filled, already pulled, or a MARKET
// order that never rested).
func (b *Book) PullOrder(id uint64) error {
	b.mu.Lock()

	n, err := b.reg.lookup(id)
	if err != nil {
		b.mu.Unlock()
		return err
	}

	remaining := n.size
	b.detach(n)

	q := &queue{}
	q.cancel(n, remaining)

	b.mu.Unlock()
	q.drain(b)
	return nil
}

// detach removes a resting order from whichever chain it currently
// occupies, forgets its registry entry, and updates the occupied index if
// that chain just emptied (and the inside pointer if the emptied chain was
// the inside level). It does not enqueue any notification; callers decide
// what, if anything, to report.
func (b *Book) detach(n *orderNode) {
	t := n.tick
	side := n.side
	isStop := n.isStop

	lvl := b.levelAt(t)
	c := &lvl.limit
	if isStop {
		c = &lvl.stop
	}
	c.remove(n)
	b.reg.forget(n.id)
	if c.empty() {
		b.markVacated(t, side, isStop)
		if !isStop && ((side == Buy && t == b.insideBid) || (side == Sell && t == b.insideAsk)) {
			b.advanceInside(side, t)
		}
	}
}

// ReplaceWithLimit atomically pulls an existing resting order and reinserts
// it as a new LIMIT at a possibly different price and size. The pulled
// order's owner receives MsgCancel for its remaining size, and the new
// order is matched and, if not fully filled, rests with fresh queue
// priority at its tick — there is no window where the id is not in the book
// from the caller's perspective.
func (b *Book) ReplaceWithLimit(id uint64, side Side, price decimal.Decimal, size uint64, cb Callback) (uint64, error) {
	if err := b.validateSize(size); err != nil {
		return 0, err
	}
	if err := b.validateCallback(cb); err != nil {
		return 0, err
	}
	t, err := b.priceToTick(price)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()

	old, err := b.pullForReplace(id)
	if err != nil {
		b.mu.Unlock()
		return 0, err
	}

	ctx := newMatchCtx()
	ctx.q.cancel(old, old.size)

	newID := b.reg.allocateID()
	residual := b.matchIncoming(newID, Limit, side, t, size, cb, ctx)
	if residual > 0 {
		b.restLimit(newID, side, t, residual, cb)
	}

	b.mu.Unlock()
	ctx.q.drain(b)
	return newID, nil
}

// ReplaceWithMarket atomically pulls an existing resting order and
// resubmits it as a new MARKET order. The pulled order's owner receives
// MsgCancel for its remaining size; any size the new MARKET order cannot
// immediately fill is itself reported as MsgCancel, since MARKET orders
// never rest.
func (b *Book) ReplaceWithMarket(id uint64, side Side, size uint64, cb Callback) (uint64, error) {
	if err := b.validateSize(size); err != nil {
		return 0, err
	}
	if err := b.validateCallback(cb); err != nil {
		return 0, err
	}

	b.mu.Lock()

	old, err := b.pullForReplace(id)
	if err != nil {
		b.mu.Unlock()
		return 0, err
	}

	ctx := newMatchCtx()
	ctx.q.cancel(old, old.size)

	newID := b.reg.allocateID()
	residual := b.matchIncoming(newID, Market, side, 0, size, cb, ctx)
	if residual > 0 {
		ctx.q.cancel(&orderNode{id: newID, side: side, cb: cb}, residual)
	}

	b.mu.Unlock()
	ctx.q.drain(b)
	return newID, nil
}

// ReplaceWithStop atomically pulls an existing resting order and reinserts
// it as a new resting STOP at triggerPrice. The pulled order's owner
// receives MsgCancel for its remaining size.
func (b *Book) ReplaceWithStop(id uint64, side Side, triggerPrice decimal.Decimal, size uint64, cb Callback) (uint64, error) {
	if err := b.validateSize(size); err != nil {
		return 0, err
	}
	if err := b.validateCallback(cb); err != nil {
		return 0, err
	}
	t, err := b.priceToTick(triggerPrice)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()

	old, err := b.pullForReplace(id)
	if err != nil {
		b.mu.Unlock()
		return 0, err
	}

	q := &queue{}
	q.cancel(old, old.size)

	newID := b.reg.allocateID()
	b.restStop(newID, side, t, size, cb, Stop, 0, false)

	b.mu.Unlock()
	q.drain(b)
	return newID, nil
}

// ReplaceWithStopLimit atomically pulls an existing resting order and
// reinserts it as a new resting STOP_LIMIT at triggerPrice/limitPrice. The
// pulled order's owner receives MsgCancel for its remaining size.
func (b *Book) ReplaceWithStopLimit(id uint64, side Side, triggerPrice, limitPrice decimal.Decimal, size uint64, cb Callback) (uint64, error) {
	if err := b.validateSize(size); err != nil {
		return 0, err
	}
	if err := b.validateCallback(cb); err != nil {
		return 0, err
	}
	t, err := b.priceToTick(triggerPrice)
	if err != nil {
		return 0, err
	}
	lt, err := b.priceToTick(limitPrice)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()

	old, err := b.pullForReplace(id)
	if err != nil {
		b.mu.Unlock()
		return 0, err
	}

	q := &queue{}
	q.cancel(old, old.size)

	newID := b.reg.allocateID()
	b.restStop(newID, side, t, size, cb, StopLimit, lt, true)

	b.mu.Unlock()
	q.drain(b)
	return newID, nil
}

// pullForReplace is detach plus the registry lookup, for the Replace*
// family: it locates id, detaches it from its current chain, and hands
// back the node so the caller can enqueue its cancellation alongside
// inserting the replacement, both under the same lock.
func (b *Book) pullForReplace(id uint64) (*orderNode, error) {
	n, err := b.reg.lookup(id)
	if err != nil {
		return nil, err
	}
	b.detach(n)
	return n, nil
}
