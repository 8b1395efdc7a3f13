package book

// matchCtx threads the per-operation notification queue and the stop-sweep
// high-water marks through one top-level call and every promoted order it
// transitively matches, so a promoted stop's own fills keep triggering
// further stops inside the same operation without re-scanning ground
// already covered earlier in the same call.
type matchCtx struct {
	q *queue

	// buyHW is the highest fill tick already swept for BUY stops this
	// operation; sellHW is the lowest fill tick already swept for SELL
	// stops. Stops only ever leave the book during a sweep (promotion
	// never creates new ones), so these bounds are safe to advance
	// monotonically regardless of which direction later fills move in.
	buyHW  int
	sellHW int
}

func newMatchCtx() *matchCtx {
	return &matchCtx{q: &queue{}, buyHW: -1, sellHW: -1}
}

// bestOpposingTick returns the tick the side currently needs to cross
// against: insideAsk for an incoming BUY, insideBid for an incoming SELL.
func (b *Book) bestOpposingTick(side Side) (int, bool) {
	if side == Buy {
		return b.insideAsk, b.insideAsk != noTick
	}
	return b.insideBid, b.insideBid != noTick
}

// crosses reports whether an incoming order of kind/side/limitTick is
// marketable against a resting opposite-side level at oppTick.
func crosses(kind Kind, side Side, limitTick int, oppTick int) bool {
	if kind == Market {
		return true
	}
	if side == Buy {
		return limitTick >= oppTick
	}
	return limitTick <= oppTick
}

// matchIncoming runs the core matching loop for an incoming order against
// the resting book, returning the size still unfilled when the loop exits
// (either the opposite side is exhausted, or the order is no longer
// marketable at the inside). Every fill enqueues notifications for both
// sides into ctx.q and runs the stop-trigger sweep before continuing.
func (b *Book) matchIncoming(id uint64, kind Kind, side Side, limitTick int, size uint64, cb Callback, ctx *matchCtx) uint64 {
	incoming := &orderNode{id: id, kind: kind, side: side, size: size, cb: cb}

	for incoming.size > 0 {
		oppTick, ok := b.bestOpposingTick(side)
		if !ok || !crosses(kind, side, limitTick, oppTick) {
			break
		}

		oppSide := side.opposite()
		lvl := b.levelAt(oppTick)
		h := lvl.limit.head
		if h == nil {
			// Invariant violation: an occupied tick with no head. The
			// inside pointer and the occupied index have drifted apart.
			break
		}

		fillSize := min(incoming.size, h.size)
		incoming.size -= fillSize
		lvl.limit.reduceSize(h, fillSize)

		ctx.q.fill(incoming, oppTick, fillSize)
		ctx.q.fill(h, oppTick, fillSize)

		b.recordTrade(oppTick, fillSize)

		if h.size == 0 {
			lvl.limit.remove(h)
			b.reg.forget(h.id)
			if lvl.limit.empty() {
				b.markVacated(oppTick, oppSide, false)
				b.advanceInside(oppSide, oppTick)
			}
		}

		b.sweepStops(oppTick, ctx)
	}

	return incoming.size
}

// advanceInside moves the cached inside pointer for side away from the
// just-emptied tick, toward the book's interior, stopping at the next
// occupied level or the sentinel if none remains.
func (b *Book) advanceInside(side Side, emptiedTick int) {
	set := b.occupiedSet(side, false)
	if side == Buy {
		if t, ok := nextBelow(set, emptiedTick); ok {
			b.insideBid = t
		} else {
			b.insideBid = noTick
		}
		return
	}
	if t, ok := nextAbove(set, emptiedTick); ok {
		b.insideAsk = t
	} else {
		b.insideAsk = noTick
	}
}

func nextAbove(set interface {
	Ascend(pivot int, iter func(item int) bool)
}, t int) (int, bool) {
	found, ok := 0, false
	set.Ascend(t, func(item int) bool {
		found, ok = item, true
		return false
	})
	return found, ok
}

func nextBelow(set interface {
	Descend(pivot int, iter func(item int) bool)
}, t int) (int, bool) {
	found, ok := 0, false
	set.Descend(t, func(item int) bool {
		found, ok = item, true
		return false
	})
	return found, ok
}

// recordTrade updates last price/size, cumulative volume, and appends to
// the time-and-sales journal. It does not enqueue any notification.
func (b *Book) recordTrade(t int, size uint64) {
	price := b.arith.TickToPrice(t)
	b.lastPrice = price
	b.lastSize = size
	b.volume += size
	b.j.append(Fill{Timestamp: nowMillis(), Price: price, Size: size})
}

// restLimit inserts a residual LIMIT order at tick t on side, updating the
// inside pointer if it improves it.
func (b *Book) restLimit(id uint64, side Side, t int, size uint64, cb Callback) {
	n := &orderNode{id: id, kind: Limit, side: side, size: size, tick: t, cb: cb}
	lvl := b.levelAt(t)
	wasEmpty := lvl.limit.empty()
	lvl.limit.pushBack(n)
	b.reg.register(n)
	if wasEmpty {
		b.markOccupied(t, side, false)
	}
	if side == Buy {
		if b.insideBid == noTick || t > b.insideBid {
			b.insideBid = t
		}
	} else {
		if b.insideAsk == noTick || t < b.insideAsk {
			b.insideAsk = t
		}
	}
}

// restStop inserts a resting STOP or STOP_LIMIT at its trigger tick.
func (b *Book) restStop(id uint64, side Side, triggerTick int, size uint64, cb Callback, kind Kind, limitTick int, hasLimit bool) {
	n := &orderNode{
		id: id, kind: kind, side: side, size: size, tick: triggerTick,
		limitTick: limitTick, hasLimit: hasLimit, cb: cb, isStop: true,
	}
	lvl := b.levelAt(triggerTick)
	wasEmpty := lvl.stop.empty()
	lvl.stop.pushBack(n)
	b.reg.register(n)
	if wasEmpty {
		b.markOccupied(triggerTick, side, true)
	}
}

// sweepStops triggers every BUY stop chain at or below price tick P not yet
// covered by ctx.buyHW, and every SELL stop chain at or above P not yet
// covered by ctx.sellHW, promoting each to a MARKET or LIMIT reinsertion in
// stop-chain FIFO order, BUY side before SELL side, ascending tick within a
// side.
func (b *Book) sweepStops(p int, ctx *matchCtx) {
	triggered := 0
	if p > ctx.buyHW {
		triggered += b.sweepSide(Buy, ctx.buyHW+1, p, ctx)
		ctx.buyHW = p
	}
	if ctx.sellHW == -1 || p < ctx.sellHW {
		lo := p
		hi := ctx.sellHW - 1
		if ctx.sellHW == -1 {
			hi = len(b.levels) - 1
		}
		triggered += b.sweepSideDesc(Sell, lo, hi, ctx)
		ctx.sellHW = p
	}
	b.metrics.ObserveStopTriggers(triggered)
}

// sweepSide triggers the stop chains of side with trigger tick in
// [lo, hi], ascending.
func (b *Book) sweepSide(side Side, lo, hi int, ctx *matchCtx) int {
	if lo > hi || lo < 0 {
		return 0
	}
	set := b.occupiedSet(side, true)
	count := 0
	for {
		t, ok := nextAboveInclusive(set, lo)
		if !ok || t > hi {
			break
		}
		count += b.triggerChainAt(side, t, ctx)
		lo = t + 1
	}
	return count
}

// sweepSideDesc triggers SELL stop chains with trigger tick in [lo, hi],
// scanned ascending (the triggered SELL chains are those at or above the
// fill tick; the range itself is always walked ascending regardless of
// which side, since the occupied set is ordered ascending).
func (b *Book) sweepSideDesc(side Side, lo, hi int, ctx *matchCtx) int {
	return b.sweepSide(side, lo, hi, ctx)
}

func nextAboveInclusive(set btreeIntSet, from int) (int, bool) {
	found, ok := 0, false
	set.Ascend(from, func(item int) bool {
		found, ok = item, true
		return false
	})
	return found, ok
}

// triggerChainAt promotes every stop currently resting at tick t on side,
// in FIFO order, re-fetching the chain head each time since promotion can
// recursively trigger further removals at this same tick.
func (b *Book) triggerChainAt(side Side, t int, ctx *matchCtx) int {
	lvl := b.levelAt(t)
	count := 0
	for {
		h := lvl.stop.head
		if h == nil {
			break
		}
		lvl.stop.remove(h)
		b.reg.forget(h.id)
		if lvl.stop.empty() {
			b.markVacated(t, side, true)
		}
		count++
		b.promote(h, ctx)
	}
	return count
}

// promote reinserts a triggered stop as a MARKET (plain STOP) or LIMIT
// (STOP_LIMIT), matching it inside the same top-level operation.
func (b *Book) promote(h *orderNode, ctx *matchCtx) {
	if h.kind == StopLimit {
		ctx.q.stopToLimit(h, h.limitTick, h.size)
		residual := b.matchIncoming(h.id, Limit, h.side, h.limitTick, h.size, h.cb, ctx)
		if residual > 0 {
			b.restLimit(h.id, h.side, h.limitTick, residual, h.cb)
		}
		return
	}
	residual := b.matchIncoming(h.id, Market, h.side, 0, h.size, h.cb, ctx)
	if residual > 0 {
		ctx.q.cancel(&orderNode{id: h.id, side: h.side, cb: h.cb}, residual)
	}
}

type btreeIntSet = interface {
	Ascend(pivot int, iter func(item int) bool)
}

func min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
