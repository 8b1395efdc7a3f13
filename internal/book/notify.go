package book

import "github.com/shopspring/decimal"

// pendingEvent is one queued callback invocation. The callback and id are
// captured at enqueue time rather than looked up later, since a fully
// filled order's node is gone from the registry well before its own FILL
// notification drains.
type pendingEvent struct {
	cb       Callback
	msg      MessageKind
	id       uint64
	tick     int
	hasPrice bool
	size     uint64
	side     Side
}

// queue is the per-operation FIFO of pending callback invocations the spec
// requires: local to one top-level call, so a callback-originated insert
// naturally gets its own fresh queue and drains it to completion (depth
// first) before the outer drain resumes with its own remaining entries.
type queue struct {
	events []pendingEvent
}

func (q *queue) fill(o *orderNode, tick int, size uint64) {
	q.events = append(q.events, pendingEvent{cb: o.cb, msg: MsgFill, id: o.id, tick: tick, hasPrice: true, size: size, side: o.side})
}

func (q *queue) cancel(o *orderNode, remaining uint64) {
	q.events = append(q.events, pendingEvent{cb: o.cb, msg: MsgCancel, id: o.id, size: remaining, side: o.side})
}

func (q *queue) stopToLimit(o *orderNode, limitTick int, size uint64) {
	q.events = append(q.events, pendingEvent{cb: o.cb, msg: MsgStopToLimit, id: o.id, tick: limitTick, hasPrice: true, size: size, side: o.side})
}

// drain fires every queued event in order, recovering and logging a panic
// from any individual callback so it can never fail the operation or stop
// later events in the same queue from being delivered.
func (q *queue) drain(b *Book) {
	for _, ev := range q.events {
		price := decimal.Zero
		if ev.hasPrice {
			price = b.arith.TickToPrice(ev.tick)
		}
		dispatch(b, ev, price)
	}
	q.events = nil
}

func dispatch(b *Book, ev pendingEvent, price decimal.Decimal) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Interface("panic", r).
				Uint64("order_id", ev.id).
				Str("message", ev.msg.String()).
				Msg("recovered panic in order callback")
		}
	}()

	switch ev.msg {
	case MsgFill:
		b.metrics.ObserveFill(ev.side.String())
	case MsgCancel:
		b.metrics.ObserveCancel(ev.side.String())
	}

	if ev.cb != nil {
		ev.cb(ev.msg, ev.id, price, ev.size)
	}
}
