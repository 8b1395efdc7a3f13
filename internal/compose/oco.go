// Package compose builds multi-order strategies — one-cancels-other pairs
// and trailing stops — entirely on top of internal/book's public surface.
// Nothing here touches a Book's internals; a composed order is just two or
// more plain orders whose callbacks know about each other.
package compose

import (
	"sync"

	"github.com/shopspring/decimal"

	"fenrir/internal/book"
	"fenrir/internal/bookerr"
)

// OCOHandle is the caller's reference to one resting one-cancels-other
// pair: two orders where a fill that exhausts either, or a cancel of
// either, pulls the other.
type OCOHandle struct {
	b *book.Book

	mu       sync.Mutex
	idA, idB uint64
	remA     uint64 // size still unfilled on leg A
	remB     uint64 // size still unfilled on leg B
	done     bool

	onEvent book.Callback
}

// InsertOCO places two orders (typically a take-profit LIMIT and a
// stop-loss STOP/STOP_LIMIT on the same side and size) such that any
// terminal event on one — a fill that exhausts it, or an explicit pull —
// cancels whatever remains of the other. sizeA and sizeB are each leg's
// submitted size, used to tell a partial fill from an exhausting one.
// Partial fills on either leg are forwarded to onEvent without touching
// the sibling.
func InsertOCO(b *book.Book, sizeA, sizeB uint64, legA, legB func(cb book.Callback) (uint64, error), onEvent book.Callback) (*OCOHandle, error) {
	h := &OCOHandle{b: b, onEvent: onEvent, remA: sizeA, remB: sizeB}

	idA, err := legA(h.callbackFor(&h.idA, &h.idB, &h.remA))
	if err != nil {
		return nil, err
	}
	h.idA = idA

	idB, err := legB(h.callbackFor(&h.idB, &h.idA, &h.remB))
	if err != nil {
		// Best effort: unwind the leg we already placed.
		_ = b.PullOrder(idA)
		return nil, err
	}
	h.idB = idB

	return h, nil
}

// callbackFor returns a Callback for one leg that pulls the sibling leg
// (identified by *other) once this leg is exhausted: a MsgCancel is
// unconditionally terminal (the leg is gone, whatever its remaining size
// was), while a MsgFill only triggers the sibling once it has driven
// *remaining to zero, so a partial fill is forwarded to onEvent without
// touching the sibling.
func (h *OCOHandle) callbackFor(self, other, remaining *uint64) book.Callback {
	return func(msg book.MessageKind, id uint64, price decimal.Decimal, size uint64) {
		if h.onEvent != nil {
			h.onEvent(msg, id, price, size)
		}

		if msg == book.MsgStopToLimit {
			return
		}

		h.mu.Lock()
		if h.done {
			h.mu.Unlock()
			return
		}

		exhausted := msg == book.MsgCancel
		if msg == book.MsgFill {
			if size >= *remaining {
				*remaining = 0
			} else {
				*remaining -= size
			}
			exhausted = *remaining == 0
		}
		if !exhausted {
			h.mu.Unlock()
			return
		}

		h.done = true
		sibling := *other
		h.mu.Unlock()
		// PullOrder drains synchronously into the sibling's callback, which
		// takes h.mu, so the lock must already be released here.
		_ = h.b.PullOrder(sibling)
	}
}

// Cancel pulls both legs of a still-live OCO pair.
func (h *OCOHandle) Cancel() error {
	h.mu.Lock()
	if h.done {
		h.mu.Unlock()
		return bookerr.New(bookerr.InvalidState, "oco pair already resolved")
	}
	h.done = true
	idA, idB := h.idA, h.idB
	h.mu.Unlock()

	errA := h.b.PullOrder(idA)
	errB := h.b.PullOrder(idB)
	if errA != nil {
		return errA
	}
	return errB
}
