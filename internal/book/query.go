package book

import (
	"github.com/shopspring/decimal"

	"fenrir/internal/bookerr"
)

// BidPrice returns the best resting BUY limit price, or an error if the bid
// side is empty.
func (b *Book) BidPrice() (decimal.Decimal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.insideBid == noTick {
		return decimal.Zero, bookerr.New(bookerr.InvalidState, "no resting bid")
	}
	return b.arith.TickToPrice(b.insideBid), nil
}

// AskPrice returns the best resting SELL limit price, or an error if the
// ask side is empty.
func (b *Book) AskPrice() (decimal.Decimal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.insideAsk == noTick {
		return decimal.Zero, bookerr.New(bookerr.InvalidState, "no resting ask")
	}
	return b.arith.TickToPrice(b.insideAsk), nil
}

// LastPrice returns the price of the most recent trade, or the zero decimal
// if the book has never traded.
func (b *Book) LastPrice() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastPrice
}

// LastSize returns the size of the most recent trade.
func (b *Book) LastSize() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSize
}

// BidSize returns the resting size at the inside bid, or 0 if there is none.
func (b *Book) BidSize() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.insideBid == noTick {
		return 0
	}
	return b.levelAt(b.insideBid).limit.size
}

// AskSize returns the resting size at the inside ask, or 0 if there is none.
func (b *Book) AskSize() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.insideAsk == noTick {
		return 0
	}
	return b.levelAt(b.insideAsk).limit.size
}

// TotalBidSize returns the sum of resting size across every BUY limit tick.
func (b *Book) TotalBidSize() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var total uint64
	b.occupiedLimitBuy.Scan(func(t int) bool {
		total += b.levelAt(t).limit.size
		return true
	})
	return total
}

// TotalAskSize returns the sum of resting size across every SELL limit
// tick.
func (b *Book) TotalAskSize() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var total uint64
	b.occupiedLimitSell.Scan(func(t int) bool {
		total += b.levelAt(t).limit.size
		return true
	})
	return total
}

// TotalSize returns the sum of resting size across both sides of the book.
func (b *Book) TotalSize() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var total uint64
	b.occupiedLimitBuy.Scan(func(t int) bool {
		total += b.levelAt(t).limit.size
		return true
	})
	b.occupiedLimitSell.Scan(func(t int) bool {
		total += b.levelAt(t).limit.size
		return true
	})
	return total
}

// Volume returns the cumulative traded size since the book was constructed.
func (b *Book) Volume() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.volume
}

// TimeAndSales returns the n most recent fills, most recent last, or every
// retained fill if n <= 0.
func (b *Book) TimeAndSales(n int) []Fill {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.j.recent(n)
}
