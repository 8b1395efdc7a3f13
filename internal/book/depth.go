package book

// BidDepth returns up to n aggregated BUY levels, best price first, or
// every BUY level when n is 0.
func (b *Book) BidDepth(n int) []DepthLevel {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]DepthLevel, 0, n)
	b.occupiedLimitBuy.Reverse(func(t int) bool {
		if n > 0 && len(out) >= n {
			return false
		}
		lvl := b.levelAt(t)
		out = append(out, DepthLevel{Price: b.arith.TickToPrice(t), Size: lvl.limit.size, Side: Buy})
		return true
	})
	return out
}

// AskDepth returns up to n aggregated SELL levels, best price first, or
// every SELL level when n is 0.
func (b *Book) AskDepth(n int) []DepthLevel {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]DepthLevel, 0, n)
	b.occupiedLimitSell.Scan(func(t int) bool {
		if n > 0 && len(out) >= n {
			return false
		}
		lvl := b.levelAt(t)
		out = append(out, DepthLevel{Price: b.arith.TickToPrice(t), Size: lvl.limit.size, Side: Sell})
		return true
	})
	return out
}

// MarketDepth returns up to n levels per side, bids best-first followed by
// asks best-first.
func (b *Book) MarketDepth(n int) []DepthLevel {
	bids := b.BidDepth(n)
	asks := b.AskDepth(n)
	out := make([]DepthLevel, 0, len(bids)+len(asks))
	out = append(out, bids...)
	out = append(out, asks...)
	return out
}
