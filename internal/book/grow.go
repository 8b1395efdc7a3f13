package book

import (
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"
)

// GrowAbove extends the book's range upward to newMax without disturbing
// any existing tick index: new empty levels are appended past the current
// highest tick.
func (b *Book) GrowAbove(newMax decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	na, _, err := b.arith.GrowAbove(newMax)
	if err != nil {
		return err
	}

	grown := make([]level, na.N())
	copy(grown, b.levels)
	b.levels = grown

	grownSide := make([]Side, na.N())
	copy(grownSide, b.limitSide)
	b.limitSide = grownSide

	b.arith = na
	return nil
}

// GrowBelow extends the book's range downward to newMin. Every existing
// tick index — the dense level vector, both inside pointers, all four
// occupied-level indices, and every live order's tick/limitTick — shifts
// up by the number of newly prepended ticks.
func (b *Book) GrowBelow(newMin decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	na, shift, err := b.arith.GrowBelow(newMin)
	if err != nil {
		return err
	}

	grown := make([]level, na.N())
	copy(grown[shift:], b.levels)
	b.levels = grown

	grownSide := make([]Side, na.N())
	copy(grownSide[shift:], b.limitSide)
	b.limitSide = grownSide

	for i := range b.levels {
		shiftChain(&b.levels[i].limit, shift)
		shiftChain(&b.levels[i].stop, shift)
	}

	b.occupiedLimitBuy = shiftSet(b.occupiedLimitBuy, shift)
	b.occupiedLimitSell = shiftSet(b.occupiedLimitSell, shift)
	b.occupiedStopBuy = shiftSet(b.occupiedStopBuy, shift)
	b.occupiedStopSell = shiftSet(b.occupiedStopSell, shift)

	if b.insideBid != noTick {
		b.insideBid += shift
	}
	if b.insideAsk != noTick {
		b.insideAsk += shift
	}

	b.arith = na
	return nil
}

// shiftChain adds shift to the tick and limitTick of every node in the
// chain. The chain's own head/tail/prev/next structure is untouched — only
// the tick bookkeeping each node carries moves.
func shiftChain(c *chain, shift int) {
	for n := c.head; n != nil; n = n.next {
		n.tick += shift
		if n.hasLimit {
			n.limitTick += shift
		}
	}
}

// shiftSet rebuilds an occupied-tick index with every member shifted up by
// shift, since tidwall/btree has no bulk key-translation operation.
func shiftSet(set *btree.BTreeG[int], shift int) *btree.BTreeG[int] {
	shifted := btree.NewBTreeG(lessInt)
	set.Scan(func(t int) bool {
		shifted.Set(t + shift)
		return true
	})
	return shifted
}
