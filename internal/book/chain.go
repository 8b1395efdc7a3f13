package book

// chain is a FIFO of orderNodes sharing one price level and one kind (limit
// or stop). It supports O(1) push-back and O(1) removal given the node
// itself, grounded directly on the intrusive doubly-linked PriceLevel shape
// used elsewhere in the corpus (head/tail pointers, prev/next on the node).
type chain struct {
	head, tail *orderNode
	size       uint64 // sum of member order sizes, maintained incrementally
	count      int
}

// pushBack appends o to the tail of the chain and folds its size into the
// aggregate.
func (c *chain) pushBack(o *orderNode) {
	if c.tail != nil {
		c.tail.next = o
		o.prev = c.tail
	} else {
		c.head = o
	}
	o.next = nil
	c.tail = o
	c.size += o.size
	c.count++
}

// remove unlinks o from the chain and subtracts its current size from the
// aggregate. Safe to call whether o's size was already driven to zero by a
// fill or is still the full resting size (a cancellation).
func (c *chain) remove(o *orderNode) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		c.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		c.tail = o.prev
	}
	c.size -= o.size
	c.count--
	o.prev, o.next = nil, nil
}

// reduceSize applies a partial fill of delta to o, keeping the chain's
// aggregate in sync. o is not removed even if its size reaches zero; the
// caller does that via remove once it decides the node is exhausted.
func (c *chain) reduceSize(o *orderNode, delta uint64) {
	o.size -= delta
	c.size -= delta
}

func (c *chain) empty() bool { return c.head == nil }
