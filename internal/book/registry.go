package book

import "fenrir/internal/bookerr"

// registry maps order id to the node holding its chain membership, side,
// kind, remaining size, and callback. Identifiers are dense and monotonic
// for the book's lifetime, starting at 1.
type registry struct {
	byID   map[uint64]*orderNode
	nextID uint64
}

func newRegistry() *registry {
	return &registry{
		byID:   make(map[uint64]*orderNode),
		nextID: 1,
	}
}

// allocateID draws the next dense identifier without registering anything.
// MARKET orders never rest, so they get an id for callback correlation but
// never occupy a registry slot.
func (r *registry) allocateID() uint64 {
	id := r.nextID
	r.nextID++
	return id
}

// register adds a resting order's node to the registry under n.id, which
// the caller must already have set via allocateID.
func (r *registry) register(n *orderNode) {
	r.byID[n.id] = n
}

func (r *registry) lookup(id uint64) (*orderNode, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, bookerr.Newf(bookerr.NotFound, "order %d not found", id)
	}
	return n, nil
}

func (r *registry) forget(id uint64) {
	delete(r.byID, id)
}
