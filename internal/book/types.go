package book

import "github.com/shopspring/decimal"

// Side is which side of the book an order rests on or trades against.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// opposite returns the side an order of s matches against.
func (s Side) opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Kind is one of the four order kinds the core accepts.
type Kind int

const (
	Limit Kind = iota
	Market
	Stop
	StopLimit
)

func (k Kind) String() string {
	switch k {
	case Limit:
		return "LIMIT"
	case Market:
		return "MARKET"
	case Stop:
		return "STOP"
	case StopLimit:
		return "STOP_LIMIT"
	default:
		return "UNKNOWN"
	}
}

// MessageKind names the lifecycle events delivered to an order's callback.
type MessageKind int

const (
	// MsgFill reports a trade; Price and Size are both > 0.
	MsgFill MessageKind = iota
	// MsgCancel reports a removal; Size is the size remaining at cancel,
	// Price may be zero.
	MsgCancel
	// MsgStopToLimit is advisory, fired when a STOP_LIMIT is promoted,
	// before the resulting LIMIT is matched.
	MsgStopToLimit
)

func (m MessageKind) String() string {
	switch m {
	case MsgFill:
		return "FILL"
	case MsgCancel:
		return "CANCEL"
	case MsgStopToLimit:
		return "STOP_TO_LIMIT"
	default:
		return "UNKNOWN"
	}
}

// Callback is the owner notification hook fired for every lifecycle event
// of an order it owns. Callbacks are invoked synchronously, after the
// structural mutation of the top-level operation that produced them has
// fully quiesced, in engine-generation order.
type Callback func(msg MessageKind, id uint64, price decimal.Decimal, size uint64)

// Fill is one trade event recorded in the time-and-sales journal.
type Fill struct {
	Timestamp int64 // unix milliseconds
	Price     decimal.Decimal
	Size      uint64
}

// DepthLevel is one row of an aggregated depth query.
type DepthLevel struct {
	Price decimal.Decimal
	Size  uint64
	Side  Side
}
