// Package bookerr classifies the errors the order book can return into the
// four kinds a caller needs to branch on, following the same sentinel-plus-%w
// pattern the rest of this codebase uses for error values.
package bookerr

import (
	"errors"
	"fmt"
)

// Kind names one of the four error classes the book surfaces to callers.
// It is not an identifier for a specific failure, only the bucket it falls
// into, per the taxonomy the matching engine validates against.
type Kind int

const (
	// InvalidArgument covers bad caller input: size <= 0, a tick or price
	// out of range, low > high, an unknown tick kind.
	InvalidArgument Kind = iota
	// InvalidState covers requests that are well-formed but cannot be
	// honored given the book's current configuration, e.g. a depth query
	// asking for more levels than the book holds, or a grow operation
	// that would violate tick ordering.
	InvalidState
	// NotFound covers pull/replace against an unknown order id.
	NotFound
	// Internal covers violated invariants. Seeing one means there is a
	// bug in the matching engine, not in the caller.
	Internal
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case InvalidState:
		return "invalid_state"
	case NotFound:
		return "not_found"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
	ErrNotFound        = errors.New("not found")
	ErrInternal        = errors.New("internal invariant violated")
)

func sentinelFor(k Kind) error {
	switch k {
	case InvalidArgument:
		return ErrInvalidArgument
	case InvalidState:
		return ErrInvalidState
	case NotFound:
		return ErrNotFound
	default:
		return ErrInternal
	}
}

// New wraps msg with the sentinel for k so callers can classify it with
// errors.Is(err, bookerr.ErrInvalidArgument) etc.
func New(k Kind, msg string) error {
	return fmt.Errorf("%w: %s", sentinelFor(k), msg)
}

// Newf is New with Printf-style formatting for the message.
func Newf(k Kind, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinelFor(k), fmt.Sprintf(format, args...))
}

// Is reports whether err was produced with kind k.
func Is(err error, k Kind) bool {
	return errors.Is(err, sentinelFor(k))
}
