// Package policy describes when a timed write run forces its
// data to durable storage. A policy is one of never, once on
// close, or every N bytes written.
package policy

import (
	"errors"
	"fmt"
)

// Kind identifies the flush policy variant
type Kind int

const (
	// Never issues no flush at all during a run
	Never Kind = iota

	// OnClose issues exactly one flush after the last write
	OnClose

	// Interval issues a flush each time the written byte count
	// passes the next multiple of the interval
	Interval
)

// the integer values the cli and reports use for the non interval variants
const (
	NeverValue   int64 = 0
	OnCloseValue int64 = -1
)

// ErrInvalidPolicy is returned when a flush value can not be mapped to a policy
var ErrInvalidPolicy = errors.New("invalid flush policy")

// FlushPolicy is a tagged flush rule. the zero value is Never.
type FlushPolicy struct {
	kind  Kind
	bytes int64
}

// NewNever returns the policy that never flushes
func NewNever() FlushPolicy {
	return FlushPolicy{kind: Never}
}

// NewOnClose returns the policy that flushes once, before close
func NewOnClose() FlushPolicy {
	return FlushPolicy{kind: OnClose}
}

// NewInterval returns a policy flushing every n bytes. n must be positive.
func NewInterval(n int64) (FlushPolicy, error) {
	if n <= 0 {
		return FlushPolicy{}, fmt.Errorf("%w: interval must be positive, got %d", ErrInvalidPolicy, n)
	}
	return FlushPolicy{kind: Interval, bytes: n}, nil
}

// Parse maps the integer form used on the command line and in
// reports back to a policy: 0 is never, -1 is on close and any
// positive value is an interval in bytes
func Parse(v int64) (FlushPolicy, error) {
	switch {
	case v == NeverValue:
		return NewNever(), nil
	case v == OnCloseValue:
		return NewOnClose(), nil
	case v > 0:
		return NewInterval(v)
	default:
		return FlushPolicy{}, fmt.Errorf("%w: %d (use 0 for never, -1 for on close, or a positive byte interval)", ErrInvalidPolicy, v)
	}
}

// Kind returns the variant of the policy
func (p FlushPolicy) Kind() Kind {
	return p.kind
}

// Bytes returns the flush interval, or 0 for the non interval variants
func (p FlushPolicy) Bytes() int64 {
	if p.kind != Interval {
		return 0
	}
	return p.bytes
}

// Value renders the policy as its integer form (never = 0, on close = -1)
func (p FlushPolicy) Value() int64 {
	switch p.kind {
	case OnClose:
		return OnCloseValue
	case Interval:
		return p.bytes
	default:
		return NeverValue
	}
}

// Label is a short human readable name used by tables and plots
func (p FlushPolicy) Label() string {
	switch p.kind {
	case OnClose:
		return "close"
	case Interval:
		return humanBytes(p.bytes)
	default:
		return "never"
	}
}

// String implements fmt.Stringer with the integer form
func (p FlushPolicy) String() string {
	return fmt.Sprintf("%d", p.Value())
}

// humanBytes renders a byte count using the largest binary unit
// that divides it exactly
func humanBytes(n int64) string {
	units := []struct {
		suffix string
		size   int64
	}{
		{"GiB", 1 << 30},
		{"MiB", 1 << 20},
		{"KiB", 1 << 10},
	}
	for _, u := range units {
		if n >= u.size && n%u.size == 0 {
			return fmt.Sprintf("%d%s", n/u.size, u.suffix)
		}
	}
	return fmt.Sprintf("%dB", n)
}
