// Package clock provides fixed-width, wrapping millisecond counters.
// A counter behaves like a microcontroller's millis(): it starts at zero
// and silently wraps to zero after reaching the maximum of its width.
package clock

import "time"

// Ticks is the set of unsigned widths a millisecond counter may have.
// Elapsed time must be computed in the same width as the counter for
// wraparound to stay correct.
type Ticks interface {
	~uint16 | ~uint32 | ~uint64
}

// Max returns the largest value representable in T.
func Max[T Ticks]() T {
	return ^T(0)
}

// Millis is a wrapping millisecond counter backed by a monotonic time source.
type Millis[T Ticks] struct {
	start time.Time
	now   func() time.Time
}

// NewMillis creates a counter that reads zero at the moment of the call.
// now is usually time.Now; its monotonic reading is what gets counted.
func NewMillis[T Ticks](now func() time.Time) *Millis[T] {
	return &Millis[T]{start: now(), now: now}
}

// Millis returns the milliseconds since construction, truncated to T.
func (m *Millis[T]) Millis() T {
	return T(uint64(m.now().Sub(m.start).Milliseconds()))
}
