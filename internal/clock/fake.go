package clock

// Fake is a counter whose value is set by the test.
type Fake[T Ticks] struct {
	now   T
	Reads int
}

// NewFake creates a Fake reading start.
func NewFake[T Ticks](start T) *Fake[T] {
	return &Fake[T]{now: start}
}

// Millis returns the current value and counts the read.
func (f *Fake[T]) Millis() T {
	f.Reads++
	return f.now
}

// Set moves the counter to v.
func (f *Fake[T]) Set(v T) {
	f.now = v
}

// Advance moves the counter forward by d, wrapping at the width of T.
func (f *Fake[T]) Advance(d T) {
	f.now += d
}
