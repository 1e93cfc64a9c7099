package blink

import "github.com/sweeney/blinkchain/internal/clock"

// Controller decides, on every poll, whether its output should be active.
// It is not safe for concurrent use; the owner polls it from one goroutine.
type Controller[T clock.Ticks] struct {
	sink     Sink
	clock    Clock[T]
	interval Interval[T]
	level    bool
	last     T
	toggles  uint64
}

// New creates a controller for sink. No I/O is performed until Init.
func New[T clock.Ticks](sink Sink, clk Clock[T], interval Interval[T]) *Controller[T] {
	return &Controller[T]{
		sink:     sink,
		clock:    clk,
		interval: interval,
		level:    true,
	}
}

// Init drives the output to its starting level and takes the current
// counter reading as the timing baseline. Every interval except AlwaysOff
// starts active. The stored level is left alone: the first Update writes
// whatever level the controller held before Init. Init must be called
// before the first Update; calling it again re-baselines.
func (c *Controller[T]) Init() {
	c.sink.Set(c.interval.kind != KindAlwaysOff)
	c.last = c.clock.Millis()
}

// Update re-evaluates the level and writes it to the output.
// A periodic output flips once elapsed time since the last flip strictly
// exceeds the period. Elapsed time is computed modulo the counter width,
// so a counter that wrapped since the last flip still measures correctly.
func (c *Controller[T]) Update() {
	now := c.clock.Millis()

	switch c.interval.kind {
	case KindAlwaysOn:
		c.level = true
	case KindAlwaysOff:
		c.level = false
	case KindPeriodic:
		if now-c.last > c.interval.period {
			c.last = now
			c.level = !c.level
			c.toggles++
		}
	}

	c.sink.Set(c.level)
}

// SetInterval replaces the interval. The running timing phase is kept:
// the next Update measures against the same baseline as before.
func (c *Controller[T]) SetInterval(interval Interval[T]) {
	c.interval = interval
}

// Interval returns the current interval.
func (c *Controller[T]) Interval() Interval[T] {
	return c.interval
}

// Level returns the most recently computed level.
func (c *Controller[T]) Level() bool {
	return c.level
}

// Toggles returns the number of timed flips since construction.
func (c *Controller[T]) Toggles() uint64 {
	return c.toggles
}
