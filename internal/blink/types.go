// Package blink contains the blink-timing state machine for one digital output.
// This package performs no I/O of its own: the output and the millisecond
// counter are injected, so every behaviour is reproducible from a fake clock.
package blink

import (
	"strconv"
	"time"

	"github.com/sweeney/blinkchain/internal/clock"
)

// Sink is a digital output. Setting the same level repeatedly must be harmless.
type Sink interface {
	Set(on bool)
}

// Clock is a wrapping millisecond counter of width T.
type Clock[T clock.Ticks] interface {
	Millis() T
}

// Kind selects how an Interval drives the output.
type Kind uint8

const (
	KindAlwaysOn Kind = iota
	KindAlwaysOff
	KindPeriodic
)

func (k Kind) String() string {
	switch k {
	case KindAlwaysOn:
		return "on"
	case KindAlwaysOff:
		return "off"
	case KindPeriodic:
		return "periodic"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Raw sentinel encoding. AlwaysOff is all bits set for the counter width
// and is available as clock.Max[T]().
const RawAlwaysOn = 0

// Interval is either a constant level or a toggle period in milliseconds.
// The zero value is AlwaysOn, matching the raw encoding of 0.
type Interval[T clock.Ticks] struct {
	kind   Kind
	period T
}

// AlwaysOn holds the output active.
func AlwaysOn[T clock.Ticks]() Interval[T] {
	return Interval[T]{kind: KindAlwaysOn}
}

// AlwaysOff holds the output inactive.
func AlwaysOff[T clock.Ticks]() Interval[T] {
	return Interval[T]{kind: KindAlwaysOff}
}

// Every toggles the output each time more than ms milliseconds have passed
// since the previous toggle. The two sentinel values map to AlwaysOn and
// AlwaysOff, exactly as Decode does.
func Every[T clock.Ticks](ms T) Interval[T] {
	return Decode(ms)
}

// Decode interprets a raw interval: 0 is AlwaysOn, all bits set is
// AlwaysOff, anything else is a period in milliseconds.
func Decode[T clock.Ticks](raw T) Interval[T] {
	switch raw {
	case RawAlwaysOn:
		return AlwaysOn[T]()
	case clock.Max[T]():
		return AlwaysOff[T]()
	default:
		return Interval[T]{kind: KindPeriodic, period: raw}
	}
}

// Raw returns the sentinel encoding of i.
func (i Interval[T]) Raw() T {
	switch i.kind {
	case KindAlwaysOn:
		return RawAlwaysOn
	case KindAlwaysOff:
		return clock.Max[T]()
	default:
		return i.period
	}
}

// Kind reports which regime the interval selects.
func (i Interval[T]) Kind() Kind { return i.kind }

// Period returns the toggle period in milliseconds, or 0 for the constant kinds.
func (i Interval[T]) Period() T { return i.period }

// String renders "on", "off" or the period as a duration ("500ms", "5s").
func (i Interval[T]) String() string {
	switch i.kind {
	case KindAlwaysOn, KindAlwaysOff:
		return i.kind.String()
	default:
		if uint64(i.period) > uint64(1<<63-1)/uint64(time.Millisecond) {
			return strconv.FormatUint(uint64(i.period), 10) + "ms"
		}
		return (time.Duration(i.period) * time.Millisecond).String()
	}
}
