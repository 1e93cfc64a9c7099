// Package mode holds the table of blink modes the button cycles through.
package mode

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sweeney/blinkchain/internal/backlight"
	"github.com/sweeney/blinkchain/internal/blink"
	"github.com/sweeney/blinkchain/internal/clock"
)

// Interval is the blink interval on the daemon's 32-bit millisecond counter.
type Interval = blink.Interval[uint32]

// Mode is one entry of the cycle.
type Mode struct {
	Name     string
	Interval Interval
	Color    backlight.Color
}

// Defaults returns the factory mode table. Colours are the channel
// intensities before common-anode inversion.
func Defaults() []Mode {
	return []Mode{
		{Name: "fast", Interval: blink.Every[uint32](500), Color: backlight.Color{R: 0, G: 100, B: 0}},
		{Name: "slow", Interval: blink.Every[uint32](5000), Color: backlight.Color{R: 100, G: 10, B: 100}},
		{Name: "steady", Interval: blink.AlwaysOn[uint32](), Color: backlight.Color{R: 0xFF, G: 0x35, B: 0}},
		{Name: "off", Interval: blink.AlwaysOff[uint32](), Color: backlight.Black},
	}
}

// ParseInterval parses "on", "off" or a positive duration of whole
// milliseconds ("500ms", "5s").
func ParseInterval(s string) (Interval, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on":
		return blink.AlwaysOn[uint32](), nil
	case "off":
		return blink.AlwaysOff[uint32](), nil
	}

	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return Interval{}, fmt.Errorf("invalid interval %q: want on, off or a duration", s)
	}
	if d <= 0 {
		return Interval{}, fmt.Errorf("invalid interval %q: must be positive", s)
	}
	if d%time.Millisecond != 0 {
		return Interval{}, fmt.Errorf("invalid interval %q: must be whole milliseconds", s)
	}
	ms := d.Milliseconds()
	if ms >= int64(clock.Max[uint32]()) {
		return Interval{}, fmt.Errorf("invalid interval %q: too long", s)
	}
	return blink.Every(uint32(ms)), nil
}

// Cycler walks the mode table in order, wrapping at the end.
type Cycler struct {
	modes []Mode
	cur   int
}

// NewCycler creates a Cycler positioned on the first mode.
func NewCycler(modes []Mode) (*Cycler, error) {
	if len(modes) == 0 {
		return nil, errors.New("mode table is empty")
	}
	seen := make(map[string]bool, len(modes))
	for _, m := range modes {
		key := strings.ToLower(m.Name)
		if key == "" {
			return nil, errors.New("mode with empty name")
		}
		if key == CommandNext {
			return nil, fmt.Errorf("mode name %q is reserved", m.Name)
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate mode name %q", m.Name)
		}
		seen[key] = true
	}
	return &Cycler{modes: append([]Mode(nil), modes...)}, nil
}

// Current returns the selected mode.
func (c *Cycler) Current() Mode {
	return c.modes[c.cur]
}

// Index returns the position of the selected mode.
func (c *Cycler) Index() int {
	return c.cur
}

// Advance selects the next mode and returns it.
func (c *Cycler) Advance() Mode {
	c.cur = (c.cur + 1) % len(c.modes)
	return c.modes[c.cur]
}

// Select selects the mode with the given name (case-insensitive).
func (c *Cycler) Select(name string) (Mode, bool) {
	for i, m := range c.modes {
		if strings.EqualFold(m.Name, name) {
			c.cur = i
			return m, true
		}
	}
	return Mode{}, false
}

// Names returns the mode names in cycle order.
func (c *Cycler) Names() []string {
	names := make([]string, len(c.modes))
	for i, m := range c.modes {
		names[i] = m.Name
	}
	return names
}
