// Package button turns raw button samples into debounced press events.
// This package has NO external dependencies (no GPIO, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package button

import "time"

// Input represents a single sample of the button.
type Input struct {
	Pressed bool // true = pressed (already inverted from raw GPIO)
	Time    time.Time
}

// state tracks debounce state for the button line.
type state struct {
	// Current stable (debounced) value
	stable bool
	// Pending value during debounce
	pending bool
	// Whether a value is pending at all
	hasPending bool
	// Time when pending value was first observed
	pendingSince time.Time
	// Whether we have established a baseline
	baselined bool
}

// Detector debounces the button and reports presses.
type Detector struct {
	debounceDuration time.Duration
	st               state
	presses          int
}

// NewDetector creates a new press detector with the given debounce duration.
func NewDetector(debounceDuration time.Duration) *Detector {
	return &Detector{debounceDuration: debounceDuration}
}

// Process takes a new sample and reports whether it completes a press.
// The first stable value is the baseline and never counts as a press,
// so a button held down at startup does not change the mode.
func (d *Detector) Process(input Input) bool {
	st := &d.st

	// First observations establish the baseline
	if !st.baselined {
		if !st.hasPending || st.pending != input.Pressed {
			// Start observing, or restart on change
			d.setPending(input)
			return false
		}

		if input.Time.Sub(st.pendingSince) >= d.debounceDuration {
			st.stable = input.Pressed
			st.baselined = true
			st.hasPending = false
		}
		return false
	}

	// Already baselined - detect transitions
	if input.Pressed == st.stable {
		// No change from stable value, clear any pending
		st.hasPending = false
		return false
	}

	if !st.hasPending || st.pending != input.Pressed {
		d.setPending(input)
		return false
	}

	// Same pending value, check debounce
	if input.Time.Sub(st.pendingSince) >= d.debounceDuration {
		st.stable = input.Pressed
		st.hasPending = false
		if st.stable {
			d.presses++
			return true
		}
	}

	return false
}

func (d *Detector) setPending(input Input) {
	d.st.pending = input.Pressed
	d.st.hasPending = true
	d.st.pendingSince = input.Time
}

// IsBaselined returns whether the detector has established a baseline.
func (d *Detector) IsBaselined() bool {
	return d.st.baselined
}

// Pressed returns the debounced button state.
func (d *Detector) Pressed() bool {
	return d.st.stable
}

// Presses returns the number of presses since startup.
func (d *Detector) Presses() int {
	return d.presses
}
