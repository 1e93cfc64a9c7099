//go:build linux

package gpio

import (
	"fmt"
	"log"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the button from actual hardware using Linux GPIO character device.
type RealReader struct {
	chip *gpiocdev.Chip
	pin  *gpiocdev.Line
}

// NewRealReader requests the button line on the named chip.
func NewRealReader(chipName string, pin int) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// The button shorts the line to ground, so it needs a pull-up to
	// read inactive while released.
	line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}

	return &RealReader{chip: chip, pin: line}, nil
}

// Read returns true while the button is pressed.
// Inverts raw GPIO: raw 0 (pulled to ground) = pressed.
func (r *RealReader) Read() (bool, error) {
	raw, err := r.pin.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return raw == 0, nil
}

// Close releases GPIO resources.
// The line is reconfigured to input with pull-down (matching Pi boot
// defaults) before closing.
func (r *RealReader) Close() error {
	var errs []error

	if r.pin != nil {
		if err := r.pin.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure button pin: %w", err))
		}
		if err := r.pin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealWriter drives the light chain through a GPIO output line.
type RealWriter struct {
	chip *gpiocdev.Chip
	pin  *gpiocdev.Line
	num  int
	err  error
}

// NewRealWriter requests the chain line as an output, initially inactive.
func NewRealWriter(chipName string, pin int) (*RealWriter, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request chain pin %d: %w", pin, err)
	}

	return &RealWriter{chip: chip, pin: line, num: pin}, nil
}

// Set drives the line. It is called on every poll, so only the first
// failure and the recovery are logged.
func (w *RealWriter) Set(on bool) {
	v := 0
	if on {
		v = 1
	}
	err := w.pin.SetValue(v)
	switch {
	case err != nil && w.err == nil:
		log.Printf("gpio: write chain pin %d: %v", w.num, err)
	case err == nil && w.err != nil:
		log.Printf("gpio: chain pin %d writable again", w.num)
	}
	w.err = err
}

// Err returns the error of the most recent Set, or nil.
func (w *RealWriter) Err() error {
	return w.err
}

// Close switches the chain off, returns the line to input with pull-down
// and releases it.
func (w *RealWriter) Close() error {
	var errs []error

	if w.pin != nil {
		if err := w.pin.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear chain pin: %w", err))
		}
		if err := w.pin.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure chain pin: %w", err))
		}
		if err := w.pin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chain pin: %w", err))
		}
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
