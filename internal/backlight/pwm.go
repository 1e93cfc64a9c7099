package backlight

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// DefaultFrequency is the PWM carrier used when none is configured.
const DefaultFrequency = 1 * physic.KiloHertz

// Pins names the PWM-capable pins of the three channels, as known to gpioreg
// (e.g. "GPIO12").
type Pins struct {
	Red, Green, Blue string
}

// PWM drives a three-channel LED with hardware PWM.
type PWM struct {
	red, green, blue gpio.PinOut
	invert           bool
	freq             physic.Frequency
}

// NewPWM initialises the host drivers and resolves the pins.
// invert is for common-anode LEDs, where a low duty cycle means bright.
func NewPWM(pins Pins, invert bool, freq physic.Frequency) (*PWM, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	r, err := lookup(pins.Red)
	if err != nil {
		return nil, err
	}
	g, err := lookup(pins.Green)
	if err != nil {
		return nil, err
	}
	b, err := lookup(pins.Blue)
	if err != nil {
		return nil, err
	}
	return newPWM(r, g, b, invert, freq), nil
}

func newPWM(r, g, b gpio.PinOut, invert bool, freq physic.Frequency) *PWM {
	if freq == 0 {
		freq = DefaultFrequency
	}
	return &PWM{red: r, green: g, blue: b, invert: invert, freq: freq}
}

func lookup(name string) (gpio.PinOut, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("backlight pin %q not found", name)
	}
	return p, nil
}

// SetColor sets the duty cycle of each channel.
func (p *PWM) SetColor(c Color) error {
	var errs []error
	if err := p.red.PWM(p.duty(c.R), p.freq); err != nil {
		errs = append(errs, fmt.Errorf("red: %w", err))
	}
	if err := p.green.PWM(p.duty(c.G), p.freq); err != nil {
		errs = append(errs, fmt.Errorf("green: %w", err))
	}
	if err := p.blue.PWM(p.duty(c.B), p.freq); err != nil {
		errs = append(errs, fmt.Errorf("blue: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("set backlight %s: %w", c, errors.Join(errs...))
	}
	return nil
}

func (p *PWM) duty(v uint8) gpio.Duty {
	if p.invert {
		v = 0xFF - v
	}
	return gpio.Duty(int64(v) * int64(gpio.DutyMax) / 0xFF)
}

// Close turns the backlight dark and halts the pins.
func (p *PWM) Close() error {
	err := p.SetColor(Black)
	for _, pin := range []gpio.PinOut{p.red, p.green, p.blue} {
		if herr := pin.Halt(); herr != nil && err == nil {
			err = fmt.Errorf("halt backlight pin %s: %w", pin, herr)
		}
	}
	return err
}
