// Package config loads the daemon configuration from a TOML file.
// Every field has a default, so a missing file or an empty one is valid.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/sweeney/blinkchain/internal/backlight"
	"github.com/sweeney/blinkchain/internal/gpio"
	"github.com/sweeney/blinkchain/internal/mode"
)

// Duration is a time.Duration written as a string ("100ms", "15m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Interval is a blink interval written as "on", "off" or a duration.
type Interval struct {
	mode.Interval
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Interval) UnmarshalText(text []byte) error {
	v, err := mode.ParseInterval(string(text))
	if err != nil {
		return err
	}
	i.Interval = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (i Interval) MarshalText() ([]byte, error) {
	return []byte(i.Interval.String()), nil
}

// Config is the complete daemon configuration.
type Config struct {
	Poll      Duration   `toml:"poll"`
	Debounce  Duration   `toml:"debounce"`
	GPIO      GPIO       `toml:"gpio"`
	Backlight Backlight  `toml:"backlight"`
	MQTT      MQTT       `toml:"mqtt"`
	HTTP      HTTP       `toml:"http"`
	Modes     []ModeSpec `toml:"modes"`
}

// GPIO selects the chip and line offsets.
type GPIO struct {
	Chip      string `toml:"chip"`
	ChainPin  int    `toml:"chain_pin"`
	ButtonPin int    `toml:"button_pin"`
}

// Backlight configures the RGB PWM backlight.
type Backlight struct {
	Enabled     bool   `toml:"enabled"`
	Red         string `toml:"red"`
	Green       string `toml:"green"`
	Blue        string `toml:"blue"`
	Invert      bool   `toml:"invert"`
	FrequencyHz int64  `toml:"frequency_hz"`
}

// MQTT configures the broker connection.
type MQTT struct {
	Broker    string   `toml:"broker"`
	ClientID  string   `toml:"client_id"`
	Heartbeat Duration `toml:"heartbeat"`
	Buffer    int      `toml:"buffer"`
}

// HTTP configures the status server. An empty address disables it.
type HTTP struct {
	Addr string `toml:"addr"`
}

// ModeSpec is one entry of the mode table.
type ModeSpec struct {
	Name     string          `toml:"name"`
	Interval Interval        `toml:"interval"`
	Color    backlight.Color `toml:"color"`
}

// Default returns the built-in configuration.
func Default() Config {
	defaults := mode.Defaults()
	specs := make([]ModeSpec, len(defaults))
	for i, m := range defaults {
		specs[i] = ModeSpec{Name: m.Name, Interval: Interval{m.Interval}, Color: m.Color}
	}

	return Config{
		Poll:     Duration{100 * time.Millisecond},
		Debounce: Duration{50 * time.Millisecond},
		GPIO: GPIO{
			Chip:      gpio.DefaultChip,
			ChainPin:  gpio.DefaultPinChain,
			ButtonPin: gpio.DefaultPinButton,
		},
		Backlight: Backlight{
			Red:         "GPIO12",
			Green:       "GPIO13",
			Blue:        "GPIO18",
			Invert:      true,
			FrequencyHz: 1000,
		},
		MQTT: MQTT{
			Broker:    "tcp://192.168.1.200:1883",
			ClientID:  "blinkchain",
			Heartbeat: Duration{15 * time.Minute},
			Buffer:    100,
		},
		HTTP: HTTP{
			Addr: ":80",
		},
		Modes: specs,
	}
}

// Load reads the file at path over the defaults. An empty path returns
// the defaults. A [[modes]] table in the file replaces the whole default
// mode table.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, cfg)
}

// Parse decodes TOML data over base and validates the result.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	cfg.Modes = nil

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("parse config at %d:%d: %w", row, col, err)
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if len(cfg.Modes) == 0 {
		cfg.Modes = base.Modes
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and the mode table.
func (c Config) Validate() error {
	if c.Poll.Duration <= 0 {
		return fmt.Errorf("poll must be positive, got %v", c.Poll.Duration)
	}
	if c.Debounce.Duration < 0 {
		return fmt.Errorf("debounce must not be negative, got %v", c.Debounce.Duration)
	}
	if c.MQTT.Heartbeat.Duration < 0 {
		return fmt.Errorf("heartbeat must not be negative, got %v", c.MQTT.Heartbeat.Duration)
	}
	if c.MQTT.Buffer < 1 {
		return fmt.Errorf("mqtt buffer must be at least 1, got %d", c.MQTT.Buffer)
	}
	if c.GPIO.ChainPin < 0 || c.GPIO.ButtonPin < 0 {
		return fmt.Errorf("gpio pins must not be negative (chain=%d button=%d)", c.GPIO.ChainPin, c.GPIO.ButtonPin)
	}
	if c.GPIO.ChainPin == c.GPIO.ButtonPin {
		return fmt.Errorf("chain and button share pin %d", c.GPIO.ChainPin)
	}
	if c.Backlight.Enabled && c.Backlight.FrequencyHz <= 0 {
		return fmt.Errorf("backlight frequency must be positive, got %d", c.Backlight.FrequencyHz)
	}
	if _, err := mode.NewCycler(c.ModeTable()); err != nil {
		return fmt.Errorf("modes: %w", err)
	}
	return nil
}

// ModeTable converts the configured modes for mode.NewCycler.
func (c Config) ModeTable() []mode.Mode {
	modes := make([]mode.Mode, len(c.Modes))
	for i, s := range c.Modes {
		modes[i] = mode.Mode{Name: s.Name, Interval: s.Interval.Interval, Color: s.Color}
	}
	return modes
}
