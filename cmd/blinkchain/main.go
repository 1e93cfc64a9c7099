// Command blinkchain drives a light chain in a button-selected blink pattern
// and publishes mode changes to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"periph.io/x/conn/v3/physic"

	"github.com/sweeney/blinkchain/internal/backlight"
	"github.com/sweeney/blinkchain/internal/blink"
	"github.com/sweeney/blinkchain/internal/button"
	"github.com/sweeney/blinkchain/internal/clock"
	"github.com/sweeney/blinkchain/internal/config"
	"github.com/sweeney/blinkchain/internal/gpio"
	"github.com/sweeney/blinkchain/internal/metrics"
	"github.com/sweeney/blinkchain/internal/mode"
	"github.com/sweeney/blinkchain/internal/mqtt"
	"github.com/sweeney/blinkchain/internal/status"
	"github.com/sweeney/blinkchain/internal/web"
)

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	cfg = opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, opts.printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// options holds the command line. Only flags given explicitly override
// the config file.
type options struct {
	configPath string
	broker     string
	httpAddr   string
	poll       time.Duration
	printState bool
	set        map[string]bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("blinkchain", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "TOML config file (built-in defaults if empty)")
	fs.StringVar(&o.broker, "broker", "", "MQTT broker address")
	fs.StringVar(&o.httpAddr, "http", "", "HTTP status address (empty to disable)")
	fs.DurationVar(&o.poll, "poll", 0, "Polling interval")
	fs.BoolVar(&o.printState, "print-state", false, "Print button state and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

func (o options) apply(cfg config.Config) config.Config {
	if o.set["broker"] {
		cfg.MQTT.Broker = o.broker
	}
	if o.set["http"] {
		cfg.HTTP.Addr = o.httpAddr
	}
	if o.set["poll"] {
		cfg.Poll.Duration = o.poll
	}
	return cfg
}

func run(cfg config.Config, printState bool) error {
	// Initialize GPIO
	buttonReader, err := gpio.NewRealReader(cfg.GPIO.Chip, cfg.GPIO.ButtonPin)
	if err != nil {
		return fmt.Errorf("init button: %w", err)
	}
	defer buttonReader.Close()

	// Print state mode
	if printState {
		pressed, err := buttonReader.Read()
		if err != nil {
			return fmt.Errorf("read button: %w", err)
		}
		fmt.Printf("button: %s\n", pressedString(pressed))
		return nil
	}

	chain, err := gpio.NewRealWriter(cfg.GPIO.Chip, cfg.GPIO.ChainPin)
	if err != nil {
		return fmt.Errorf("init chain: %w", err)
	}
	defer chain.Close()

	var light backlight.Backlight = backlight.Nop{}
	if cfg.Backlight.Enabled {
		pwm, err := backlight.NewPWM(backlight.Pins{
			Red:   cfg.Backlight.Red,
			Green: cfg.Backlight.Green,
			Blue:  cfg.Backlight.Blue,
		}, cfg.Backlight.Invert, physic.Frequency(cfg.Backlight.FrequencyHz)*physic.Hertz)
		if err != nil {
			return fmt.Errorf("init backlight: %w", err)
		}
		light = pwm
	}
	defer light.Close()

	cycler, err := mode.NewCycler(cfg.ModeTable())
	if err != nil {
		return fmt.Errorf("init modes: %w", err)
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Buffer)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), statusConfig(cfg, cycler.Names()))
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg, reg)

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, m.Handler())
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	ctrl := blink.New[uint32](chain, clock.NewMillis[uint32](time.Now), cycler.Current().Interval)

	l := &loop{
		input:     buttonReader,
		detector:  button.NewDetector(cfg.Debounce.Duration),
		cycler:    cycler,
		ctrl:      ctrl,
		light:     light,
		pub:       publisher,
		conn:      publisher,
		tracker:   tracker,
		metrics:   m,
		heartbeat: cfg.MQTT.Heartbeat.Duration,
		now:       time.Now,
	}

	log.Printf("started: poll=%v debounce=%v broker=%s heartbeat=%v modes=%v",
		cfg.Poll.Duration, cfg.Debounce.Duration, cfg.MQTT.Broker, cfg.MQTT.Heartbeat.Duration, cycler.Names())

	ticker := time.NewTicker(cfg.Poll.Duration)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return l.run(ticker.C, publisher.Commands(), sigCh)
}

func statusConfig(cfg config.Config, modes []string) status.Config {
	return status.Config{
		PollMs:      cfg.Poll.Milliseconds(),
		DebounceMs:  cfg.Debounce.Milliseconds(),
		HeartbeatMs: cfg.MQTT.Heartbeat.Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTP.Addr,
		ChainPin:    cfg.GPIO.ChainPin,
		ButtonPin:   cfg.GPIO.ButtonPin,
		Modes:       modes,
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func pressedString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
