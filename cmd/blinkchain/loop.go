package main

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/sweeney/blinkchain/internal/backlight"
	"github.com/sweeney/blinkchain/internal/blink"
	"github.com/sweeney/blinkchain/internal/button"
	"github.com/sweeney/blinkchain/internal/gpio"
	"github.com/sweeney/blinkchain/internal/metrics"
	"github.com/sweeney/blinkchain/internal/mode"
	"github.com/sweeney/blinkchain/internal/mqtt"
	"github.com/sweeney/blinkchain/internal/status"
)

// loop owns everything the daemon touches while running. All fields are
// used from the run goroutine only.
type loop struct {
	input     gpio.Reader
	detector  *button.Detector
	cycler    *mode.Cycler
	ctrl      *blink.Controller[uint32]
	light     backlight.Backlight
	pub       mqtt.Publisher
	conn      mqtt.ConnectionStatus // optional
	tracker   *status.Tracker
	metrics   *metrics.Metrics
	heartbeat time.Duration // 0 disables
	now       func() time.Time

	startTime     time.Time
	lastHeartbeat time.Time
	lastToggles   uint64
}

// run starts the chain and polls until a signal arrives.
// Commands are mode names or "next", as received over MQTT.
func (l *loop) run(tick <-chan time.Time, cmds <-chan string, sig <-chan os.Signal) error {
	l.start()

	for {
		select {
		case s := <-sig:
			l.shutdown(s)
			return nil

		case cmd := <-cmds:
			l.command(cmd)

		case <-tick:
			l.poll()
		}
	}
}

func (l *loop) start() {
	t := l.now()
	l.startTime = t
	l.lastHeartbeat = t

	m := l.cycler.Current()
	l.applyColor(m)
	l.ctrl.Init()
	l.refresh()

	log.Printf("mode: %s (%s)", m.Name, m.Interval)
	l.publishMode(mode.Event{Timestamp: t, Index: l.cycler.Index(), Mode: m, Source: mode.SourceStartup})
	l.publishStatus(t, "STARTUP", "", true)
}

func (l *loop) poll() {
	t := l.now()

	pressed, err := l.input.Read()
	if err != nil {
		// The chain keeps blinking while the button is unreadable.
		log.Printf("button read error: %v", err)
	} else if l.detector.Process(button.Input{Pressed: pressed, Time: t}) {
		l.metrics.Presses.Inc()
		l.changeMode(l.cycler.Advance(), mode.SourceButton, t)
	}

	l.ctrl.Update()
	l.refresh()
	l.checkHeartbeat(t)
}

func (l *loop) command(cmd string) {
	t := l.now()

	var m mode.Mode
	if strings.EqualFold(cmd, mode.CommandNext) {
		m = l.cycler.Advance()
	} else {
		var ok bool
		if m, ok = l.cycler.Select(cmd); !ok {
			log.Printf("mqtt: unknown mode %q ignored", cmd)
			return
		}
	}

	l.changeMode(m, mode.SourceMQTT, t)
	l.refresh()
}

// changeMode switches the controller to m. The blink phase carries over;
// the new interval takes effect on the next Update.
func (l *loop) changeMode(m mode.Mode, src mode.Source, t time.Time) {
	l.ctrl.SetInterval(m.Interval)
	l.applyColor(m)

	l.metrics.ModeChanges.WithLabelValues(string(src)).Inc()
	log.Printf("mode: %s (%s, source=%s)", m.Name, m.Interval, src)

	l.publishMode(mode.Event{Timestamp: t, Index: l.cycler.Index(), Mode: m, Source: src})
}

func (l *loop) applyColor(m mode.Mode) {
	if err := l.light.SetColor(m.Color); err != nil {
		log.Printf("backlight error: %v", err)
	}
}

// refresh pushes controller state to the status tracker and metrics.
func (l *loop) refresh() {
	toggles := l.ctrl.Toggles()
	l.metrics.AddToggles(toggles, l.lastToggles)
	l.lastToggles = toggles
	l.metrics.SetLevel(l.ctrl.Level())
	l.metrics.ModeIndex.Set(float64(l.cycler.Index()))

	m := l.cycler.Current()
	l.tracker.Update(status.Chain{
		Mode:        m.Name,
		ModeIndex:   l.cycler.Index(),
		Interval:    m.Interval.String(),
		Color:       m.Color.String(),
		Level:       l.ctrl.Level(),
		Toggles:     toggles,
		Presses:     l.detector.Presses(),
		Initialized: true,
	})
	if l.conn != nil {
		l.tracker.SetMQTTConnected(l.conn.IsConnected())
	}
}

// checkHeartbeat publishes a HEARTBEAT once the interval has passed since
// startup or the previous heartbeat.
func (l *loop) checkHeartbeat(t time.Time) {
	if l.heartbeat <= 0 || t.Sub(l.lastHeartbeat) < l.heartbeat {
		return
	}
	l.lastHeartbeat = t

	// Refresh network info for heartbeat
	if net := readNetworkInfo(); net != nil {
		l.tracker.SetNetwork(net)
	}

	m := l.cycler.Current()
	log.Printf("heartbeat: uptime=%v mode=%s toggles=%d presses=%d",
		t.Sub(l.startTime), m.Name, l.ctrl.Toggles(), l.detector.Presses())
	l.publishStatus(t, "HEARTBEAT", "", false)
}

func (l *loop) shutdown(s os.Signal) {
	log.Printf("received %v, shutting down", s)
	l.refresh()
	l.publishStatus(l.now(), "SHUTDOWN", signalName(s), true)
}

func (l *loop) publishMode(ev mode.Event) {
	if err := l.pub.Publish(ev); err != nil {
		// Don't crash on publish failure
		l.metrics.PublishErrors.Inc()
		log.Printf("publish error: %v", err)
	}
}

func (l *loop) publishStatus(t time.Time, event, reason string, retained bool) {
	payload, err := status.FormatStatusEvent(l.tracker.Snapshot(), event, reason)
	if err != nil {
		l.metrics.PublishErrors.Inc()
		log.Printf("failed to format %s event: %v", strings.ToLower(event), err)
		return
	}
	se := mqtt.SystemEvent{
		Timestamp:  t,
		Event:      event,
		Reason:     reason,
		Retained:   retained,
		RawPayload: payload,
	}
	if err := l.pub.PublishSystem(se); err != nil {
		l.metrics.PublishErrors.Inc()
		log.Printf("failed to publish %s event: %v", strings.ToLower(event), err)
		return
	}
	log.Printf("published %s event", strings.ToLower(event))
}
