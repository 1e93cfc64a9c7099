package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/blinkchain/internal/backlight"
	"github.com/sweeney/blinkchain/internal/blink"
	"github.com/sweeney/blinkchain/internal/mode"
)

func testEvent(ts time.Time) mode.Event {
	return mode.Event{
		Timestamp: ts,
		Index:     1,
		Mode: mode.Mode{
			Name:     "slow",
			Interval: blink.Every[uint32](5000),
			Color:    backlight.Color{R: 100, G: 10, B: 100},
		},
		Source: mode.SourceButton,
	}
}

func TestTopics(t *testing.T) {
	if TopicEvents != "home/blinkchain/events" {
		t.Errorf("unexpected events topic: %s", TopicEvents)
	}
	if TopicSystem != "home/blinkchain/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
	if TopicCommand != "home/blinkchain/set" {
		t.Errorf("unexpected command topic: %s", TopicCommand)
	}
}

func TestFormatPayloadExactJSON(t *testing.T) {
	payload, err := FormatPayload(testEvent(time.Date(2026, 12, 24, 18, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"blink":{"timestamp":"2026-12-24T18:00:00Z","event":"MODE","source":"button","mode":"slow","index":1,"interval":"5s","color":"#640a64"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatPayloadSentinelModes(t *testing.T) {
	tests := []struct {
		interval mode.Interval
		want     string
	}{
		{blink.AlwaysOn[uint32](), "on"},
		{blink.AlwaysOff[uint32](), "off"},
		{blink.Every[uint32](500), "500ms"},
	}

	for _, tt := range tests {
		ev := testEvent(time.Now())
		ev.Mode.Interval = tt.interval
		payload, err := FormatPayload(ev)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var parsed Payload
		if err := json.Unmarshal(payload, &parsed); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if parsed.Blink.Interval != tt.want {
			t.Errorf("expected interval %q, got %q", tt.want, parsed.Blink.Interval)
		}
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	payload, _ := FormatPayload(testEvent(time.Date(2026, 12, 24, 19, 0, 0, 0, loc)))

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Blink.Timestamp != "2026-12-24T18:00:00Z" {
		t.Errorf("expected UTC timestamp, got %s", parsed.Blink.Timestamp)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-10T14:30:00Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC),
		Event:     "RECONNECTED",
	})

	expected := `{"system":{"timestamp":"2026-02-10T14:30:00Z","event":"RECONNECTED"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload passthrough, got %s", payload)
	}
}

func TestWillPayloadFormat(t *testing.T) {
	will := WillEvent(time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC))
	if !will.Retained {
		t.Error("will should be retained")
	}

	payload, err := FormatSystemPayload(will)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"SHUTDOWN","reason":"MQTT_DISCONNECT"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()
	ev := testEvent(time.Now())

	if err := f.Publish(ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Events) != 1 || len(f.Payloads) != 1 {
		t.Fatalf("expected 1 event and payload, got %d/%d", len(f.Events), len(f.Payloads))
	}
	if f.Events[0].Mode.Name != "slow" {
		t.Errorf("unexpected mode %q", f.Events[0].Mode.Name)
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("publish failed")
	f.PublishSystemError = errors.New("system publish failed")

	if err := f.Publish(testEvent(time.Now())); err == nil {
		t.Error("expected publish error")
	}
	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err == nil {
		t.Error("expected system publish error")
	}
	if len(f.Events) != 0 || len(f.SystemEvents) != 0 {
		t.Error("failed publishes should not be recorded")
	}
}

func TestFakePublisherRecordsRetainedFlag(t *testing.T) {
	f := NewFakePublisher()

	f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Retained: true})
	f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "HEARTBEAT"})

	if len(f.SystemEvents) != 2 {
		t.Fatalf("expected 2 system events, got %d", len(f.SystemEvents))
	}
	if !f.SystemEvents[0].Retained {
		t.Error("first event should have Retained=true")
	}
	if f.SystemEvents[1].Retained {
		t.Error("second event should have Retained=false")
	}
	names := f.SystemEventNames()
	if len(names) != 2 || names[0] != "STARTUP" || names[1] != "HEARTBEAT" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(testEvent(time.Now()))
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Close()
	f.Connected = true

	f.Reset()

	if len(f.Events) != 0 || len(f.Payloads) != 0 || len(f.SystemEvents) != 0 || len(f.SystemPayloads) != 0 {
		t.Error("Reset should clear recorded events")
	}
	if f.Closed || f.Connected {
		t.Error("Reset should clear Closed and Connected")
	}
}

var (
	_ Publisher        = (*FakePublisher)(nil)
	_ ConnectionStatus = (*FakePublisher)(nil)
	_ Publisher        = (*RealPublisher)(nil)
	_ ConnectionStatus = (*RealPublisher)(nil)
)
