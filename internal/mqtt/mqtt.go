// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/blinkchain/internal/mode"
)

// TopicEvents is the MQTT topic for mode change events.
const TopicEvents = "home/blinkchain/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/blinkchain/system"

// TopicCommand is the MQTT topic the daemon listens on for mode commands.
// The payload is a mode name or "next".
const TopicCommand = "home/blinkchain/set"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a mode change event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event mode.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Blink BlinkPayload `json:"blink"`
}

// BlinkPayload contains the mode change details.
type BlinkPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Source    string `json:"source"`
	Mode      string `json:"mode"`
	Index     int    `json:"index"`
	Interval  string `json:"interval"`
	Color     string `json:"color"`
}

// EventMode is the event name of mode change payloads.
const EventMode = "MODE"

// FormatPayload creates the JSON payload for a mode change event.
func FormatPayload(event mode.Event) ([]byte, error) {
	payload := Payload{
		Blink: BlinkPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     EventMode,
			Source:    string(event.Source),
			Mode:      event.Mode.Name,
			Index:     event.Index,
			Interval:  event.Mode.Interval.String(),
			Color:     event.Mode.Color.String(),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// WillEvent is the last-will message the broker publishes if the daemon
// drops off without a clean SHUTDOWN.
func WillEvent(now time.Time) SystemEvent {
	return SystemEvent{
		Timestamp: now,
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
		Retained:  true,
	}
}
