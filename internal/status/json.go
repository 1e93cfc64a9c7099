package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Chain         ChainJSON    `json:"chain"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// ChainJSON is the JSON representation of the light chain state.
type ChainJSON struct {
	Mode      string `json:"mode"`
	ModeIndex int    `json:"mode_index"`
	Interval  string `json:"interval"`
	Color     string `json:"color"`
	Level     string `json:"level"`
	Toggles   uint64 `json:"toggles"`
	Presses   int    `json:"button_presses"`
	Ready     bool   `json:"ready"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64    `json:"poll_ms"`
	DebounceMs  int64    `json:"debounce_ms"`
	HeartbeatMs int64    `json:"heartbeat_ms"`
	Broker      string   `json:"broker"`
	HTTPAddr    string   `json:"http_addr"`
	ChainPin    int      `json:"chain_pin"`
	ButtonPin   int      `json:"button_pin"`
	Modes       []string `json:"modes"`
}

// LevelString renders an output level as "ON" or "OFF".
func LevelString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func buildInner(snap Snapshot) StatusInner {
	mode := snap.Chain.Mode
	if mode == "" {
		mode = "UNKNOWN"
	}
	level := "UNKNOWN"
	if snap.Chain.Initialized {
		level = LevelString(snap.Chain.Level)
	}
	modes := snap.Config.Modes
	if modes == nil {
		modes = []string{}
	}

	inner := StatusInner{
		Chain: ChainJSON{
			Mode:      mode,
			ModeIndex: snap.Chain.ModeIndex,
			Interval:  snap.Chain.Interval,
			Color:     snap.Chain.Color,
			Level:     level,
			Toggles:   snap.Chain.Toggles,
			Presses:   snap.Chain.Presses,
			Ready:     snap.Chain.Initialized,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			ChainPin:    snap.Config.ChainPin,
			ButtonPin:   snap.Config.ButtonPin,
			Modes:       modes,
		},
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) ([]byte, error) {
	return json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) ([]byte, error) {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	return json.Marshal(StatusJSON{Status: inner})
}
