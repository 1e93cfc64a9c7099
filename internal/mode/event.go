package mode

import "time"

// Source says what caused a mode change.
type Source string

const (
	SourceStartup Source = "startup"
	SourceButton  Source = "button"
	SourceMQTT    Source = "mqtt"
)

// CommandNext is the remote command that behaves like a button press.
const CommandNext = "next"

// Event describes a mode change to be published.
type Event struct {
	Timestamp time.Time
	Index     int
	Mode      Mode
	Source    Source
}
