// Package gpio provides the button input and the light-chain output with
// hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads the push button.
type Reader interface {
	// Read returns true while the button is pressed.
	// The button pulls the line to ground: raw inactive (0) = pressed.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Writer drives the light chain.
type Writer interface {
	// Set drives the output active (true) or inactive (false).
	// Failures are not returned; they are kept for Err.
	Set(on bool)

	// Err returns the error of the most recent Set, or nil.
	Err() error

	// Close drives the output inactive and releases GPIO resources.
	Close() error
}

// Default pin definitions (BCM numbering)
const (
	DefaultChip      = "gpiochip0"
	DefaultPinChain  = 4  // Light chain transistor
	DefaultPinButton = 17 // Mode button, to ground
)

var (
	_ Reader = (*RealReader)(nil)
	_ Writer = (*RealWriter)(nil)
	_ Reader = (*FakeReader)(nil)
	_ Writer = (*FakeWriter)(nil)
)
