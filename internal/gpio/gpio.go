// Package gpio provides digital pin access with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// Level is the logic level of a digital pin.
type Level uint8

const (
	Low  Level = 0
	High Level = 1
)

// Opposite returns the other logic level.
func (l Level) Opposite() Level {
	if l == High {
		return Low
	}
	return High
}

func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

// Direction is the configured direction of a digital pin.
type Direction uint8

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "OUTPUT"
	}
	return "INPUT"
}

// Port reads, writes and configures digital pins by number.
// A Port does not own hardware state beyond what the caller configures.
type Port interface {
	// SetDirection configures pin as an input or an output.
	SetDirection(pin int, dir Direction) error

	// Write drives pin to level. Writing a pin that is not yet an output
	// sets the level it will take once configured as one.
	Write(pin int, level Level) error

	// Read samples the current level of pin.
	Read(pin int) (Level, error)
}

// Default line offsets (BCM numbering) for a sensor on a Raspberry Pi header.
const (
	DefaultPinTrig = 23
	DefaultPinEcho = 24
)
