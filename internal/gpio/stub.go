//go:build !linux

package gpio

import "errors"

// ChipPort is not available on non-Linux platforms.
type ChipPort struct{}

// NewChipPort returns an error on non-Linux platforms.
func NewChipPort(chipName string) (*ChipPort, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// SetDirection is not implemented on non-Linux platforms.
func (p *ChipPort) SetDirection(pin int, dir Direction) error {
	return errors.New("gpio: not supported")
}

// Write is not implemented on non-Linux platforms.
func (p *ChipPort) Write(pin int, level Level) error {
	return errors.New("gpio: not supported")
}

// Read is not implemented on non-Linux platforms.
func (p *ChipPort) Read(pin int) (Level, error) {
	return Low, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (p *ChipPort) Close() error {
	return nil
}
