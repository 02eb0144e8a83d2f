//go:build linux

package gpio

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "rangefinder"

// ChipPort drives pins through the Linux GPIO character device.
// Lines are requested lazily the first time a pin's direction is set.
type ChipPort struct {
	mu      sync.Mutex
	chip    *gpiocdev.Chip
	lines   map[int]*gpiocdev.Line
	pending map[int]Level
}

// NewChipPort opens the named GPIO chip, e.g. "gpiochip0".
func NewChipPort(chipName string) (*ChipPort, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &ChipPort{
		chip:    chip,
		lines:   make(map[int]*gpiocdev.Line),
		pending: make(map[int]Level),
	}, nil
}

// SetDirection requests the line for pin, or reconfigures it if already held.
// Outputs start at the level last written to the pin (Low if none).
func (p *ChipPort) SetDirection(pin int, dir Direction) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if line, ok := p.lines[pin]; ok {
		var err error
		if dir == Output {
			err = line.Reconfigure(gpiocdev.AsOutput(int(p.pending[pin])))
		} else {
			err = line.Reconfigure(gpiocdev.AsInput)
		}
		if err != nil {
			return fmt.Errorf("reconfigure pin %d as %s: %w", pin, dir, err)
		}
		return nil
	}

	var (
		line *gpiocdev.Line
		err  error
	)
	if dir == Output {
		line, err = p.chip.RequestLine(pin, gpiocdev.AsOutput(int(p.pending[pin])), gpiocdev.WithConsumer(consumer))
	} else {
		line, err = p.chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithConsumer(consumer))
	}
	if err != nil {
		return fmt.Errorf("request pin %d as %s: %w", pin, dir, err)
	}
	p.lines[pin] = line
	return nil
}

// Write sets the output value of pin.
func (p *ChipPort) Write(pin int, level Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending[pin] = level
	line, ok := p.lines[pin]
	if !ok {
		return nil
	}
	if err := line.SetValue(int(level)); err != nil {
		return fmt.Errorf("write pin %d: %w", pin, err)
	}
	return nil
}

// Read returns the current value of pin.
func (p *ChipPort) Read(pin int) (Level, error) {
	p.mu.Lock()
	line, ok := p.lines[pin]
	p.mu.Unlock()

	if !ok {
		return Low, fmt.Errorf("read pin %d: line not requested", pin)
	}
	v, err := line.Value()
	if err != nil {
		return Low, fmt.Errorf("read pin %d: %w", pin, err)
	}
	if v != 0 {
		return High, nil
	}
	return Low, nil
}

// Close releases all GPIO resources.
// Lines are reconfigured as inputs with pull-down before release so the
// header is left in the Raspberry Pi boot default state.
func (p *ChipPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for pin, line := range p.lines {
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", pin, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
		delete(p.lines, pin)
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		p.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
