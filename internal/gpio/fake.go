package gpio

import "fmt"

// WriteOp records a single Write call on a FakePort.
type WriteOp struct {
	Pin   int
	Level Level
}

// FakePort is a test double whose pin levels are set directly by the test.
type FakePort struct {
	// Levels holds the level each pin reads as. Writes update it too.
	Levels map[int]Level

	// Directions records the last direction configured per pin.
	Directions map[int]Direction

	// Writes records every successful Write in order.
	Writes []WriteOp

	// Reads counts Read calls per pin.
	Reads map[int]int

	// ReadError, WriteError and DirectionError, if set, are returned by
	// the corresponding method.
	ReadError      error
	WriteError     error
	DirectionError error
}

// NewFakePort creates a FakePort with every pin reading Low.
func NewFakePort() *FakePort {
	return &FakePort{
		Levels:     make(map[int]Level),
		Directions: make(map[int]Direction),
		Reads:      make(map[int]int),
	}
}

// SetDirection records the direction for pin.
func (f *FakePort) SetDirection(pin int, dir Direction) error {
	if f.DirectionError != nil {
		return f.DirectionError
	}
	f.Directions[pin] = dir
	return nil
}

// Write records the write and sets the pin level.
func (f *FakePort) Write(pin int, level Level) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Writes = append(f.Writes, WriteOp{Pin: pin, Level: level})
	f.Levels[pin] = level
	return nil
}

// Read returns the scripted level of pin.
func (f *FakePort) Read(pin int) (Level, error) {
	if f.ReadError != nil {
		return Low, f.ReadError
	}
	f.Reads[pin]++
	return f.Levels[pin], nil
}

// Set forces the level a pin reads as, as if driven externally.
func (f *FakePort) Set(pin int, level Level) {
	f.Levels[pin] = level
}

// WritesTo returns the levels written to pin, in order.
func (f *FakePort) WritesTo(pin int) []Level {
	var out []Level
	for _, w := range f.Writes {
		if w.Pin == pin {
			out = append(out, w.Level)
		}
	}
	return out
}

// Reset clears recorded calls and injected errors. Levels are kept.
func (f *FakePort) Reset() {
	f.Writes = nil
	f.Reads = make(map[int]int)
	f.ReadError = nil
	f.WriteError = nil
	f.DirectionError = nil
}

func (w WriteOp) String() string {
	return fmt.Sprintf("%d=%s", w.Pin, w.Level)
}
