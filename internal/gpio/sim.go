package gpio

import "github.com/sweeney/rangefinder/internal/clock"

// Simulator is a Port that behaves like an ultrasonic sensor wired to two
// pins. Releasing the trigger line from its active level arms an echo pulse
// that starts DelayUs later and lasts WidthUs, both measured on Clock.
type Simulator struct {
	Clock clock.Clock

	TrigPin    int
	EchoPin    int
	TrigActive Level
	EchoActive Level

	// DelayUs is the time from trigger release to the echo going active.
	DelayUs uint32
	// WidthUs is how long the echo stays active.
	WidthUs uint32

	// Silent suppresses the echo pulse entirely.
	Silent bool
	// Stuck holds the echo line active regardless of triggers.
	Stuck bool
	// Runaway keeps the echo active forever once it starts.
	Runaway bool

	// Triggers counts completed trigger pulses.
	Triggers int

	levels     map[int]Level
	dirs       map[int]Direction
	armed      bool
	releasedAt uint32
}

// NewSimulator creates a Simulator for a sensor on the given pins.
func NewSimulator(clk clock.Clock, trigPin, echoPin int, trigActive, echoActive Level) *Simulator {
	return &Simulator{
		Clock:      clk,
		TrigPin:    trigPin,
		EchoPin:    echoPin,
		TrigActive: trigActive,
		EchoActive: echoActive,
		levels:     make(map[int]Level),
		dirs:       make(map[int]Direction),
	}
}

// EchoForDistance sets the echo pulse width for a target at cm centimetres
// given the sensor's microseconds-per-centimetre constant.
func (s *Simulator) EchoForDistance(cm, usPerCm uint32) {
	s.WidthUs = cm*usPerCm + usPerCm/2
}

// SetDirection records the pin direction.
func (s *Simulator) SetDirection(pin int, dir Direction) error {
	s.dirs[pin] = dir
	return nil
}

// Direction returns the configured direction of pin.
func (s *Simulator) Direction(pin int) (Direction, bool) {
	d, ok := s.dirs[pin]
	return d, ok
}

// Write drives pin. A trigger line leaving its active level arms the echo.
func (s *Simulator) Write(pin int, level Level) error {
	prev, seen := s.levels[pin]
	s.levels[pin] = level

	if pin == s.TrigPin && seen && prev == s.TrigActive && level != s.TrigActive {
		s.Triggers++
		if !s.Silent {
			s.armed = true
			s.releasedAt = s.Clock.NowMicros()
		}
	}
	return nil
}

// Read returns the simulated level of pin.
func (s *Simulator) Read(pin int) (Level, error) {
	if pin != s.EchoPin {
		return s.levels[pin], nil
	}
	if s.echoActive() {
		return s.EchoActive, nil
	}
	return s.EchoActive.Opposite(), nil
}

func (s *Simulator) echoActive() bool {
	if s.Stuck {
		return true
	}
	if !s.armed {
		return false
	}
	since := clock.Since(s.releasedAt, s.Clock.NowMicros())
	if since < s.DelayUs {
		return false
	}
	if s.Runaway {
		return true
	}
	if since-s.DelayUs < s.WidthUs {
		return true
	}
	s.armed = false
	return false
}
