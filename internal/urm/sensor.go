package urm

import (
	"fmt"

	"github.com/sweeney/rangefinder/internal/clock"
	"github.com/sweeney/rangefinder/internal/gpio"
)

// Sensor is one ultrasonic rangefinder wired to a trigger and an echo pin.
// The pins are owned exclusively by the Sensor while attached.
// A Sensor is not safe for concurrent use.
type Sensor struct {
	port  gpio.Port
	clock clock.Clock

	profile  Profile
	trigPin  int
	echoPin  int
	attached bool

	state     State
	startedAt uint32 // valid in StateWaitingForPulse and StateMeasuring
	elapsedUs uint32 // valid in StateFinishedMeasure
	lastFault Fault

	observer Observer
}

// New creates a detached Sensor that will drive pins through port and take
// timestamps from clk.
func New(port gpio.Port, clk clock.Clock) *Sensor {
	return &Sensor{
		port:  port,
		clock: clk,
		state: StateIdle,
	}
}

// SetObserver installs fn to be called on every state change. Pass nil to
// remove it.
func (s *Sensor) SetObserver(fn Observer) {
	s.observer = fn
}

// Attach binds the sensor to its pins using profile p. The echo pin is
// configured as an input and the trigger pin as an output resting at its
// inactive level. On error the sensor is left detached.
func (s *Sensor) Attach(p Profile, trigPin, echoPin int) error {
	s.attached = false
	s.setState(StateIdle, FaultNone, s.clock.NowMicros())

	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.port.SetDirection(echoPin, gpio.Input); err != nil {
		return fmt.Errorf("configure echo pin %d: %w", echoPin, err)
	}
	if err := s.port.Write(trigPin, p.TrigActive.Opposite()); err != nil {
		return fmt.Errorf("idle trigger pin %d: %w", trigPin, err)
	}
	if err := s.port.SetDirection(trigPin, gpio.Output); err != nil {
		return fmt.Errorf("configure trigger pin %d: %w", trigPin, err)
	}

	s.profile = p
	s.trigPin = trigPin
	s.echoPin = echoPin
	s.attached = true
	s.lastFault = FaultNone
	return nil
}

// AttachURM37 attaches the sensor using the URM37 preset.
func (s *Sensor) AttachURM37(trigPin, echoPin int) error {
	return s.Attach(URM37, trigPin, echoPin)
}

// AttachHCSR04 attaches the sensor using the HC-SR04 preset.
func (s *Sensor) AttachHCSR04(trigPin, echoPin int) error {
	return s.Attach(HCSR04, trigPin, echoPin)
}

// Detach releases the pins and abandons any measurement in progress.
func (s *Sensor) Detach() {
	s.attached = false
	s.setState(StateIdle, FaultNone, s.clock.NowMicros())
}

// IsAttached reports whether the sensor is bound to pins.
func (s *Sensor) IsAttached() bool {
	return s.attached
}

// Profile returns the attached profile.
func (s *Sensor) Profile() Profile {
	return s.profile
}

// Pins returns the trigger and echo pin numbers.
func (s *Sensor) Pins() (trig, echo int) {
	return s.trigPin, s.echoPin
}

// State returns the current state of the machine.
func (s *Sensor) State() State {
	return s.state
}

// LastFault returns why the most recent cycle ended in StateIdle, or
// FaultNone if it did not fail.
func (s *Sensor) LastFault() Fault {
	return s.lastFault
}

// Start begins a measurement. It is a no-op while a measurement is already
// running. The only blocking part is the trigger pulse itself, which lasts
// TrigPulseWidthUs. The echo line is sampled once before returning so a
// fast response is not missed.
func (s *Sensor) Start() {
	if s.IsMeasuring() {
		return
	}
	if !s.attached {
		s.fail(FaultNotAttached, s.clock.NowMicros())
		return
	}

	// An echo already asserted cannot be told apart from a stuck line.
	echo, err := s.port.Read(s.echoPin)
	if err != nil {
		s.fail(FaultIO, s.clock.NowMicros())
		return
	}
	if echo == s.profile.EchoActive {
		s.fail(FaultEchoAlreadyActive, s.clock.NowMicros())
		return
	}

	if err := s.port.Write(s.trigPin, s.profile.TrigActive); err != nil {
		s.fail(FaultIO, s.clock.NowMicros())
		return
	}
	s.clock.DelayMicros(s.profile.TrigPulseWidthUs)
	if err := s.port.Write(s.trigPin, s.profile.TrigActive.Opposite()); err != nil {
		s.fail(FaultIO, s.clock.NowMicros())
		return
	}

	s.startedAt = s.clock.NowMicros()
	s.elapsedUs = 0
	s.lastFault = FaultNone
	s.setState(StateWaitingForPulse, FaultNone, s.startedAt)

	s.Poll()
}

// IsMeasuring reports whether a measurement is in progress.
func (s *Sensor) IsMeasuring() bool {
	return s.state == StateWaitingForPulse || s.state == StateMeasuring
}

// Interrupt abandons any measurement and returns to StateIdle.
func (s *Sensor) Interrupt() {
	if s.state == StateIdle {
		return
	}
	s.fail(FaultInterrupted, s.clock.NowMicros())
}

// Poll samples the echo line and advances the state machine. It may be
// called from a timer or an edge handler; it does nothing unless a
// measurement is in progress.
//
// When the echo changes level on the same poll that exceeds a timeout, the
// level change wins.
func (s *Sensor) Poll() {
	if !s.IsMeasuring() {
		return
	}

	level, err := s.port.Read(s.echoPin)
	if err != nil {
		s.fail(FaultIO, s.clock.NowMicros())
		return
	}
	now := s.clock.NowMicros()
	active := level == s.profile.EchoActive
	elapsed := clock.Since(s.startedAt, now)

	switch s.state {
	case StateWaitingForPulse:
		if elapsed > s.profile.TimeoutForPulseStartUs && !active {
			s.fail(FaultPulseStartTimeout, now)
		} else if active {
			// From here on only the pulse width is timed.
			s.startedAt = now
			s.setState(StateMeasuring, FaultNone, now)
		}

	case StateMeasuring:
		if elapsed > s.profile.MaxPulseDurationUs && active {
			s.fail(FaultPulseRunaway, now)
		} else if !active {
			s.elapsedUs = elapsed
			s.setState(StateFinishedMeasure, FaultNone, now)
		}
	}
}

// FinishedMeasure advances the state machine and reports whether the
// measurement is over, successfully or not. A detached sensor reports true
// immediately. Callers not using Poll from an edge handler must call this
// repeatedly to make progress.
func (s *Sensor) FinishedMeasure() bool {
	if !s.attached {
		s.fail(FaultNotAttached, s.clock.NowMicros())
		return true
	}
	s.Poll()
	return !s.IsMeasuring()
}

// MeasuredDistance returns the distance in centimetres of the last finished
// measurement, or InvalidDistance if the machine is not in
// StateFinishedMeasure.
func (s *Sensor) MeasuredDistance() uint32 {
	if s.state != StateFinishedMeasure {
		return InvalidDistance
	}
	return s.elapsedUs / s.profile.UsPerCm
}

// PulseWidth returns the raw echo pulse width of the last finished
// measurement in microseconds.
func (s *Sensor) PulseWidth() (uint32, bool) {
	if s.state != StateFinishedMeasure {
		return 0, false
	}
	return s.elapsedUs, true
}

func (s *Sensor) fail(f Fault, at uint32) {
	s.lastFault = f
	s.setState(StateIdle, f, at)
}

func (s *Sensor) setState(to State, f Fault, at uint32) {
	from := s.state
	s.state = to
	if from == to || s.observer == nil {
		return
	}
	s.observer(Transition{From: from, To: to, Fault: f, At: at})
}
