// Package urm drives single-trigger / single-echo ultrasonic rangefinders
// such as the URM37 and HC-SR04.
//
// A Sensor is a non-blocking state machine. Start issues the trigger pulse;
// FinishedMeasure (or Poll) must then be called often enough to catch the
// echo edges. Failures never surface as errors: the machine returns to
// StateIdle and MeasuredDistance reports InvalidDistance.
package urm

// InvalidDistance is returned in place of a distance when a measurement
// failed or has not finished.
const InvalidDistance uint32 = 0xFFFFFFFF

// State is the state of the measurement state machine.
type State string

const (
	StateIdle            State = "IDLE"
	StateWaitingForPulse State = "WAITING_FOR_PULSE"
	StateMeasuring       State = "MEASURING"
	StateFinishedMeasure State = "FINISHED_MEASURE"
)

// Fault records why a measurement cycle ended in StateIdle.
type Fault string

const (
	FaultNone              Fault = ""
	FaultNotAttached       Fault = "NOT_ATTACHED"
	FaultEchoAlreadyActive Fault = "ECHO_ALREADY_ACTIVE"
	FaultPulseStartTimeout Fault = "PULSE_START_TIMEOUT"
	FaultPulseRunaway      Fault = "PULSE_RUNAWAY"
	FaultIO                Fault = "IO_ERROR"
	FaultInterrupted       Fault = "INTERRUPTED"
)

// Transition describes a single state change, delivered to an Observer.
type Transition struct {
	From State
	To   State
	// Fault is set when To is StateIdle because of a failure.
	Fault Fault
	// At is the clock timestamp of the change, in microseconds.
	At uint32
}

// Observer receives state transitions. It runs synchronously inside the
// state machine and must not call back into the Sensor.
type Observer func(Transition)
