// Package logic turns measurement outcomes into publishable events.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"time"

	"github.com/sweeney/rangefinder/internal/urm"
)

// EventType classifies the outcome of one measurement cycle.
type EventType string

const (
	EventReading EventType = "READING"
	EventFault   EventType = "FAULT"
)

// Input is the result of one measurement cycle.
type Input struct {
	Time       time.Time
	DistanceCm uint32 // urm.InvalidDistance on failure
	PulseUs    uint32
	Fault      urm.Fault
}

// Event is a measurement outcome to be published.
type Event struct {
	Timestamp  time.Time
	Type       EventType
	DistanceCm uint32
	PulseUs    uint32
	Fault      urm.Fault
	// Consecutive is the number of failures in a row, including this one.
	// Zero for readings.
	Consecutive int
}

// Valid reports whether the event carries a distance.
func (e Event) Valid() bool {
	return e.Type == EventReading
}

// Counts tracks measurement outcomes since startup.
type Counts struct {
	Readings          int
	PulseStartTimeout int
	PulseRunaway      int
	EchoAlreadyActive int
	IOError           int
	Other             int
}

// Failures returns the total number of failed cycles.
func (c Counts) Failures() int {
	return c.PulseStartTimeout + c.PulseRunaway + c.EchoAlreadyActive + c.IOError + c.Other
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
