package logic

import (
	"time"

	"github.com/sweeney/rangefinder/internal/urm"
)

// Recorder classifies measurement outcomes and keeps running counts.
type Recorder struct {
	startTime     time.Time
	counts        Counts
	consecutive   int
	last          Event
	hasLast       bool
	lastHeartbeat time.Time
}

// NewRecorder creates a Recorder. The startTime is used for calculating
// uptime in heartbeat events.
func NewRecorder(startTime time.Time) *Recorder {
	return &Recorder{
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Process records one measurement outcome and returns the event for it.
func (r *Recorder) Process(in Input) Event {
	e := Event{
		Timestamp:  in.Time,
		DistanceCm: in.DistanceCm,
		PulseUs:    in.PulseUs,
		Fault:      in.Fault,
	}

	if in.DistanceCm != urm.InvalidDistance {
		e.Type = EventReading
		e.Fault = urm.FaultNone
		r.consecutive = 0
		r.counts.Readings++
	} else {
		e.Type = EventFault
		e.PulseUs = 0
		r.consecutive++
		e.Consecutive = r.consecutive
		r.countFault(in.Fault)
	}

	r.last = e
	r.hasLast = true
	return e
}

func (r *Recorder) countFault(f urm.Fault) {
	switch f {
	case urm.FaultPulseStartTimeout:
		r.counts.PulseStartTimeout++
	case urm.FaultPulseRunaway:
		r.counts.PulseRunaway++
	case urm.FaultEchoAlreadyActive:
		r.counts.EchoAlreadyActive++
	case urm.FaultIO:
		r.counts.IOError++
	default:
		r.counts.Other++
	}
}

// Last returns the most recent event, if any.
func (r *Recorder) Last() (Event, bool) {
	return r.last, r.hasLast
}

// CountsSnapshot returns a copy of the outcome counts.
func (r *Recorder) CountsSnapshot() Counts {
	return r.counts
}

// ConsecutiveFailures returns the number of failures since the last reading.
func (r *Recorder) ConsecutiveFailures() int {
	return r.consecutive
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (r *Recorder) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(r.lastHeartbeat) < interval {
		return nil
	}

	r.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(r.startTime),
		Counts:    r.counts,
	}
}
