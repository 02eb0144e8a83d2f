package logic

import (
	"testing"
	"time"

	"github.com/sweeney/rangefinder/internal/urm"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestNewRecorder(t *testing.T) {
	r := NewRecorder(t0)
	if r == nil {
		t.Fatal("NewRecorder returned nil")
	}
	if _, ok := r.Last(); ok {
		t.Error("new recorder should have no last event")
	}
	if !r.lastHeartbeat.Equal(t0) {
		t.Errorf("expected lastHeartbeat %v, got %v", t0, r.lastHeartbeat)
	}
}

func TestProcessReading(t *testing.T) {
	r := NewRecorder(t0)

	e := r.Process(Input{Time: t0, DistanceCm: 42, PulseUs: 2100})

	if e.Type != EventReading {
		t.Errorf("expected READING, got %s", e.Type)
	}
	if !e.Valid() {
		t.Error("reading should be valid")
	}
	if e.DistanceCm != 42 || e.PulseUs != 2100 {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.Consecutive != 0 {
		t.Errorf("expected Consecutive=0, got %d", e.Consecutive)
	}
	if r.CountsSnapshot().Readings != 1 {
		t.Errorf("expected 1 reading, got %d", r.CountsSnapshot().Readings)
	}
}

func TestProcessFaults(t *testing.T) {
	r := NewRecorder(t0)

	faults := []urm.Fault{
		urm.FaultPulseStartTimeout,
		urm.FaultPulseRunaway,
		urm.FaultEchoAlreadyActive,
		urm.FaultIO,
		urm.FaultNotAttached,
	}
	for i, f := range faults {
		e := r.Process(Input{Time: t0, DistanceCm: urm.InvalidDistance, Fault: f})
		if e.Type != EventFault {
			t.Errorf("fault %s: expected FAULT, got %s", f, e.Type)
		}
		if e.Valid() {
			t.Errorf("fault %s: should not be valid", f)
		}
		if e.Consecutive != i+1 {
			t.Errorf("fault %s: expected Consecutive=%d, got %d", f, i+1, e.Consecutive)
		}
	}

	c := r.CountsSnapshot()
	if c.PulseStartTimeout != 1 || c.PulseRunaway != 1 || c.EchoAlreadyActive != 1 || c.IOError != 1 || c.Other != 1 {
		t.Errorf("unexpected counts: %+v", c)
	}
	if c.Failures() != 5 {
		t.Errorf("expected 5 failures, got %d", c.Failures())
	}
}

func TestReadingResetsConsecutive(t *testing.T) {
	r := NewRecorder(t0)
	r.Process(Input{Time: t0, DistanceCm: urm.InvalidDistance, Fault: urm.FaultPulseStartTimeout})
	r.Process(Input{Time: t0, DistanceCm: urm.InvalidDistance, Fault: urm.FaultPulseStartTimeout})
	if r.ConsecutiveFailures() != 2 {
		t.Fatalf("expected 2 consecutive failures, got %d", r.ConsecutiveFailures())
	}

	r.Process(Input{Time: t0, DistanceCm: 10})
	if r.ConsecutiveFailures() != 0 {
		t.Errorf("expected 0 consecutive failures after a reading, got %d", r.ConsecutiveFailures())
	}

	last, ok := r.Last()
	if !ok || last.DistanceCm != 10 {
		t.Errorf("unexpected last event: %+v", last)
	}
}

func TestFaultDropsPulseWidth(t *testing.T) {
	r := NewRecorder(t0)
	e := r.Process(Input{Time: t0, DistanceCm: urm.InvalidDistance, PulseUs: 999, Fault: urm.FaultPulseRunaway})
	if e.PulseUs != 0 {
		t.Errorf("fault should not carry a pulse width, got %d", e.PulseUs)
	}
}

func TestHeartbeatDisabled(t *testing.T) {
	r := NewRecorder(t0)
	if hb := r.CheckHeartbeat(t0.Add(time.Hour), 0); hb != nil {
		t.Error("expected nil heartbeat when interval is 0")
	}
}

func TestHeartbeatInterval(t *testing.T) {
	r := NewRecorder(t0)
	r.Process(Input{Time: t0, DistanceCm: 5})

	if hb := r.CheckHeartbeat(t0.Add(59*time.Second), time.Minute); hb != nil {
		t.Error("expected no heartbeat before interval")
	}

	hb := r.CheckHeartbeat(t0.Add(time.Minute), time.Minute)
	if hb == nil {
		t.Fatal("expected heartbeat at interval")
	}
	if hb.Uptime != time.Minute {
		t.Errorf("expected uptime 1m, got %v", hb.Uptime)
	}
	if hb.Counts.Readings != 1 {
		t.Errorf("expected 1 reading in heartbeat, got %d", hb.Counts.Readings)
	}

	if hb := r.CheckHeartbeat(t0.Add(90*time.Second), time.Minute); hb != nil {
		t.Error("expected no heartbeat until the next interval")
	}
	if hb := r.CheckHeartbeat(t0.Add(2*time.Minute), time.Minute); hb == nil {
		t.Error("expected second heartbeat")
	}
}
