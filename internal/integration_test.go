package internal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/rangefinder/internal/clock"
	"github.com/sweeney/rangefinder/internal/gpio"
	"github.com/sweeney/rangefinder/internal/logic"
	"github.com/sweeney/rangefinder/internal/mqtt"
	"github.com/sweeney/rangefinder/internal/status"
	"github.com/sweeney/rangefinder/internal/urm"
)

// TestIntegrationFullFlow tests the complete flow from the echo line to MQTT
// using fakes: a target approaches, disappears, then comes back.
func TestIntegrationFullFlow(t *testing.T) {
	clk := clock.NewFake(0)
	clk.Step = 1
	p := urm.HCSR04
	sim := gpio.NewSimulator(clk, 23, 24, p.TrigActive, p.EchoActive)
	sim.DelayUs = 450

	sensor := urm.New(sim, clk)
	if err := sensor.Attach(p, 23, 24); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	publisher := mqtt.NewFakePublisher()
	startTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	recorder := logic.NewRecorder(startTime)
	tracker := status.NewTracker(startTime, status.Config{Profile: p, TrigPin: 23, EchoPin: 24})

	// 0 means no target in range.
	targets := []uint32{200, 150, 100, 0, 0, 40}
	interval := 500 * time.Millisecond

	// Simulate the main loop
	for i, cm := range targets {
		if cm == 0 {
			sim.Silent = true
		} else {
			sim.Silent = false
			sim.EchoForDistance(cm, p.UsPerCm)
		}

		distance := sensor.Measure()
		pulse, _ := sensor.PulseWidth()
		now := startTime.Add(time.Duration(i) * interval)
		event := recorder.Process(logic.Input{Time: now, DistanceCm: distance, PulseUs: pulse, Fault: sensor.LastFault()})

		if err := publisher.Publish(event); err != nil {
			t.Fatalf("cycle %d: publish error: %v", i, err)
		}
		tracker.Update(sensor.State(), event, recorder.CountsSnapshot(), recorder.ConsecutiveFailures())
	}

	if len(publisher.Events) != len(targets) {
		t.Fatalf("expected %d events, got %d", len(targets), len(publisher.Events))
	}

	for i, cm := range targets {
		e := publisher.Events[i]
		if cm == 0 {
			if e.Type != logic.EventFault || e.Fault != urm.FaultPulseStartTimeout {
				t.Errorf("event %d: expected PULSE_START_TIMEOUT fault, got %s/%s", i, e.Type, e.Fault)
			}
			continue
		}
		if e.Type != logic.EventReading || e.DistanceCm != cm {
			t.Errorf("event %d: expected READING %dcm, got %s %dcm", i, cm, e.Type, e.DistanceCm)
		}
	}
	if publisher.Events[4].Consecutive != 2 {
		t.Errorf("event 4: expected 2 consecutive failures, got %d", publisher.Events[4].Consecutive)
	}

	// Verify JSON payloads
	var reading mqtt.Payload
	if err := json.Unmarshal(publisher.Payloads[1], &reading); err != nil {
		t.Fatalf("invalid reading JSON: %v", err)
	}
	if reading.Rangefinder.Event != "READING" || reading.Rangefinder.DistanceCm == nil || *reading.Rangefinder.DistanceCm != 150 {
		t.Errorf("reading payload: got %s", publisher.Payloads[1])
	}
	// Second cycle is 500ms in; RFC3339 drops the fraction.
	if reading.Rangefinder.Timestamp != "2026-01-01T12:00:00Z" {
		t.Errorf("reading timestamp: got %s", reading.Rangefinder.Timestamp)
	}

	var fault mqtt.Payload
	if err := json.Unmarshal(publisher.Payloads[3], &fault); err != nil {
		t.Fatalf("invalid fault JSON: %v", err)
	}
	if fault.Rangefinder.DistanceCm != nil || fault.Rangefinder.Fault != "PULSE_START_TIMEOUT" {
		t.Errorf("fault payload: got %s", publisher.Payloads[3])
	}

	// Tracker reflects the recovery
	snap := tracker.Snapshot()
	if snap.Counts.Readings != 4 || snap.Counts.PulseStartTimeout != 2 {
		t.Errorf("counts: got %+v", snap.Counts)
	}
	if snap.ConsecutiveFailures != 0 {
		t.Errorf("expected failures reset after recovery, got %d", snap.ConsecutiveFailures)
	}
	if snap.Last.DistanceCm != 40 {
		t.Errorf("last distance: got %d, want 40", snap.Last.DistanceCm)
	}
	if sim.Triggers != len(targets) {
		t.Errorf("expected one trigger per cycle, got %d", sim.Triggers)
	}
}

// TestIntegrationActiveLowSensor drives a URM37 (active-low trigger and echo)
// through the non-blocking path, polling as a timer would.
func TestIntegrationActiveLowSensor(t *testing.T) {
	clk := clock.NewFake(1000)
	clk.Step = 1
	sim := gpio.NewSimulator(clk, 5, 6, gpio.Low, gpio.Low)
	sim.DelayUs = 100
	sim.EchoForDistance(300, urm.URM37.UsPerCm)

	sensor := urm.New(sim, clk)
	if err := sensor.AttachURM37(5, 6); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	var states []urm.State
	sensor.SetObserver(func(tr urm.Transition) { states = append(states, tr.To) })

	sensor.Start()
	polls := 0
	for sensor.IsMeasuring() {
		sensor.Poll()
		polls++
	}

	if got := sensor.MeasuredDistance(); got != 300 {
		t.Errorf("distance: got %d, want 300", got)
	}
	if polls == 0 {
		t.Error("expected the measurement to need polling")
	}
	want := []urm.State{urm.StateWaitingForPulse, urm.StateMeasuring, urm.StateFinishedMeasure}
	if len(states) != len(want) {
		t.Fatalf("transitions: got %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("transition %d: got %s, want %s", i, states[i], want[i])
		}
	}
	if lvl, _ := sim.Read(5); lvl != gpio.High {
		t.Errorf("trigger should rest high on an active-low sensor, got %s", lvl)
	}
}
