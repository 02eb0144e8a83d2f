package urm

import (
	"context"
	"testing"

	"github.com/sweeney/rangefinder/internal/clock"
	"github.com/sweeney/rangefinder/internal/gpio"
)

// setupSimulated returns a sensor attached to a simulated echo on a clock
// that ticks 1us per read.
func setupSimulated(t *testing.T, p Profile) (*Sensor, *gpio.Simulator) {
	t.Helper()
	clk := clock.NewFake(0)
	clk.Step = 1
	sim := gpio.NewSimulator(clk, testTrig, testEcho, p.TrigActive, p.EchoActive)
	sim.DelayUs = 500

	s := New(sim, clk)
	if err := s.Attach(p, testTrig, testEcho); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	return s, sim
}

func TestMeasureMatchesAsyncPath(t *testing.T) {
	for _, p := range []Profile{URM37, HCSR04} {
		t.Run(p.Name, func(t *testing.T) {
			s, sim := setupSimulated(t, p)
			sim.EchoForDistance(50, p.UsPerCm)

			sync := s.Measure()

			s.Start()
			for !s.FinishedMeasure() {
			}
			async := s.MeasuredDistance()

			if sync != 50 {
				t.Errorf("Measure: got %d, want 50", sync)
			}
			if async != sync {
				t.Errorf("async path: got %d, Measure got %d", async, sync)
			}
			if sim.Triggers != 2 {
				t.Errorf("expected 2 trigger pulses, got %d", sim.Triggers)
			}
		})
	}
}

func TestMeasureSilentSensor(t *testing.T) {
	s, sim := setupSimulated(t, HCSR04)
	sim.Silent = true

	if got := s.Measure(); got != InvalidDistance {
		t.Errorf("expected invalid distance, got %d", got)
	}
	if s.LastFault() != FaultPulseStartTimeout {
		t.Errorf("expected PULSE_START_TIMEOUT, got %s", s.LastFault())
	}
}

func TestMeasureRunawayEcho(t *testing.T) {
	s, sim := setupSimulated(t, HCSR04)
	sim.Runaway = true

	if got := s.Measure(); got != InvalidDistance {
		t.Errorf("expected invalid distance, got %d", got)
	}
	if s.LastFault() != FaultPulseRunaway {
		t.Errorf("expected PULSE_RUNAWAY, got %s", s.LastFault())
	}
}

func TestMeasureStuckEcho(t *testing.T) {
	s, sim := setupSimulated(t, URM37)
	sim.Stuck = true

	if got := s.Measure(); got != InvalidDistance {
		t.Errorf("expected invalid distance, got %d", got)
	}
	if s.LastFault() != FaultEchoAlreadyActive {
		t.Errorf("expected ECHO_ALREADY_ACTIVE, got %s", s.LastFault())
	}
	if sim.Triggers != 0 {
		t.Errorf("stuck echo must not be triggered, got %d pulses", sim.Triggers)
	}
}

func TestMeasureDetached(t *testing.T) {
	s, _ := setupSimulated(t, HCSR04)
	s.Detach()

	if got := s.Measure(); got != InvalidDistance {
		t.Errorf("expected invalid distance, got %d", got)
	}
}

func TestMeasureContextCancelled(t *testing.T) {
	s, sim := setupSimulated(t, HCSR04)
	sim.Silent = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := s.MeasureContext(ctx)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if got != InvalidDistance {
		t.Errorf("expected invalid distance, got %d", got)
	}
	if s.State() != StateIdle {
		t.Errorf("expected IDLE, got %s", s.State())
	}
	if s.LastFault() != FaultInterrupted {
		t.Errorf("expected INTERRUPTED, got %s", s.LastFault())
	}
}

func TestMeasureContextCompletes(t *testing.T) {
	s, sim := setupSimulated(t, URM37)
	sim.EchoForDistance(123, URM37.UsPerCm)

	got, err := s.MeasureContext(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 123 {
		t.Errorf("distance: got %d, want 123", got)
	}
}
