package urm

import (
	"errors"
	"testing"

	"github.com/sweeney/rangefinder/internal/gpio"
)

func TestPresets(t *testing.T) {
	tests := []struct {
		p          Profile
		usPerCm    uint32
		trig, echo gpio.Level
		pulse      uint32
		timeout    uint32
		maxPulse   uint32
	}{
		{URM37, 50, gpio.Low, gpio.Low, 1, 50000, 45000},
		{HCSR04, 61, gpio.High, gpio.High, 10, 10000, 27450},
	}

	for _, tt := range tests {
		t.Run(tt.p.Name, func(t *testing.T) {
			if err := tt.p.Validate(); err != nil {
				t.Fatalf("preset should validate: %v", err)
			}
			if tt.p.UsPerCm != tt.usPerCm {
				t.Errorf("UsPerCm: got %d, want %d", tt.p.UsPerCm, tt.usPerCm)
			}
			if tt.p.TrigActive != tt.trig || tt.p.EchoActive != tt.echo {
				t.Errorf("levels: got trig=%s echo=%s", tt.p.TrigActive, tt.p.EchoActive)
			}
			if tt.p.TrigPulseWidthUs != tt.pulse {
				t.Errorf("TrigPulseWidthUs: got %d, want %d", tt.p.TrigPulseWidthUs, tt.pulse)
			}
			if tt.p.TimeoutForPulseStartUs != tt.timeout {
				t.Errorf("TimeoutForPulseStartUs: got %d, want %d", tt.p.TimeoutForPulseStartUs, tt.timeout)
			}
			if tt.p.MaxPulseDurationUs != tt.maxPulse {
				t.Errorf("MaxPulseDurationUs: got %d, want %d", tt.p.MaxPulseDurationUs, tt.maxPulse)
			}
		})
	}
}

func TestHCSR04MaxDistance(t *testing.T) {
	if got := HCSR04.MaxDistanceCm(); got != 450 {
		t.Errorf("MaxDistanceCm: got %d, want 450", got)
	}
	if got := (Profile{}).MaxDistanceCm(); got != 0 {
		t.Errorf("zero profile MaxDistanceCm: got %d, want 0", got)
	}
}

func TestProfileByName(t *testing.T) {
	p, ok := ProfileByName("HC-SR04")
	if !ok || p != HCSR04 {
		t.Errorf("ProfileByName(HC-SR04): got %+v, %v", p, ok)
	}
	if _, ok := ProfileByName("srf05"); ok {
		t.Error("unknown preset should not resolve")
	}
	if len(PresetNames()) != 2 {
		t.Errorf("expected 2 presets, got %v", PresetNames())
	}
}

func TestValidate(t *testing.T) {
	if err := (Profile{}).Validate(); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile, got %v", err)
	}
}

func TestAttachPresetSugar(t *testing.T) {
	s, _, _ := setupSensor(t, testProfile)

	if err := s.AttachHCSR04(testTrig, testEcho); err != nil {
		t.Fatalf("AttachHCSR04: %v", err)
	}
	if s.Profile() != HCSR04 {
		t.Errorf("expected HC-SR04 profile, got %+v", s.Profile())
	}
	if err := s.AttachURM37(testTrig, testEcho); err != nil {
		t.Fatalf("AttachURM37: %v", err)
	}
	if s.Profile() != URM37 {
		t.Errorf("expected URM37 profile, got %+v", s.Profile())
	}
}
