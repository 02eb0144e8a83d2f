package urm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sweeney/rangefinder/internal/gpio"
)

// ErrInvalidProfile is returned when a Profile cannot be used for ranging.
var ErrInvalidProfile = errors.New("urm: invalid sensor profile")

// Profile describes the timing and polarity of one physical sensor model.
// It is a value type; a Sensor keeps its own copy once attached.
type Profile struct {
	Name string

	// UsPerCm converts echo pulse width to centimetres (integer division).
	UsPerCm uint32

	TrigActive gpio.Level
	EchoActive gpio.Level

	// TrigPulseWidthUs is how long the trigger line is held active.
	TrigPulseWidthUs uint32
	// TimeoutForPulseStartUs bounds the wait between trigger and echo start.
	TimeoutForPulseStartUs uint32
	// MaxPulseDurationUs bounds how long the echo may stay active.
	MaxPulseDurationUs uint32
}

// Validate reports whether the profile can be attached.
func (p Profile) Validate() error {
	if p.UsPerCm == 0 {
		return fmt.Errorf("%w: us_per_cm must be > 0", ErrInvalidProfile)
	}
	return nil
}

// MaxDistanceCm is the largest distance the profile can report.
func (p Profile) MaxDistanceCm() uint32 {
	if p.UsPerCm == 0 {
		return 0
	}
	return p.MaxPulseDurationUs / p.UsPerCm
}

// URM37 is a DFRobot URM37 in PWM mode: active-low trigger and echo.
var URM37 = Profile{
	Name:                   "urm37",
	UsPerCm:                50,
	TrigActive:             gpio.Low,
	EchoActive:             gpio.Low,
	TrigPulseWidthUs:       1,
	TimeoutForPulseStartUs: 50000,
	MaxPulseDurationUs:     45000,
}

// HCSR04 is an HC-SR04 class rangefinder: active-high trigger and echo,
// maximum pulse sized for 450 cm.
var HCSR04 = Profile{
	Name:                   "hc-sr04",
	UsPerCm:                61,
	TrigActive:             gpio.High,
	EchoActive:             gpio.High,
	TrigPulseWidthUs:       10,
	TimeoutForPulseStartUs: 10000,
	MaxPulseDurationUs:     61 * 450,
}

var presets = map[string]Profile{
	URM37.Name:  URM37,
	HCSR04.Name: HCSR04,
}

// ProfileByName returns the preset with the given name (case-insensitive).
func ProfileByName(name string) (Profile, bool) {
	p, ok := presets[strings.ToLower(name)]
	return p, ok
}

// PresetNames lists the known preset names.
func PresetNames() []string {
	return []string{URM37.Name, HCSR04.Name}
}
