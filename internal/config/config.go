// Package config loads daemon configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/rangefinder/internal/gpio"
	"github.com/sweeney/rangefinder/internal/urm"
)

// ErrUnknownProfile is returned when the configured preset does not exist.
var ErrUnknownProfile = errors.New("config: unknown sensor profile")

// Config represents the daemon configuration.
type Config struct {
	Sensor    SensorConfig  `yaml:"sensor"`
	MQTT      MQTTConfig    `yaml:"mqtt"`
	HTTP      HTTPConfig    `yaml:"http"`
	Interval  time.Duration `yaml:"interval"`  // Time between measurements
	Heartbeat time.Duration `yaml:"heartbeat"` // 0 disables heartbeats
}

// SensorConfig describes the wiring and model of the sensor.
type SensorConfig struct {
	Chip    string        `yaml:"chip"`
	TrigPin int           `yaml:"trig_pin"`
	EchoPin int           `yaml:"echo_pin"`
	Profile ProfileConfig `yaml:"profile"`
}

// ProfileConfig selects a preset and optionally overrides its fields.
// Zero values keep the preset's value.
type ProfileConfig struct {
	Preset                 string `yaml:"preset"`
	UsPerCm                uint32 `yaml:"us_per_cm"`
	TrigActive             string `yaml:"trig_active"` // "low" or "high"
	EchoActive             string `yaml:"echo_active"` // "low" or "high"
	TrigPulseWidthUs       uint32 `yaml:"trig_pulse_width_us"`
	TimeoutForPulseStartUs uint32 `yaml:"timeout_for_pulse_start_us"`
	MaxPulseDurationUs     uint32 `yaml:"max_pulse_duration_us"`
}

// MQTTConfig contains broker settings.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
}

// HTTPConfig contains the status server settings.
type HTTPConfig struct {
	Addr string `yaml:"addr"` // empty disables the server
}

// Default returns the default configuration: an HC-SR04 on BCM 23/24.
func Default() *Config {
	return &Config{
		Sensor: SensorConfig{
			Chip:    "gpiochip0",
			TrigPin: gpio.DefaultPinTrig,
			EchoPin: gpio.DefaultPinEcho,
			Profile: ProfileConfig{Preset: urm.HCSR04.Name},
		},
		MQTT: MQTTConfig{
			Broker:   "tcp://192.168.1.200:1883",
			ClientID: "rangefinder",
		},
		HTTP:      HTTPConfig{Addr: ":80"},
		Interval:  500 * time.Millisecond,
		Heartbeat: 15 * time.Minute,
	}
}

// Load loads configuration from a YAML file. If filename is empty or the
// file doesn't exist, defaults are returned. Missing fields keep defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if _, err := cfg.Sensor.Profile.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func (c *Config) ensureDefaults() {
	def := Default()

	if c.Sensor.Chip == "" {
		c.Sensor.Chip = def.Sensor.Chip
	}
	if c.Sensor.Profile.Preset == "" {
		c.Sensor.Profile.Preset = def.Sensor.Profile.Preset
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if c.Heartbeat < 0 {
		c.Heartbeat = 0
	}
}

// Resolve returns the preset named by pc with its overrides applied.
func (pc ProfileConfig) Resolve() (urm.Profile, error) {
	p, ok := urm.ProfileByName(pc.Preset)
	if !ok {
		return urm.Profile{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownProfile, pc.Preset, strings.Join(urm.PresetNames(), ", "))
	}

	if pc.UsPerCm != 0 {
		p.UsPerCm = pc.UsPerCm
	}
	if pc.TrigPulseWidthUs != 0 {
		p.TrigPulseWidthUs = pc.TrigPulseWidthUs
	}
	if pc.TimeoutForPulseStartUs != 0 {
		p.TimeoutForPulseStartUs = pc.TimeoutForPulseStartUs
	}
	if pc.MaxPulseDurationUs != 0 {
		p.MaxPulseDurationUs = pc.MaxPulseDurationUs
	}

	var err error
	if p.TrigActive, err = parseLevel(pc.TrigActive, p.TrigActive); err != nil {
		return urm.Profile{}, fmt.Errorf("trig_active: %w", err)
	}
	if p.EchoActive, err = parseLevel(pc.EchoActive, p.EchoActive); err != nil {
		return urm.Profile{}, fmt.Errorf("echo_active: %w", err)
	}

	if err := p.Validate(); err != nil {
		return urm.Profile{}, err
	}
	return p, nil
}

func parseLevel(s string, def gpio.Level) (gpio.Level, error) {
	switch strings.ToLower(s) {
	case "":
		return def, nil
	case "low", "0":
		return gpio.Low, nil
	case "high", "1":
		return gpio.High, nil
	}
	return def, fmt.Errorf("invalid level %q (want low or high)", s)
}
