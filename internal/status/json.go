package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event               string       `json:"event,omitempty"`
	Reason              string       `json:"reason,omitempty"`
	State               string       `json:"state"`
	Last                *LastJSON    `json:"last,omitempty"`
	ConsecutiveFailures int          `json:"consecutive_failures"`
	UptimeSeconds       int64        `json:"uptime_seconds"`
	StartTime           string       `json:"start_time"`
	Timestamp           string       `json:"timestamp"`
	MQTT                MQTTStatus   `json:"mqtt"`
	Counts              CountsJSON   `json:"counts"`
	Network             *NetworkJSON `json:"network,omitempty"`
	Config              ConfigJSON   `json:"config"`
}

// LastJSON is the most recent measurement outcome.
type LastJSON struct {
	Timestamp  string  `json:"timestamp"`
	Event      string  `json:"event"`
	DistanceCm *uint32 `json:"distance_cm,omitempty"`
	Fault      string  `json:"fault,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of outcome counts.
type CountsJSON struct {
	Readings          int `json:"readings"`
	PulseStartTimeout int `json:"pulse_start_timeout"`
	PulseRunaway      int `json:"pulse_runaway"`
	EchoAlreadyActive int `json:"echo_already_active"`
	IOError           int `json:"io_error"`
	Other             int `json:"other"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	IntervalMs  int64       `json:"interval_ms"`
	HeartbeatMs int64       `json:"heartbeat_ms"`
	Broker      string      `json:"broker"`
	HTTPAddr    string      `json:"http_addr"`
	Chip        string      `json:"chip"`
	TrigPin     int         `json:"trig_pin"`
	EchoPin     int         `json:"echo_pin"`
	Simulated   bool        `json:"simulated,omitempty"`
	Profile     ProfileJSON `json:"profile"`
}

// ProfileJSON is the JSON representation of the active sensor profile.
type ProfileJSON struct {
	Name                   string `json:"name"`
	UsPerCm                uint32 `json:"us_per_cm"`
	TrigActive             string `json:"trig_active"`
	EchoActive             string `json:"echo_active"`
	TrigPulseWidthUs       uint32 `json:"trig_pulse_width_us"`
	TimeoutForPulseStartUs uint32 `json:"timeout_for_pulse_start_us"`
	MaxPulseDurationUs     uint32 `json:"max_pulse_duration_us"`
}

func buildInner(snap Snapshot) StatusInner {
	p := snap.Config.Profile
	inner := StatusInner{
		State:               string(snap.State),
		ConsecutiveFailures: snap.ConsecutiveFailures,
		UptimeSeconds:       int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:           snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:           snap.Now.UTC().Format(time.RFC3339),
		MQTT:                MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Readings:          snap.Counts.Readings,
			PulseStartTimeout: snap.Counts.PulseStartTimeout,
			PulseRunaway:      snap.Counts.PulseRunaway,
			EchoAlreadyActive: snap.Counts.EchoAlreadyActive,
			IOError:           snap.Counts.IOError,
			Other:             snap.Counts.Other,
		},
		Config: ConfigJSON{
			IntervalMs:  snap.Config.IntervalMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			Chip:        snap.Config.Chip,
			TrigPin:     snap.Config.TrigPin,
			EchoPin:     snap.Config.EchoPin,
			Simulated:   snap.Config.Simulated,
			Profile: ProfileJSON{
				Name:                   p.Name,
				UsPerCm:                p.UsPerCm,
				TrigActive:             p.TrigActive.String(),
				EchoActive:             p.EchoActive.String(),
				TrigPulseWidthUs:       p.TrigPulseWidthUs,
				TimeoutForPulseStartUs: p.TimeoutForPulseStartUs,
				MaxPulseDurationUs:     p.MaxPulseDurationUs,
			},
		},
	}

	if snap.HasLast {
		last := &LastJSON{
			Timestamp: snap.Last.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(snap.Last.Type),
			Fault:     string(snap.Last.Fault),
		}
		if snap.Last.Valid() {
			d := snap.Last.DistanceCm
			last.DistanceCm = &d
		}
		inner.Last = last
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
