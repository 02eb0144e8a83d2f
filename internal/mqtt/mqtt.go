// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/rangefinder/internal/logic"
)

// Topic is the MQTT topic for measurement events.
const Topic = "sensor/rangefinder/readings"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "sensor/rangefinder/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a measurement event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Rangefinder ReadingPayload `json:"rangefinder"`
}

// ReadingPayload contains the measurement details. DistanceCm and PulseUs
// are absent for faults; Fault and ConsecutiveFailures are absent for
// readings.
type ReadingPayload struct {
	Timestamp           string  `json:"timestamp"`
	Event               string  `json:"event"`
	DistanceCm          *uint32 `json:"distance_cm,omitempty"`
	PulseUs             *uint32 `json:"pulse_us,omitempty"`
	Fault               string  `json:"fault,omitempty"`
	ConsecutiveFailures int     `json:"consecutive_failures,omitempty"`
}

// FormatPayload creates the JSON payload for a measurement event.
func FormatPayload(event logic.Event) ([]byte, error) {
	rp := ReadingPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     string(event.Type),
	}
	if event.Valid() {
		d, p := event.DistanceCm, event.PulseUs
		rp.DistanceCm = &d
		rp.PulseUs = &p
	} else {
		rp.Fault = string(event.Fault)
		rp.ConsecutiveFailures = event.Consecutive
	}
	return json.Marshal(Payload{Rangefinder: rp})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
