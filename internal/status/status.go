// Package status provides a thread-safe status tracker for the rangefinder
// daemon. It is written by the run loop and read by HTTP handlers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/rangefinder/internal/logic"
	"github.com/sweeney/rangefinder/internal/urm"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	IntervalMs  int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	Chip        string
	TrigPin     int
	EchoPin     int
	Simulated   bool
	Profile     urm.Profile
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State               urm.State
	Last                logic.Event
	HasLast             bool
	Counts              logic.Counts
	ConsecutiveFailures int
	StartTime           time.Time
	Now                 time.Time
	MQTTConnected       bool
	Network             *NetworkInfo
	Config              Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     urm.StateIdle,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records the outcome of a measurement cycle.
// Called from the run loop after every measurement.
func (t *Tracker) Update(state urm.State, last logic.Event, counts logic.Counts, consecutive int) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Last = last
	t.snap.HasLast = true
	t.snap.Counts = counts
	t.snap.ConsecutiveFailures = consecutive
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
