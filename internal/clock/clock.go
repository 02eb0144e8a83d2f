// Package clock provides the microsecond time source used by the sensor
// state machine. Timestamps are 32-bit and wrap after roughly 71 minutes;
// durations must always be computed as now-start on uint32 values.
package clock

import "time"

// Clock is a monotonic microsecond time source.
type Clock interface {
	// NowMicros returns the current monotonic timestamp in microseconds,
	// truncated to 32 bits.
	NowMicros() uint32

	// DelayMicros blocks for at least us microseconds.
	DelayMicros(us uint32)
}

// Since returns the wrap-safe number of microseconds elapsed from start to now.
func Since(start, now uint32) uint32 {
	return now - start
}

// Real is a Clock backed by the Go runtime's monotonic clock.
type Real struct {
	epoch time.Time
}

// NewReal creates a Real clock whose zero is the moment of the call.
func NewReal() *Real {
	return &Real{epoch: time.Now()}
}

// NowMicros returns microseconds since the clock was created, modulo 2^32.
func (c *Real) NowMicros() uint32 {
	return uint32(time.Since(c.epoch).Microseconds())
}

// DelayMicros spins until us microseconds have passed.
// time.Sleep overshoots by tens of microseconds on most kernels, which is
// longer than a whole HC-SR04 trigger pulse.
func (c *Real) DelayMicros(us uint32) {
	start := c.NowMicros()
	for Since(start, c.NowMicros()) < us {
	}
}
