package clock

import (
	"math"
	"testing"
)

func TestSinceAcrossWrap(t *testing.T) {
	start := uint32(math.MaxUint32 - 99)
	now := uint32(200)

	if got := Since(start, now); got != 300 {
		t.Errorf("Since across wrap: got %d, want 300", got)
	}
}

func TestFakeStep(t *testing.T) {
	f := NewFake(10)
	f.Step = 5

	if got := f.NowMicros(); got != 10 {
		t.Errorf("first read: got %d, want 10", got)
	}
	if got := f.NowMicros(); got != 15 {
		t.Errorf("second read: got %d, want 15", got)
	}
}

func TestFakeDelay(t *testing.T) {
	f := NewFake(0)
	f.DelayMicros(10)
	f.DelayMicros(1)

	if f.Now != 11 {
		t.Errorf("Now after delays: got %d, want 11", f.Now)
	}
	if len(f.Delays) != 2 || f.Delays[0] != 10 || f.Delays[1] != 1 {
		t.Errorf("unexpected delays: %v", f.Delays)
	}
}

func TestRealDelay(t *testing.T) {
	c := NewReal()
	start := c.NowMicros()
	c.DelayMicros(50)

	if elapsed := Since(start, c.NowMicros()); elapsed < 50 {
		t.Errorf("DelayMicros(50) returned after %dus", elapsed)
	}
}
