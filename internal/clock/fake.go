package clock

// Fake is a manually driven Clock for tests.
type Fake struct {
	// Now is the timestamp returned by the next NowMicros call.
	Now uint32

	// Step is added to Now after every NowMicros call. Zero freezes time
	// between explicit Set/Advance calls.
	Step uint32

	// Delays records every DelayMicros argument.
	Delays []uint32
}

// NewFake creates a Fake clock starting at now.
func NewFake(now uint32) *Fake {
	return &Fake{Now: now}
}

// NowMicros returns the current fake time and advances it by Step.
func (f *Fake) NowMicros() uint32 {
	t := f.Now
	f.Now += f.Step
	return t
}

// DelayMicros advances the fake time by us without blocking.
func (f *Fake) DelayMicros(us uint32) {
	f.Delays = append(f.Delays, us)
	f.Now += us
}

// Set moves the fake time to now.
func (f *Fake) Set(now uint32) {
	f.Now = now
}

// Advance moves the fake time forward by us.
func (f *Fake) Advance(us uint32) {
	f.Now += us
}
