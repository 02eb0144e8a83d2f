package urm

import "context"

// Measure runs one complete measurement and returns the distance in
// centimetres, or InvalidDistance on failure. It busy-waits on
// FinishedMeasure; the worst case is roughly TrigPulseWidthUs +
// TimeoutForPulseStartUs + MaxPulseDurationUs.
func (s *Sensor) Measure() uint32 {
	s.Start()
	for !s.FinishedMeasure() {
	}
	return s.MeasuredDistance()
}

// MeasureContext is Measure with cancellation. If ctx is done before the
// measurement finishes the sensor is interrupted and ctx.Err() returned.
func (s *Sensor) MeasureContext(ctx context.Context) (uint32, error) {
	s.Start()
	for !s.FinishedMeasure() {
		select {
		case <-ctx.Done():
			s.Interrupt()
			return InvalidDistance, ctx.Err()
		default:
		}
	}
	return s.MeasuredDistance(), nil
}
