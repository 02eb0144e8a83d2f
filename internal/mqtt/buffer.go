package mqtt

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO that holds messages while the broker
// is unreachable. When full the oldest message is overwritten.
// Not safe for concurrent use; RealPublisher guards it with its mutex.
type ringBuffer struct {
	buf     []bufferedMsg
	next    int // slot for the next push
	count   int
	dropped int // overwritten since the last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{buf: make([]bufferedMsg, capacity)}
}

// push stores msg and reports whether an older message was overwritten.
func (r *ringBuffer) push(msg bufferedMsg) bool {
	overwrote := r.count == len(r.buf)
	r.buf[r.next] = msg
	r.next = (r.next + 1) % len(r.buf)
	if overwrote {
		r.dropped++
	} else {
		r.count++
	}
	return overwrote
}

// drain returns the buffered messages oldest first, plus how many were
// dropped, and empties the buffer.
func (r *ringBuffer) drain() ([]bufferedMsg, int) {
	dropped := r.dropped
	r.dropped = 0
	if r.count == 0 {
		return nil, dropped
	}

	out := make([]bufferedMsg, 0, r.count)
	oldest := (r.next - r.count + len(r.buf)) % len(r.buf)
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(oldest+i)%len(r.buf)])
	}

	r.next = 0
	r.count = 0
	return out, dropped
}

func (r *ringBuffer) len() int {
	return r.count
}
