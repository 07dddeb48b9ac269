package protocol

// Sequencer supplies the two message-id bytes embedded in every outgoing
// frame. It is a plain 16-bit counter: Next returns the current value split
// big-endian and then increments, wrapping at 65536.
//
// A Sequencer is scoped to one device session and performs no locking. If a
// session is driven from multiple goroutines the caller must serialize access;
// internal/device.Session does exactly that.
type Sequencer struct {
	counter uint16
}

// NewSequencer returns a Sequencer starting at the given value. Devices do
// not care where the sequence starts, only that it moves; sessions start at 0.
func NewSequencer(start uint16) *Sequencer {
	return &Sequencer{counter: start}
}

// Next returns the current counter value as a big-endian byte pair and
// advances the counter.
func (s *Sequencer) Next() (hi, lo byte) {
	v := s.counter
	s.counter++ // uint16 arithmetic wraps at 65536 on its own
	return byte(v >> 8), byte(v)
}

// Current returns the value the next call to Next will emit.
func (s *Sequencer) Current() uint16 {
	return s.counter
}
