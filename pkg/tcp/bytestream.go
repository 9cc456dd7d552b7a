package tcp

// ByteStream is a bounded FIFO of octets coupling a producer and a consumer
// with flow-control accounting. Capacity is fixed at construction.
type ByteStream struct {
	buf      []byte
	capacity int
	closed   bool
	pushed   uint64
	popped   uint64
}

// NewByteStream returns an empty, open ByteStream of the given capacity.
func NewByteStream(capacity int) *ByteStream {
	return &ByteStream{capacity: capacity}
}

// Push admits the longest prefix of data that fits in the remaining
// capacity and silently discards the rest. It is a no-op once closed.
// Returns the number of bytes actually admitted.
func (s *ByteStream) Push(data []byte) int {
	if s.closed {
		return 0
	}
	n := len(data)
	if avail := s.AvailableCapacity(); n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}
	s.buf = append(s.buf, data[:n]...)
	s.pushed += uint64(n)
	return n
}

// PushString is a convenience wrapper around Push for test/demo code.
func (s *ByteStream) PushString(content string) int {
	return s.Push([]byte(content))
}

// Pop removes min(n, Len()) bytes from the front of the stream.
func (s *ByteStream) Pop(n int) []byte {
	if n > len(s.buf) {
		n = len(s.buf)
	}
	if n == 0 {
		return nil
	}
	out := append([]byte(nil), s.buf[:n]...)
	s.buf = s.buf[n:]
	if len(s.buf) == 0 {
		s.buf = nil
	}
	s.popped += uint64(n)
	return out
}

// Read is an alias for Pop, matching the "pop(n)/read(n)" naming in the
// byte-stream contract.
func (s *ByteStream) Read(n int) []byte { return s.Pop(n) }

// ReadAll drains and returns every currently queued byte. It is a test and
// demo convenience, not part of the bounded-FIFO contract itself.
func (s *ByteStream) ReadAll() []byte { return s.Pop(len(s.buf)) }

// Peek returns a non-destructive view of all queued bytes.
func (s *ByteStream) Peek() []byte {
	out := make([]byte, len(s.buf))
	copy(out, s.buf)
	return out
}

// Close declares that the producer has no more bytes to push. Once set, it
// stays set.
func (s *ByteStream) Close() { s.closed = true }

// Closed reports whether Close has been called.
func (s *ByteStream) Closed() bool { return s.closed }

// Finished reports whether the stream is closed, drained, and has admitted
// at least one byte.
func (s *ByteStream) Finished() bool {
	return s.closed && len(s.buf) == 0 && s.pushed > 0
}

// AvailableCapacity reports how many more bytes Push could admit right now.
func (s *ByteStream) AvailableCapacity() int { return s.capacity - len(s.buf) }

// Len reports the number of bytes currently queued.
func (s *ByteStream) Len() int { return len(s.buf) }

// IsEmpty reports whether no bytes are currently queued.
func (s *ByteStream) IsEmpty() bool { return len(s.buf) == 0 }

// Pushed reports the total number of bytes ever admitted.
func (s *ByteStream) Pushed() uint64 { return s.pushed }

// Popped reports the total number of bytes ever removed.
func (s *ByteStream) Popped() uint64 { return s.popped }
