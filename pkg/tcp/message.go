package tcp

// SegmentMessage is a single outbound or inbound TCP segment as seen by the
// core: a sequence number, SYN/FIN flags and a payload. Named-field struct
// literals are the idiomatic way to build one; the WithXxx helpers below
// are offered only as test/demo convenience (see the "builder-style
// message construction" design note) and never change behavior based on
// the order they're chained in.
type SegmentMessage struct {
	SeqNo   Seq32
	SYN     bool
	Payload []byte
	FIN     bool
}

// SequenceLength is the amount by which this segment advances the absolute
// sequence: len(payload) + syn + fin.
func (m SegmentMessage) SequenceLength() int {
	n := len(m.Payload)
	if m.SYN {
		n++
	}
	if m.FIN {
		n++
	}
	return n
}

// NewSegment returns an empty SegmentMessage.
func NewSegment() SegmentMessage { return SegmentMessage{} }

// WithSeq sets the segment's sequence number.
func (m SegmentMessage) WithSeq(seq Seq32) SegmentMessage {
	m.SeqNo = seq
	return m
}

// WithSYN marks the segment as carrying SYN.
func (m SegmentMessage) WithSYN() SegmentMessage {
	m.SYN = true
	return m
}

// WithFIN marks the segment as carrying FIN.
func (m SegmentMessage) WithFIN() SegmentMessage {
	m.FIN = true
	return m
}

// WithPayload attaches a copy of payload to the segment.
func (m SegmentMessage) WithPayload(payload []byte) SegmentMessage {
	m.Payload = append([]byte(nil), payload...)
	return m
}

// WithString is WithPayload for string literals in tests.
func (m SegmentMessage) WithString(s string) SegmentMessage {
	return m.WithPayload([]byte(s))
}

// OptionalSeq32 is an optional wire sequence number: some inbound messages
// carry no acknowledgement.
type OptionalSeq32 struct {
	Seq   Seq32
	Valid bool
}

// AckMessage is what a receiver emits: an optional acknowledgement number
// plus the currently advertised window size.
type AckMessage struct {
	AckNo      OptionalSeq32
	WindowSize uint16
}

// NewAck returns an AckMessage with no ack number set.
func NewAck() AckMessage { return AckMessage{} }

// WithAck sets the acknowledgement number.
func (m AckMessage) WithAck(seq Seq32) AckMessage {
	m.AckNo = OptionalSeq32{Seq: seq, Valid: true}
	return m
}

// WithWindowSize sets the advertised window size.
func (m AckMessage) WithWindowSize(w uint16) AckMessage {
	m.WindowSize = w
	return m
}
