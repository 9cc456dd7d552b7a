package tcp

// Constants governing segmentation and retransmission, per the connection
// configuration surface.
const (
	MaxPayloadSize     = 1000
	DefaultCapacity    = 64000
	DefaultTimeoutRTMs = uint64(1000)
	MaxRetryAttempt    = uint64(8)
)

type outstandingSegment struct {
	abs     AbsoluteSeq
	segment SegmentMessage
}

// Sender segments outbound bytes, tracks in-flight/outstanding segments
// against the peer's advertised window, and drives exponential-backoff
// retransmission from an externally ticked clock.
type Sender struct {
	isn        Seq32
	initialRTO uint64
	currentRTO uint64
	timer      uint64

	synSent bool
	finSent bool

	nextAbs          AbsoluteSeq
	advertisedWindow uint16
	seqInFlight      uint64

	outstanding []outstandingSegment
	outQueue    []SegmentMessage

	consecutiveRetx uint64
}

// NewSender returns a Sender that has not yet emitted its SYN, with the
// advertised window treated as 1 until the first ACK arrives.
func NewSender(isn Seq32, initialRTOMs uint64) *Sender {
	return &Sender{
		isn:              isn,
		initialRTO:       initialRTOMs,
		currentRTO:       initialRTOMs,
		advertisedWindow: 1,
	}
}

// NextAbsoluteSeq is the next absolute index that will be assigned to a
// newly created segment.
func (s *Sender) NextAbsoluteSeq() AbsoluteSeq { return s.nextAbs }

// NextRelativeSeq is NextAbsoluteSeq wrapped onto the wire.
func (s *Sender) NextRelativeSeq() Seq32 { return Wrap(s.nextAbs, s.isn) }

// SeqInFlight is the sum of sequence lengths of outstanding segments.
func (s *Sender) SeqInFlight() uint64 { return s.seqInFlight }

// ConsecutiveRetransmissions reports how many retransmissions have fired
// since the last processed AckMessage. Every AckMessage resets the count,
// whether or not it retires a segment, except one whose ack number lies
// beyond anything sent.
func (s *Sender) ConsecutiveRetransmissions() uint64 { return s.consecutiveRetx }

// Push segments bytes out of reader, up to the current window, queuing
// fresh segments for the wire and for the retransmission timer.
func (s *Sender) Push(reader *ByteStream) {
	window := int(s.advertisedWindow)
	if window < 1 {
		window = 1
	}

	for s.seqInFlight < uint64(window) {
		seg := SegmentMessage{SeqNo: s.NextRelativeSeq()}
		if !s.synSent {
			seg.SYN = true
			s.synSent = true
		}

		var synAdj int
		if seg.SYN {
			synAdj = 1
		}
		remaining := window - int(s.seqInFlight) - synAdj

		payloadSize := MaxPayloadSize
		if remaining < payloadSize {
			payloadSize = remaining
		}
		seg.Payload = reader.Pop(payloadSize)

		used := len(seg.Payload) + int(s.seqInFlight) + synAdj
		if !s.finSent && reader.Closed() && reader.IsEmpty() && used < window {
			seg.FIN = true
			s.finSent = true
		}

		if seg.SequenceLength() == 0 {
			break
		}

		if len(s.outstanding) == 0 {
			s.currentRTO = s.initialRTO
			s.timer = 0
		}

		s.outstanding = append(s.outstanding, outstandingSegment{abs: s.nextAbs, segment: seg})
		s.outQueue = append(s.outQueue, seg)

		length := uint64(seg.SequenceLength())
		s.nextAbs += AbsoluteSeq(length)
		s.seqInFlight += length

		if seg.FIN {
			break
		}
	}
}

// TrySend returns the next segment ready for the wire, whether freshly
// segmented or queued for retransmission. It reports false before any SYN
// has ever been produced, or when nothing is queued.
func (s *Sender) TrySend() (SegmentMessage, bool) {
	if !s.synSent || len(s.outQueue) == 0 {
		return SegmentMessage{}, false
	}
	msg := s.outQueue[0]
	s.outQueue = s.outQueue[1:]
	return msg, true
}

// SendEmptyMessage builds a sequence-length-0 segment for use as an
// ACK-only emission. It never enters the retransmission queue.
func (s *Sender) SendEmptyMessage() SegmentMessage {
	return SegmentMessage{SeqNo: s.NextRelativeSeq()}
}

// Receive processes an incoming acknowledgement and window update.
func (s *Sender) Receive(msg AckMessage) {
	s.advertisedWindow = msg.WindowSize

	if msg.AckNo.Valid {
		ackAbs := Unwrap(msg.AckNo.Seq, s.isn, s.nextAbs)
		if ackAbs > s.nextAbs {
			// An ACK for data we never sent. The window update above
			// stands, but the queue drain and retry/RTO reset are skipped.
			return
		}

		cut := 0
		for cut < len(s.outstanding) {
			os := s.outstanding[cut]
			end := AbsoluteSeq(uint64(os.abs) + uint64(os.segment.SequenceLength()))
			if end > ackAbs {
				break
			}
			cut++
		}
		if cut > 0 {
			var freed uint64
			for _, os := range s.outstanding[:cut] {
				freed += uint64(os.segment.SequenceLength())
			}
			s.outstanding = s.outstanding[cut:]
			s.seqInFlight -= freed
			s.currentRTO = s.initialRTO
			if len(s.outstanding) > 0 {
				s.timer = 0
			}
		}
	}

	s.consecutiveRetx = 0
}

// Tick advances the retransmission timer by msElapsed and, if the earliest
// outstanding segment has expired, requeues it for the wire and doubles the
// RTO (unless the advertised window is zero, which is treated as blocking
// rather than loss).
func (s *Sender) Tick(msElapsed uint64) {
	s.timer += msElapsed
	if len(s.outstanding) == 0 {
		return
	}
	if s.timer >= s.currentRTO {
		s.outQueue = append(s.outQueue, s.outstanding[0].segment)
		s.consecutiveRetx++
		s.timer = 0
		if s.advertisedWindow > 0 {
			s.currentRTO *= 2
		}
	}
}
