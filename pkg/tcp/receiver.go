package tcp

// receiverState is the TCPReceiver's tiny state machine.
type receiverState int

const (
	stateAwaitingSyn receiverState = iota
	stateSynced
)

// maxWindow is the largest window size representable on the wire.
const maxWindow = 65535

// Receiver translates inbound segments into reassembler pushes and reports
// the acknowledgement number and advertised window to send back.
type Receiver struct {
	state receiverState
	isn   Seq32
}

// NewReceiver returns a Receiver in the AWAITING_SYN state.
func NewReceiver() *Receiver {
	return &Receiver{state: stateAwaitingSyn}
}

// Receive processes one inbound segment. Segments arriving before the SYN
// has been observed are dropped.
func (r *Receiver) Receive(msg SegmentMessage, reassembler *Reassembler, writer *ByteStream) {
	if r.state == stateAwaitingSyn {
		if !msg.SYN {
			return
		}
		r.isn = msg.SeqNo
		r.state = stateSynced
	}

	checkpoint := AbsoluteSeq(writer.Pushed() + 1)
	absSeq := Unwrap(msg.SeqNo, r.isn, checkpoint)

	var synAdj uint64
	if msg.SYN {
		synAdj = 1
	}
	streamIndex := uint64(absSeq) + synAdj - 1

	reassembler.Push(streamIndex, msg.Payload, msg.FIN, writer)
}

// Send reports the current acknowledgement number (absent until the SYN
// has been observed) and the advertised window.
func (r *Receiver) Send(writer *ByteStream) AckMessage {
	window := writer.AvailableCapacity()
	if window > maxWindow {
		window = maxWindow
	}
	msg := AckMessage{WindowSize: uint16(window)}
	if r.state != stateSynced {
		return msg
	}

	var closedAdj uint64
	if writer.Closed() {
		closedAdj = 1
	}
	absAckNo := writer.Pushed() + closedAdj + 1
	msg.AckNo = OptionalSeq32{Seq: Wrap(AbsoluteSeq(absAckNo), r.isn), Valid: true}
	return msg
}
