// Package endpoint drives one tcp.Sender and one tcp.Receiver from a single
// per-connection event loop: a periodic tick that segments new application
// bytes, retransmits expired outstanding ones, and hands the result to a
// Transport; plus an inbound path that feeds arriving segments into the
// receiver side and their acknowledgements into the sender, which retires
// the acknowledged segments.
package endpoint

import (
	"context"
	"sync"
	"time"

	"github.com/datawire/dlib/derror"
	"github.com/datawire/dlib/dgroup"
	"github.com/datawire/dlib/dlog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/0xinfinitykernel/tcpcore/pkg/tcp"
)

// Transport is how a TCPEndpoint emits the segments its Sender and Receiver
// produce. A loopback pipe, a real socket shim, or a test double can all
// implement it; the core package never depends on this interface.
//
//go:generate mockgen -destination=mocks/mock_transport.go -package=mocks . Transport
type Transport interface {
	SendSegment(ctx context.Context, seg tcp.SegmentMessage, ack tcp.AckMessage) error
}

// TCPEndpoint owns one connection's worth of core state: a Sender, a
// Receiver, their two ByteStreams, and the Reassembler that feeds the
// receive-side stream. It is safe for concurrent use; HandleInbound and the
// tick loop share one sync.Mutex per connection.
type TCPEndpoint struct {
	id  string
	cfg Config
	tr  Transport

	mx          sync.Mutex
	sender      *tcp.Sender
	receiver    *tcp.Receiver
	reassembler *tcp.Reassembler
	outbound    *tcp.ByteStream
	inbound     *tcp.ByteStream
	ackPending  bool

	metrics *Metrics
}

// New builds a TCPEndpoint. reg may be nil to skip Prometheus registration.
func New(cfg Config, tr Transport, reg prometheus.Registerer) *TCPEndpoint {
	id := uuid.NewString()
	return &TCPEndpoint{
		id:          id,
		cfg:         cfg,
		tr:          tr,
		sender:      tcp.NewSender(cfg.isn(), cfg.RTTimeoutMs),
		receiver:    tcp.NewReceiver(),
		reassembler: tcp.NewReassembler(),
		outbound:    tcp.NewByteStream(cfg.SendCapacity),
		inbound:     tcp.NewByteStream(cfg.RecvCapacity),
		metrics:     NewMetrics(reg, id),
	}
}

// ID is the connection's log/metric label.
func (e *TCPEndpoint) ID() string { return e.id }

// Outbound is the stream the application writes request bytes into; the
// Sender drains it on every tick.
func (e *TCPEndpoint) Outbound() *tcp.ByteStream { return e.outbound }

// Inbound is the stream the application reads response bytes from; the
// Reassembler fills it as in-order segments arrive.
func (e *TCPEndpoint) Inbound() *tcp.ByteStream { return e.inbound }

// Run starts the tick loop and blocks until ctx is cancelled or the loop
// gives up after more than tcp.MaxRetryAttempt consecutive retransmissions,
// in which case it returns that error. One goroutine
// is enough; retransmission and fresh segmentation share the same clock, so
// a single pump covers both.
func (e *TCPEndpoint) Run(ctx context.Context) error {
	g := dgroup.NewGroup(ctx, dgroup.GroupConfig{})
	g.Go("pump", e.pump)
	return g.Wait()
}

func (e *TCPEndpoint) pump(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = derror.PanicToError(r)
			dlog.Errorf(ctx, "CON %s: %+v", e.id, err)
		}
	}()

	interval := e.cfg.TickInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			dlog.Debugf(ctx, "CON %s: context done", e.id)
			return nil
		case now := <-ticker.C:
			elapsed := uint64(now.Sub(last).Milliseconds())
			last = now
			if err := e.tick(ctx, elapsed); err != nil {
				return err
			}
		}
	}
}

type outgoing struct {
	seg tcp.SegmentMessage
	ack tcp.AckMessage
}

// tick advances the retransmission clock, segments any newly-written
// application bytes, and flushes whatever the Sender now has ready. Segments
// are collected under the lock and handed to the Transport after it is
// released; a Transport that delivers straight into a peer endpoint (the
// loopback case) would otherwise have to take two endpoint mutexes at once.
func (e *TCPEndpoint) tick(ctx context.Context, elapsedMs uint64) error {
	out, err := e.advance(elapsedMs)
	if err != nil {
		return err
	}
	for _, o := range out {
		if err := e.tr.SendSegment(ctx, o.seg, o.ack); err != nil {
			dlog.Errorf(ctx, "CON %s: send failed: %v", e.id, err)
		}
	}
	return nil
}

func (e *TCPEndpoint) advance(elapsedMs uint64) ([]outgoing, error) {
	e.mx.Lock()
	defer e.mx.Unlock()

	before := e.sender.ConsecutiveRetransmissions()
	e.sender.Tick(elapsedMs)
	if delta := e.sender.ConsecutiveRetransmissions() - before; delta > 0 {
		e.metrics.retransmissions.Add(float64(delta))
	}
	if e.sender.ConsecutiveRetransmissions() > tcp.MaxRetryAttempt {
		return nil, errors.Errorf("CON %s: giving up after %d consecutive retransmissions", e.id, e.sender.ConsecutiveRetransmissions())
	}

	e.sender.Push(e.outbound)
	e.metrics.seqInFlight.Set(float64(e.sender.SeqInFlight()))

	var out []outgoing
	for {
		seg, ok := e.sender.TrySend()
		if !ok {
			break
		}
		e.metrics.bytesSent.Add(float64(len(seg.Payload)))
		out = append(out, outgoing{seg: seg, ack: e.receiver.Send(e.inbound)})
	}
	if len(out) == 0 && e.ackPending {
		// Nothing outbound is carrying the acknowledgement, so emit a
		// sequence-length-0 keepalive. It never enters the retransmission
		// queue, and receiving one does not set ackPending on the peer, so
		// two idle endpoints cannot ack-ping-pong forever.
		out = append(out, outgoing{seg: e.sender.SendEmptyMessage(), ack: e.receiver.Send(e.inbound)})
	}
	e.ackPending = false
	return out, nil
}

// HandleInbound processes one arriving segment together with the piggybacked
// ack/window the peer reported, the receive half of the event loop.
func (e *TCPEndpoint) HandleInbound(ctx context.Context, seg tcp.SegmentMessage, ack tcp.AckMessage) {
	e.mx.Lock()
	defer e.mx.Unlock()

	e.sender.Receive(ack)
	e.receiver.Receive(seg, e.reassembler, e.inbound)
	if seg.SequenceLength() > 0 {
		e.ackPending = true
	}
	e.metrics.bytesReceived.Add(float64(len(seg.Payload)))
	dlog.Tracef(ctx, "CON %s: recv seq=%d len=%d syn=%t fin=%t", e.id, seg.SeqNo, len(seg.Payload), seg.SYN, seg.FIN)
}

// Close marks the outbound stream closed, which lets the Sender's next Push
// append a FIN once the outstanding data drains. It does not forcibly tear
// down the connection; there is no abort primitive at this layer.
func (e *TCPEndpoint) Close() {
	e.mx.Lock()
	defer e.mx.Unlock()
	e.outbound.Close()
}

// Finished reports whether both streams have drained and closed and no
// segments remain unacknowledged, so no further application bytes are
// expected in either direction.
func (e *TCPEndpoint) Finished() bool {
	e.mx.Lock()
	defer e.mx.Unlock()
	return e.inbound.Finished() && e.outbound.Finished() && e.sender.SeqInFlight() == 0
}
