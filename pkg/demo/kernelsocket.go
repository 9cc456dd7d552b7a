// Package demo bridges a TCPEndpoint to a real net.Conn obtained from the
// kernel's own TCP stack. The core has no raw-IP datapath or wire framing of
// its own, so this is the far side of a loopback harness: it proves
// pkg/endpoint can drive a real socket end to end.
package demo

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/datawire/dlib/dgroup"
	"github.com/datawire/dlib/dlog"

	"github.com/0xinfinitykernel/tcpcore/pkg/endpoint"
)

// pollInterval is how often the kernel-socket side checks the endpoint's
// inbound stream for freshly-reassembled bytes to forward. The endpoint's
// own tick loop is what actually moves data; this just drains it.
const pollInterval = 5 * time.Millisecond

// Pump copies bytes in both directions between ep and conn and returns once
// both directions have stopped. The ep-to-conn direction stops when ctx is
// cancelled or ep.Inbound() finishes (half-closing conn); the conn-to-ep
// direction stops when a read from conn fails (EOF included, which closes
// ep.Outbound()) or, between reads, when ctx is cancelled. One direction
// finishing without an error does not stop the other. ep.Inbound() is
// assumed to be what a peer endpoint reassembles into; everything read off
// it is written to conn, and everything read from conn is pushed onto
// ep.Outbound() for ep's own Sender to segment back to that peer.
func Pump(ctx context.Context, ep *endpoint.TCPEndpoint, conn net.Conn) error {
	g := dgroup.NewGroup(ctx, dgroup.GroupConfig{})
	g.Go("to-conn", func(ctx context.Context) error { return pumpToConn(ctx, ep, conn) })
	g.Go("from-conn", func(ctx context.Context) error { return pumpFromConn(ctx, ep, conn) })
	return g.Wait()
}

func pumpToConn(ctx context.Context, ep *endpoint.TCPEndpoint, conn net.Conn) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			in := ep.Inbound()
			if b := in.ReadAll(); len(b) > 0 {
				if _, err := conn.Write(b); err != nil {
					return err
				}
			}
			if in.Finished() {
				dlog.Debugf(ctx, "CON %s: peer closed, half-closing kernel socket", ep.ID())
				if cw, ok := conn.(interface{ CloseWrite() error }); ok {
					return cw.CloseWrite()
				}
				return nil
			}
		}
	}
}

func pumpFromConn(ctx context.Context, ep *endpoint.TCPEndpoint, conn net.Conn) error {
	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		n, err := conn.Read(buf)
		if n > 0 {
			ep.Outbound().Push(buf[:n])
		}
		if err != nil {
			ep.Outbound().Close()
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
