// Command tcpfetch is a minimal wget-alike that drives an HTTP GET over
// this module's own TCPEndpoint instead of the standard library's net.Conn
// for the client-to-local hop, proving the core end to end.
package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/datawire/dlib/dlog"
	"github.com/miekg/dns"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/0xinfinitykernel/tcpcore/pkg/demo"
	"github.com/0xinfinitykernel/tcpcore/pkg/endpoint"
	"github.com/0xinfinitykernel/tcpcore/pkg/tcp"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var resolver string
	cmd := &cobra.Command{
		Use:   "tcpfetch <url>",
		Short: "Fetch an HTTP/1.1 resource over the module's own TCPEndpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetch(cmd.Context(), args[0], resolver)
		},
	}
	cmd.Flags().StringVar(&resolver, "resolver", "8.8.8.8:53", "DNS resolver used for host lookups")
	return cmd
}

func fetch(ctx context.Context, rawURL, resolver string) error {
	ctx = dlog.WithLogger(ctx, dlog.WrapLogrus(logrus.StandardLogger()))

	u, err := url.Parse(rawURL)
	if err != nil {
		return errors.Wrapf(err, "parsing %q", rawURL)
	}
	if u.Scheme != "http" {
		dlog.Warnf(ctx, "scheme %q is not http, trying http anyway", u.Scheme)
	}
	host := u.Hostname()
	path := u.Path
	if path == "" {
		path = "/"
	}

	ip, err := lookupHost(ctx, host, resolver)
	if err != nil {
		return errors.Wrapf(err, "resolving %q", host)
	}
	addr := net.JoinHostPort(ip.String(), "80")

	dlog.Debugf(ctx, "connecting to %s (%s)", addr, host)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "dialing %s", addr)
	}
	defer conn.Close()

	body, err := fetchOverEndpoint(ctx, conn, host, path)
	if err != nil {
		return err
	}
	fmt.Println(body)
	return nil
}

// fetchOverEndpoint wires a client TCPEndpoint to a proxy TCPEndpoint that
// pkg/demo.Pump bridges to conn (the real kernel socket to the target host),
// writes the HTTP request through the client's Sender, and reads the
// response back out of the client's Reassembler.
func fetchOverEndpoint(ctx context.Context, conn net.Conn, host, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientTr := &loopback{}
	proxyTr := &loopback{}
	client := endpoint.New(endpoint.DefaultConfig(), clientTr, nil)
	proxy := endpoint.New(endpoint.DefaultConfig(), proxyTr, nil)
	clientTr.peer = proxy
	proxyTr.peer = client

	go func() { _ = client.Run(ctx) }()
	go func() { _ = proxy.Run(ctx) }()
	go func() { _ = demo.Pump(ctx, proxy, conn) }()

	request := fmt.Sprintf("GET %s HTTP/1.1\r\nHost: %s\r\nConnection: close\r\n\r\n", path, host)
	client.Outbound().PushString(request)
	client.Close()

	var body []byte
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return string(body), errors.New("timed out waiting for response")
		case <-ticker.C:
			body = append(body, client.Inbound().ReadAll()...)
			if client.Inbound().Finished() {
				return string(body), nil
			}
		}
	}
}

// loopback delivers one endpoint's outbound segments directly to its peer's
// inbound handler, the way two TCPEndpoints talking across an in-process
// pipe would.
type loopback struct {
	peer *endpoint.TCPEndpoint
}

func (lb *loopback) SendSegment(ctx context.Context, seg tcp.SegmentMessage, ack tcp.AckMessage) error {
	lb.peer.HandleInbound(ctx, seg, ack)
	return nil
}

func lookupHost(ctx context.Context, host, resolver string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip, nil
	}
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), dns.TypeA)
	c := new(dns.Client)
	in, _, err := c.ExchangeContext(ctx, msg, resolver)
	if err != nil {
		return nil, err
	}
	for _, rr := range in.Answer {
		if a, ok := rr.(*dns.A); ok {
			return a.A, nil
		}
	}
	return nil, errors.Errorf("no A record found for %s", host)
}
