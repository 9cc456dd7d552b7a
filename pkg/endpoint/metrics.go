package endpoint

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the small observability surface wired into the event loop:
// retransmission counts, in-flight bytes and totals moved in each direction.
// None of it feeds back into the core's behavior (no congestion control),
// it's read-only ambient telemetry.
type Metrics struct {
	retransmissions prometheus.Counter
	seqInFlight     prometheus.Gauge
	bytesSent       prometheus.Counter
	bytesReceived   prometheus.Counter
}

// NewMetrics builds a Metrics instance labeled by connID and, if reg is
// non-nil, registers it there. Passing a nil registerer is fine for tests
// that don't care about the Prometheus surface.
func NewMetrics(reg prometheus.Registerer, connID string) *Metrics {
	labels := prometheus.Labels{"conn_id": connID}
	m := &Metrics{
		retransmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "tcpcore_retransmissions_total",
			Help:        "Segments retransmitted after an RTO expired.",
			ConstLabels: labels,
		}),
		seqInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "tcpcore_seq_in_flight",
			Help:        "Sequence numbers currently outstanding, unacknowledged.",
			ConstLabels: labels,
		}),
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "tcpcore_bytes_sent_total",
			Help:        "Payload bytes in segments handed to the transport, retransmissions included.",
			ConstLabels: labels,
		}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "tcpcore_bytes_received_total",
			Help:        "Payload bytes carried by inbound segments, duplicates and dropped segments included.",
			ConstLabels: labels,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.retransmissions, m.seqInFlight, m.bytesSent, m.bytesReceived)
	}
	return m
}
