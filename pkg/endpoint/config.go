package endpoint

import (
	"context"
	"math/rand"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/0xinfinitykernel/tcpcore/pkg/tcp"
)

// Config is the connection-level configuration surface: retransmission
// timeout, the two ByteStream capacities, and an optional fixed ISN for
// reproducible tests/demos. Environment overrides layer onto the struct tag
// defaults via go-envconfig.
type Config struct {
	RTTimeoutMs  uint64        `env:"TCPCORE_RT_TIMEOUT_MS,default=1000"`
	RecvCapacity int           `env:"TCPCORE_RECV_CAPACITY,default=64000"`
	SendCapacity int           `env:"TCPCORE_SEND_CAPACITY,default=64000"`
	FixedISN     *uint32       `env:"TCPCORE_FIXED_ISN,noinit"`
	TickInterval time.Duration `env:"TCPCORE_TICK_INTERVAL,default=100ms"`
}

// LoadConfig reads Config from the process environment, falling back to the
// struct tag defaults for anything unset.
func LoadConfig(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig returns a Config with the same defaults LoadConfig would
// produce against an empty environment, for callers that don't need env
// overrides (tests, the demo CLI's non-flag path).
func DefaultConfig() Config {
	return Config{
		RTTimeoutMs:  tcp.DefaultTimeoutRTMs,
		RecvCapacity: tcp.DefaultCapacity,
		SendCapacity: tcp.DefaultCapacity,
		TickInterval: 100 * time.Millisecond,
	}
}

func (c Config) isn() tcp.Seq32 {
	if c.FixedISN != nil {
		return tcp.Seq32(*c.FixedISN)
	}
	return tcp.Seq32(rand.Uint32())
}
