package transport

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/4x0/hioctl/logger"
)

// Default timeout values for the instrument link.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultQueryTimeout   = 10 * time.Second
	DefaultCloseTimeout   = 3 * time.Second

	DefaultBatchPrealloc = 8
)

// Timeout range limits. Queries against a triggered instrument can wait the
// full trigger window, so the upper bound is generous.
const (
	MinConnectTimeout = 100 * time.Millisecond
	MaxConnectTimeout = 60 * time.Second

	MinQueryTimeout = 100 * time.Millisecond
	MaxQueryTimeout = 10 * time.Minute
)

// Config holds all configuration for an instrument connection.
type Config struct {
	host string
	port int

	connectTimeout time.Duration
	queryTimeout   time.Duration
	closeTimeout   time.Duration

	batchPrealloc int

	logger logger.Logger
}

// NewConfig creates a connection configuration for the instrument at
// host:port.
//
// opts are functional options applied in order; see With* functions.
func NewConfig(host string, port int, opts ...Option) (*Config, error) {
	cfg := &Config{
		connectTimeout: DefaultConnectTimeout,
		queryTimeout:   DefaultQueryTimeout,
		closeTimeout:   DefaultCloseTimeout,
		batchPrealloc:  DefaultBatchPrealloc,
		logger:         logger.GetLogger(),
	}

	if err := cfg.setHost(host); err != nil {
		return nil, err
	}
	if err := cfg.setPort(port); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (cfg *Config) setHost(host string) error {
	if ip := net.ParseIP(host); ip != nil {
		cfg.host = host
		return nil
	}

	host = strings.TrimPrefix(host, ".")
	host = strings.TrimSuffix(host, ".")
	if host != "" && !strings.ContainsAny(host, " \t") {
		cfg.host = host
		return nil
	}

	return fmt.Errorf("transport: invalid host %q", host)
}

func (cfg *Config) setPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("transport: port %d out of range [1, 65535]", port)
	}
	cfg.port = port

	return nil
}

// --- Getters ---

// Host returns the configured host address.
func (cfg *Config) Host() string { return cfg.host }

// Port returns the configured TCP port.
func (cfg *Config) Port() int { return cfg.port }

// Addr returns "host:port".
func (cfg *Config) Addr() string { return net.JoinHostPort(cfg.host, fmt.Sprintf("%d", cfg.port)) }

// ConnectTimeout returns the TCP dial timeout.
func (cfg *Config) ConnectTimeout() time.Duration { return cfg.connectTimeout }

// QueryTimeout returns the default response-line timeout for queries.
func (cfg *Config) QueryTimeout() time.Duration { return cfg.queryTimeout }

// CloseTimeout returns the timeout for the final flush during Close.
func (cfg *Config) CloseTimeout() time.Duration { return cfg.closeTimeout }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// --- Option ---

// Option is a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithConnectTimeout sets the TCP dial timeout.
func WithConnectTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinConnectTimeout || d > MaxConnectTimeout {
			return fmt.Errorf("transport: connect timeout %v out of range [%v, %v]", d, MinConnectTimeout, MaxConnectTimeout)
		}
		cfg.connectTimeout = d

		return nil
	})
}

// WithQueryTimeout sets the default response-line timeout for queries.
func WithQueryTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinQueryTimeout || d > MaxQueryTimeout {
			return fmt.Errorf("transport: query timeout %v out of range [%v, %v]", d, MinQueryTimeout, MaxQueryTimeout)
		}
		cfg.queryTimeout = d

		return nil
	})
}

// WithCloseTimeout sets the timeout for the final flush during Close.
func WithCloseTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return fmt.Errorf("transport: close timeout %v must be positive", d)
		}
		cfg.closeTimeout = d

		return nil
	})
}

// WithBatchPrealloc sets the preallocated capacity of the command batch.
func WithBatchPrealloc(n int) Option {
	return optFunc(func(cfg *Config) error {
		if n < 0 {
			return fmt.Errorf("transport: batch prealloc %d must be non-negative", n)
		}
		cfg.batchPrealloc = n

		return nil
	})
}

// WithLogger sets the logger used by the client.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return fmt.Errorf("transport: logger is nil")
		}
		cfg.logger = l

		return nil
	})
}
