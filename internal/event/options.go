package event

import (
	"time"

	"github.com/dshills/portfolio/internal/logging"
	"github.com/dshills/portfolio/internal/metrics"
)

// Option configures a Bus.
type Option func(*busConfig)

type busConfig struct {
	logger  logging.Logger
	metrics metrics.Collector
	now     func() time.Time
}

func defaultBusConfig() busConfig {
	return busConfig{
		logger:  logging.Discard(),
		metrics: metrics.Nop{},
		now:     time.Now,
	}
}

// WithLogger sets the logger used to report listener faults.
func WithLogger(l logging.Logger) Option {
	return func(c *busConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m metrics.Collector) Option {
	return func(c *busConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithClock overrides the envelope timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *busConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// EmitOption configures a single Emit call.
type EmitOption func(*emitConfig)

type emitConfig struct {
	source string
}

// WithSource tags the envelope with its emitter.
func WithSource(source string) EmitOption {
	return func(c *emitConfig) {
		c.source = source
	}
}
