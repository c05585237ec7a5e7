package state

import (
	"time"

	"github.com/dshills/portfolio/internal/logging"
	"github.com/dshills/portfolio/internal/metrics"
)

// DefaultHistorySize is the history capacity used when none is configured.
const DefaultHistorySize = 50

// Option configures a Store.
type Option func(*storeConfig)

type storeConfig struct {
	logger      logging.Logger
	metrics     metrics.Collector
	historySize int
	now         func() time.Time
}

func defaultStoreConfig() storeConfig {
	return storeConfig{
		logger:      logging.Discard(),
		metrics:     metrics.Nop{},
		historySize: DefaultHistorySize,
		now:         time.Now,
	}
}

// WithLogger sets the logger used to report subscriber faults.
func WithLogger(l logging.Logger) Option {
	return func(c *storeConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m metrics.Collector) Option {
	return func(c *storeConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithHistorySize sets the maximum number of history entries.
func WithHistorySize(n int) Option {
	return func(c *storeConfig) {
		if n > 0 {
			c.historySize = n
		}
	}
}

// WithClock overrides the history timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *storeConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// SetOption configures a single write.
type SetOption func(*setConfig)

type setConfig struct {
	silent bool
}

// Silent suppresses subscriber notification for the write.
func Silent() SetOption {
	return func(c *setConfig) {
		c.silent = true
	}
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*subscribeConfig)

type subscribeConfig struct {
	immediate bool
	once      bool
}

// Immediate controls whether the observer is called with the current value
// at subscribe time. The default is true.
func Immediate(enabled bool) SubscribeOption {
	return func(c *subscribeConfig) {
		c.immediate = enabled
	}
}

// Once removes the subscription after its first change notification.
// The immediate call does not count.
func Once() SubscribeOption {
	return func(c *subscribeConfig) {
		c.once = true
	}
}
