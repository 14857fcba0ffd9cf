package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultMaxDelay = 2 * time.Second
	defaultDelay    = 100 * time.Millisecond
)

type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"100ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"2s"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"0s"` // overall budget, 0 disables
}

// ToRetryOptions converts the config to retry-go options. Zero attempts means a single try,
// never retry-go's unlimited mode.
func (rc *RetryConfig) ToRetryOptions() []retry.Option {
	return []retry.Option{
		retry.Attempts(max(rc.Attempts, 1)),
		retry.MaxDelay(rc.MaxDelay),
		retry.Delay(rc.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}
}

// WithBudget bounds ctx by Timeout when one is configured
func (rc *RetryConfig) WithBudget(ctx context.Context) (context.Context, context.CancelFunc) {
	if rc.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, rc.Timeout)
}

// Do runs fn under the configured policy. Errors marked with retry.Unrecoverable stop immediately.
func (rc *RetryConfig) Do(ctx context.Context, fn func(ctx context.Context) error, opts ...retry.Option) error {
	ctx, cancel := rc.WithBudget(ctx)
	defer cancel()

	options := append(rc.ToRetryOptions(), retry.Context(ctx))
	options = append(options, opts...)
	return retry.Do(func() error { return fn(ctx) }, options...)
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}
