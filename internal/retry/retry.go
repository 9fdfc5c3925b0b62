// Package retry builds exponential back-off policies for the collector's
// outbound calls and its session restart loop.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config contains tunables for exponential back-off. Zero intervals and a
// multiplier below 1 take the values from DefaultConfig.
type Config struct {
	InitialInterval     time.Duration `yaml:"initial_interval"`
	MaxInterval         time.Duration `yaml:"max_interval"`
	Multiplier          float64       `yaml:"multiplier"`
	RandomizationFactor float64       `yaml:"randomization_factor"`
	MaxElapsedTime      time.Duration `yaml:"max_elapsed_time"` // 0 = no limit
	MaxRetries          uint64        `yaml:"max_retries"`      // 0 = no limit
}

// DefaultConfig returns the defaults.
func DefaultConfig() Config {
	return Config{
		InitialInterval:     time.Second,
		MaxInterval:         time.Minute,
		Multiplier:          2,
		RandomizationFactor: 0.5,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.InitialInterval <= 0 {
		c.InitialInterval = d.InitialInterval
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = d.MaxInterval
	}
	if c.Multiplier < 1 {
		c.Multiplier = d.Multiplier
	}
	if c.RandomizationFactor < 0 || c.RandomizationFactor > 1 {
		c.RandomizationFactor = d.RandomizationFactor
	}
	return c
}

// NewBackOff returns a fresh policy. Callers that drive their own loop use
// NextBackOff and Reset directly.
func (c Config) NewBackOff() backoff.BackOff {
	c = c.withDefaults()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.InitialInterval
	bo.MaxInterval = c.MaxInterval
	bo.Multiplier = c.Multiplier
	bo.RandomizationFactor = c.RandomizationFactor
	bo.MaxElapsedTime = c.MaxElapsedTime
	bo.Reset()

	if c.MaxRetries > 0 {
		return backoff.WithMaxRetries(bo, c.MaxRetries)
	}
	return bo
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error { return backoff.Permanent(err) }

// Do runs fn until it succeeds, returns a Permanent error, ctx ends or the
// policy gives up. The last error is returned wrapped.
func Do(ctx context.Context, cfg Config, logger *slog.Logger, op string, fn func(ctx context.Context) error) error {
	if logger == nil {
		logger = slog.Default()
	}

	attempts := 0
	operation := func() error {
		attempts++
		return fn(ctx)
	}
	notify := func(err error, delay time.Duration) {
		logger.Warn("retrying", "op", op, "attempt", attempts, "delay", delay, "error", err)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(cfg.NewBackOff(), ctx), notify); err != nil {
		return fmt.Errorf("%s: gave up after %d attempt(s): %w", op, attempts, err)
	}
	return nil
}

var errRunEnded = errors.New("run ended")

// Supervise calls run again each time it returns, waiting out the policy's
// delay in between. A run that lasted at least resetAfter resets the delay.
// It returns nil once ctx is done, or the last run error when the policy
// gives up.
func Supervise(ctx context.Context, cfg Config, resetAfter time.Duration, logger *slog.Logger, op string, run func(ctx context.Context) error) error {
	if logger == nil {
		logger = slog.Default()
	}

	bo := cfg.NewBackOff()
	for attempt := 1; ; attempt++ {
		started := time.Now()
		err := run(ctx)
		if ctx.Err() != nil {
			return nil
		}

		if resetAfter > 0 && time.Since(started) >= resetAfter {
			bo.Reset()
		}
		delay := bo.NextBackOff()
		if delay == backoff.Stop {
			if err == nil {
				err = errRunEnded
			}
			return fmt.Errorf("%s: gave up after %d run(s): %w", op, attempt, err)
		}

		logger.Warn("restarting", "op", op, "run", attempt, "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}
