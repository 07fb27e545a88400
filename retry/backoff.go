// Package retry provides backoff strategies for reconnect and watch loops.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy returns the delay before the given attempt (1-based)
type BackoffStrategy interface {
	Next(attempt int) time.Duration
}

type backoffConfig struct {
	multiplier float64
	maxDelay   time.Duration
	jitter     float64
}

func defaultBackoffConfig() *backoffConfig {
	return &backoffConfig{
		multiplier: 2.0,
		maxDelay:   30 * time.Second,
	}
}

// BackoffOption tunes a strategy
type BackoffOption func(*backoffConfig)

// WithMultiplier sets the growth factor of ExponentialBackoff. Values <= 1 are ignored.
func WithMultiplier(m float64) BackoffOption {
	return func(c *backoffConfig) {
		if m > 1 {
			c.multiplier = m
		}
	}
}

// WithMaxDelay caps every delay
func WithMaxDelay(d time.Duration) BackoffOption {
	return func(c *backoffConfig) {
		if d > 0 {
			c.maxDelay = d
		}
	}
}

// WithJitter randomizes each delay within ±j of its value, j in [0, 1]
func WithJitter(j float64) BackoffOption {
	return func(c *backoffConfig) {
		if j >= 0 && j <= 1 {
			c.jitter = j
		}
	}
}

type exponentialBackoff struct {
	base time.Duration
	cfg  *backoffConfig
}

// ExponentialBackoff grows as base * multiplier^(attempt-1), capped by the max delay.
func ExponentialBackoff(base time.Duration, opts ...BackoffOption) BackoffStrategy {
	cfg := defaultBackoffConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &exponentialBackoff{base: base, cfg: cfg}
}

func (b *exponentialBackoff) Next(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := float64(b.base) * math.Pow(b.cfg.multiplier, float64(attempt-1))
	if delay > float64(b.cfg.maxDelay) {
		delay = float64(b.cfg.maxDelay)
	}
	return time.Duration(applyJitter(delay, b.cfg.jitter))
}

type constantBackoff struct {
	delay time.Duration
	cfg   *backoffConfig
}

// ConstantBackoff waits the same delay before every attempt
func ConstantBackoff(delay time.Duration, opts ...BackoffOption) BackoffStrategy {
	cfg := defaultBackoffConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &constantBackoff{delay: delay, cfg: cfg}
}

func (b *constantBackoff) Next(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return time.Duration(applyJitter(float64(b.delay), b.cfg.jitter))
}

func applyJitter(delay, jitter float64) float64 {
	if jitter == 0 {
		return delay
	}
	offset := (rand.Float64()*2 - 1) * delay * jitter
	if delay+offset < 0 {
		return 0
	}
	return delay + offset
}

// Wait sleeps for d or until ctx is done, returning ctx.Err() in the latter case.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Tracker counts consecutive failures against a strategy.
// It is not safe for concurrent use.
type Tracker struct {
	strategy BackoffStrategy
	attempt  int
}

// NewTracker creates a Tracker; a nil strategy means no delay
func NewTracker(s BackoffStrategy) *Tracker {
	return &Tracker{strategy: s}
}

// Failure records a failed attempt and returns the delay before the next one
func (t *Tracker) Failure() time.Duration {
	t.attempt++
	if t.strategy == nil {
		return 0
	}
	return t.strategy.Next(t.attempt)
}

// Success resets the failure count
func (t *Tracker) Success() { t.attempt = 0 }

// Attempts returns the consecutive failure count
func (t *Tracker) Attempts() int { return t.attempt }
