// Package health checks the remote stores behind the configuration environment
package health

import (
	"context"
	"time"
)

// Status health status
type Status string

const (
	// StatusHealthy every check passed
	StatusHealthy Status = "healthy"
	// StatusDegraded a non-critical check failed
	StatusDegraded Status = "degraded"
	// StatusUnhealthy a critical check failed
	StatusUnhealthy Status = "unhealthy"
)

// Checker is one health check item
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker
type CheckerFunc struct {
	CheckName string
	Fn        func(ctx context.Context) error
}

// Name implements Checker
func (c CheckerFunc) Name() string { return c.CheckName }

// Check implements Checker
func (c CheckerFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// CheckResult result of one item
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Critical  bool          `json:"critical"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// Report aggregated result
type Report struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  time.Duration          `json:"duration"`
	Checks    map[string]CheckResult `json:"checks"`
}

// IsHealthy reports whether every check passed
func (r *Report) IsHealthy() bool {
	return r.Status == StatusHealthy
}

// IsDegraded reports whether only non-critical checks failed
func (r *Report) IsDegraded() bool {
	return r.Status == StatusDegraded
}
