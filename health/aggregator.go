package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type entry struct {
	checker  Checker
	critical bool
}

// Aggregator runs registered checks concurrently under one timeout.
// A failed critical check makes the report unhealthy, a failed
// non-critical one only degrades it.
type Aggregator struct {
	timeout time.Duration

	mu      sync.RWMutex
	entries []entry
}

// NewAggregator creates an aggregator; timeout defaults to 5s
func NewAggregator(timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Aggregator{timeout: timeout}
}

// Register adds a critical check
func (a *Aggregator) Register(c Checker) {
	a.add(c, true)
}

// RegisterOptional adds a non-critical check
func (a *Aggregator) RegisterOptional(c Checker) {
	a.add(c, false)
}

func (a *Aggregator) add(c Checker, critical bool) {
	if c == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry{checker: c, critical: critical})
}

// Len returns the number of registered checks
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}

// Check runs every check and aggregates the results
func (a *Aggregator) Check(ctx context.Context) *Report {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.mu.RLock()
	entries := append([]entry(nil), a.entries...)
	a.mu.RUnlock()

	results := make([]CheckResult, len(entries))
	var g errgroup.Group
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			results[i] = runOne(checkCtx, e)
			return nil
		})
	}
	_ = g.Wait()

	report := &Report{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Duration:  time.Since(start),
		Checks:    make(map[string]CheckResult, len(results)),
	}
	for _, r := range results {
		report.Checks[r.Name] = r
		switch {
		case r.Status == StatusHealthy:
		case r.Critical:
			report.Status = StatusUnhealthy
		case report.Status == StatusHealthy:
			report.Status = StatusDegraded
		}
	}
	return report
}

func runOne(ctx context.Context, e entry) CheckResult {
	start := time.Now()
	result := CheckResult{
		Name:      e.checker.Name(),
		Status:    StatusHealthy,
		Critical:  e.critical,
		Timestamp: start,
	}
	if err := e.checker.Check(ctx); err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	result.Duration = time.Since(start)
	return result
}
