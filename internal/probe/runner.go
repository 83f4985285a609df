package probe

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Runner executes registered probes strictly sequentially, in registration
// order, exactly once each. No failure escapes a probe: the Report always
// holds one result per registered probe.
type Runner struct {
	probes []Probe
	logger *slog.Logger
}

// NewRunner creates a Runner over the given probes. Pass nil logger to use
// the default logger.
func NewRunner(logger *slog.Logger, probes ...Probe) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{probes: probes, logger: logger}
}

// Probes returns the registered probes in registration order.
func (r *Runner) Probes() []Probe {
	return r.probes
}

// Run executes all probes and returns the aggregated report.
func (r *Runner) Run(ctx context.Context) *Report {
	report := NewReport()
	for _, p := range r.probes {
		result := r.runProbe(ctx, p)
		r.logger.Info("probe result",
			"probe", result.ProbeName,
			"status", result.Status,
			"duration", result.Duration,
			"error", result.Error,
		)
		report.Add(result)
	}
	return report
}

// runProbe downgrades a panicking probe to a failed result so the run
// always completes.
func (r *Runner) runProbe(ctx context.Context, p Probe) (result CheckResult) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			result = CheckResult{
				ProbeName: p.Name(),
				Status:    StatusFail,
				Error:     fmt.Sprintf("probe panicked: %v", rec),
				Duration:  time.Since(start),
				CheckedAt: start,
			}
		}
	}()
	return p.Check(ctx)
}
