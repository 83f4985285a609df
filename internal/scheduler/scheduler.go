package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hazz-dev/kbprobe/internal/metrics"
	"github.com/hazz-dev/kbprobe/internal/probe"
	"github.com/hazz-dev/kbprobe/internal/storage"
)

// Store defines the storage operations required by the scheduler.
type Store interface {
	InsertResult(ctx context.Context, r probe.CheckResult) error
	LatestResult(ctx context.Context, probeName string) (*storage.Result, error)
}

// Scheduler runs each probe on an interval in its own goroutine.
type Scheduler struct {
	probes   []probe.Probe
	interval time.Duration
	store    Store
	onResult func(probe.CheckResult, *probe.Status)
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// New creates a new Scheduler. Pass nil logger to use the default logger.
func New(probes []probe.Probe, interval time.Duration, store Store, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		probes:   probes,
		interval: interval,
		store:    store,
		logger:   logger,
	}
}

// SetOnResult sets the callback invoked after each probe run.
// result is the current result; prev is the previous status (nil on first run).
func (s *Scheduler) SetOnResult(fn func(probe.CheckResult, *probe.Status)) {
	s.onResult = fn
}

// Start spawns one goroutine per probe. It is non-blocking.
func (s *Scheduler) Start(ctx context.Context) {
	for _, p := range s.probes {
		s.wg.Add(1)
		go s.runProbe(ctx, p)
	}
}

// Wait blocks until all probe goroutines have exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) runProbe(ctx context.Context, p probe.Probe) {
	defer s.wg.Done()

	// Run immediately.
	s.runCheck(ctx, p)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCheck(ctx, p)
		}
	}
}

func (s *Scheduler) runCheck(ctx context.Context, p probe.Probe) {
	// Fetch previous status before running the check.
	prev, err := s.store.LatestResult(ctx, p.Name())
	if err != nil {
		s.logger.Warn("fetching previous result", "probe", p.Name(), "error", err)
	}

	result := p.Check(ctx)

	s.logger.Info("probe result",
		"probe", p.Name(),
		"status", result.Status,
		"duration", result.Duration,
		"error", result.Error,
	)

	metrics.Observe(result)

	if err := s.store.InsertResult(ctx, result); err != nil {
		s.logger.Error("storing probe result", "probe", p.Name(), "error", err)
	}

	if s.onResult != nil {
		var prevStatus *probe.Status
		if prev != nil {
			st := probe.Status(prev.Status)
			prevStatus = &st
		}
		s.onResult(result, prevStatus)
	}
}
