package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/zapdesk/zapdesk/internal/metrics"
)

// Scheduler invokes the engine's passes at fixed intervals. It owns the
// re-entrancy guards: if a tick fires while the same pass is still in flight,
// the new invocation is skipped, not queued.
type Scheduler struct {
	engine            *Engine
	billingInterval   time.Duration
	retentionInterval time.Duration
	logger            *slog.Logger
	stop              chan struct{}

	running          atomic.Bool
	billingRunning   atomic.Bool
	retentionRunning atomic.Bool
}

// NewScheduler creates a scheduler for both passes.
func NewScheduler(engine *Engine, billingInterval, retentionInterval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		engine:            engine,
		billingInterval:   billingInterval,
		retentionInterval: retentionInterval,
		logger:            logger,
		stop:              make(chan struct{}),
	}
}

// Running reports whether the scheduler loop is active.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Start runs both pass loops until the context is cancelled or Stop is
// called. Call in a goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.running.Store(true)
	defer s.running.Store(false)

	billingTicker := time.NewTicker(s.billingInterval)
	defer billingTicker.Stop()
	retentionTicker := time.NewTicker(s.retentionInterval)
	defer retentionTicker.Stop()

	s.logger.Info("lifecycle scheduler started",
		"billingInterval", s.billingInterval,
		"retentionInterval", s.retentionInterval,
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-billingTicker.C:
			s.RunBillingOnce(ctx)
		case <-retentionTicker.C:
			s.RunRetentionOnce(ctx)
		}
	}
}

// Stop signals the scheduler to stop.
func (s *Scheduler) Stop() {
	select {
	case s.stop <- struct{}{}:
	default:
	}
}

// RunBillingOnce runs one billing pass unless one is already in flight.
func (s *Scheduler) RunBillingOnce(ctx context.Context) {
	s.runGuarded(ctx, "billing", &s.billingRunning, s.engine.RunBillingPass)
}

// RunRetentionOnce runs one retention pass unless one is already in flight.
func (s *Scheduler) RunRetentionOnce(ctx context.Context) {
	s.runGuarded(ctx, "retention", &s.retentionRunning, s.engine.RunRetentionPass)
}

func (s *Scheduler) runGuarded(ctx context.Context, pass string, guard *atomic.Bool, run func(context.Context) error) {
	if !guard.CompareAndSwap(false, true) {
		metrics.PassRunsTotal.WithLabelValues(pass, "skipped").Inc()
		s.logger.Warn("pass still in flight, skipping tick", "pass", pass)
		return
	}
	defer guard.Store(false)

	defer func() {
		if r := recover(); r != nil {
			metrics.PassRunsTotal.WithLabelValues(pass, "panic").Inc()
			s.logger.Error("panic in lifecycle pass", "pass", pass, "panic", fmt.Sprint(r))
		}
	}()

	start := time.Now()
	err := run(ctx)
	metrics.PassDuration.WithLabelValues(pass).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.PassRunsTotal.WithLabelValues(pass, "error").Inc()
		s.logger.Warn("lifecycle pass finished with errors", "pass", pass, "error", err)
		return
	}
	metrics.PassRunsTotal.WithLabelValues(pass, "ok").Inc()
	s.logger.Debug("lifecycle pass complete", "pass", pass, "duration", time.Since(start))
}
