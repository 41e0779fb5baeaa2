package portal

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// DeadlineSweeper periodically closes postings whose deadline passed, so
// Job.Status stays consistent with Deadline even when nobody reads the
// posting. Submissions check the deadline directly either way.
type DeadlineSweeper struct {
	cron   *cron.Cron
	jobs   Jobs
	sink   ActivitySink
	logger Logger
	spec   string
}

// NewDeadlineSweeper builds a sweeper firing on the given cron spec,
// e.g. "@every 1h".
func NewDeadlineSweeper(jobs Jobs, spec string, sink ActivitySink, logger Logger) *DeadlineSweeper {
	if spec == "" {
		spec = "@every 1h"
	}
	if logger == nil {
		logger = defLogger{}
	}
	return &DeadlineSweeper{
		cron:   cron.New(),
		jobs:   jobs,
		sink:   normalizeActivitySink(sink),
		logger: logger,
		spec:   spec,
	}
}

// Start registers the sweep and starts the scheduler. One sweep runs
// immediately so a restart does not leave stale postings open for a full
// interval.
func (s *DeadlineSweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("deadline sweeper started", "spec", s.spec)

	go s.sweep(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *DeadlineSweeper) Stop() {
	s.cron.Stop()
	s.logger.Info("deadline sweeper stopped")
}

func (s *DeadlineSweeper) sweep(ctx context.Context) {
	closed, err := s.jobs.CloseExpired(ctx, time.Now())
	if err != nil {
		s.logger.Error("deadline sweep failed", "error", err)
		return
	}

	if closed == 0 {
		return
	}

	s.logger.Info("deadline sweep closed postings", "count", closed)

	event := ActivityEvent{
		EventType:  ActivityEventJobClosed,
		Actor:      ActorRef{Type: "system"},
		OccurredAt: time.Now(),
		Metadata: map[string]any{
			"count": closed,
		},
	}
	if err := s.sink.Record(ctx, event); err != nil {
		s.logger.Warn("deadline sweep activity sink error: %v", err)
	}
}
