package services

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/api-sage/money-transfer-engine/internal/logger"
)

type TransactionExecutor interface {
	ExecutePendingTransactions(ctx context.Context) error
}

// Scheduler periodically drains transactions awaiting execution. It is the
// crash-recovery mechanism: anything left in CREATED status by a dead
// process is picked up on the next tick with no special recovery path.
// One instance runs per process and the single-slot semaphore keeps a new
// tick from starting before the previous one has finished.
type Scheduler struct {
	executor TransactionExecutor
	interval time.Duration
	slot     *semaphore.Weighted
	cancel   context.CancelFunc
	stopped  chan struct{}
}

func NewScheduler(executor TransactionExecutor, interval time.Duration) *Scheduler {
	return &Scheduler{
		executor: executor,
		interval: interval,
		slot:     semaphore.NewWeighted(1),
	}
}

// Start launches the recurring drain. The first tick runs immediately so a
// restarted process resumes pending transfers without waiting an interval.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.stopped = make(chan struct{})

	logger.Info("transaction executor planned", logger.Fields{
		"interval": s.interval.String(),
	})

	go s.run(ctx)
}

// Stop cancels the recurring drain and waits for an in-flight tick to
// finish.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.stopped
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.stopped)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("transaction executor stopped", nil)
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.slot.TryAcquire(1) {
		logger.Info("transaction executor tick skipped, previous tick still running", nil)
		return
	}
	defer s.slot.Release(1)

	if err := s.executor.ExecutePendingTransactions(ctx); err != nil {
		logger.Error("transaction executor tick failed", err, nil)
	}
}
