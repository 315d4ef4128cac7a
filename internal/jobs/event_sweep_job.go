package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// EventSweepJobName is the name of the event occurrence sweep job
const EventSweepJobName = "event_sweep"

// DefaultSweepTimeout bounds a single sweep run.
const DefaultSweepTimeout = 2 * time.Minute

// EventSweeper marks events whose date has passed since their last save and
// cascades the owning clients' lifecycle status. The interface keeps the job
// from importing the service package directly.
type EventSweeper interface {
	SweepOccurred(ctx context.Context) (swept int, err error)
}

// EventSweepJob periodically refreshes derived event status. Without it an
// event that nobody saves after its date only flips to occurred on its next
// write.
type EventSweepJob struct {
	sweeper EventSweeper
	logger  *zap.Logger
	timeout time.Duration
}

// NewEventSweepJob creates a new event occurrence sweep job.
func NewEventSweepJob(sweeper EventSweeper, logger *zap.Logger, timeout time.Duration) *EventSweepJob {
	if timeout <= 0 {
		timeout = DefaultSweepTimeout
	}
	return &EventSweepJob{
		sweeper: sweeper,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one sweep.
func (j *EventSweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	swept, err := j.sweeper.SweepOccurred(ctx)
	if err != nil {
		j.logger.Error("event sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if swept > 0 {
		j.logger.Info("event sweep finished",
			zap.Int("swept", swept),
			zap.Duration("duration", time.Since(start)))
	}
}
