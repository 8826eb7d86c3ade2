package chatsync

import (
	"context"
	"time"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/internal/infrastructure/metrics"
	"taskcommadmin/pkg/logger"
)

const DefaultPollInterval = 1500 * time.Millisecond

// Batch is one poll result.
type Batch struct {
	Messages []entity.ChatMessage
	// StartedAt is when the fetch behind this batch was issued.
	StartedAt time.Time
	// Fallback is set when the fetch failed and Messages holds the fallback.
	Fallback bool
	Err      error
}

type Poller struct {
	repo     repository.MessageRepository
	interval time.Duration
}

func NewPoller(repo repository.MessageRepository, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		repo:     repo,
		interval: interval,
	}
}

func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start begins polling taskID and returns the batch sequence. The first fetch
// is issued immediately, then one per interval after each emission. A failed
// fetch yields a Fallback batch carrying fallback() (or an empty list when
// fallback is nil) and polling continues. The channel is closed once ctx is
// cancelled; a fetch in flight at that point is cancelled with it.
func (p *Poller) Start(ctx context.Context, taskID string, fallback func() []entity.ChatMessage) <-chan Batch {
	out := make(chan Batch)

	go func() {
		defer close(out)

		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			batch, ok := p.fetch(ctx, taskID, fallback)
			if !ok {
				return
			}

			select {
			case out <- batch:
			case <-ctx.Done():
				return
			}

			timer.Reset(p.interval)
		}
	}()

	return out
}

func (p *Poller) fetch(ctx context.Context, taskID string, fallback func() []entity.ChatMessage) (Batch, bool) {
	started := time.Now()
	msgs, err := p.repo.FetchByTask(ctx, taskID)
	if ctx.Err() != nil {
		return Batch{}, false
	}

	if err != nil {
		logger.Warn("Polling messages for task %s failed: %v", taskID, err)
		metrics.PollTicks.WithLabelValues("fallback").Inc()

		var kept []entity.ChatMessage
		if fallback != nil {
			kept = fallback()
		}
		return Batch{
			Messages:  cloneMessages(kept),
			StartedAt: started,
			Fallback:  true,
			Err:       err,
		}, true
	}

	logger.Debug("Polled %d messages for task %s", len(msgs), taskID)
	metrics.PollTicks.WithLabelValues("ok").Inc()
	return Batch{
		Messages:  cloneMessages(msgs),
		StartedAt: started,
	}, true
}
