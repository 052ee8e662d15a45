package scheduler

import (
	"context"
	"time"

	"cmms_backend/platform/logger"
)

const defaultGenerationInterval = time.Hour

// GenerationTicker periodically enqueues a preventive order generation sweep.
type GenerationTicker struct {
	client   *Client
	log      *logger.Logger
	interval time.Duration
}

func NewGenerationTicker(client *Client, log *logger.Logger, interval time.Duration) *GenerationTicker {
	if interval <= 0 {
		interval = defaultGenerationInterval
	}
	return &GenerationTicker{client: client, log: log, interval: interval}
}

func (t *GenerationTicker) Run(ctx context.Context) {
	if t == nil || t.client == nil {
		return
	}

	t.enqueue(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.enqueue(ctx)
		}
	}
}

func (t *GenerationTicker) enqueue(ctx context.Context) {
	if err := t.client.EnqueueGenerateDueOrders(ctx, time.Now()); err != nil {
		t.log.Warn("failed to enqueue generation sweep", "error", err)
	}
}
