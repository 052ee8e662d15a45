package scheduler

import (
	"context"
	"fmt"
	"time"

	"cmms_backend/platform/config"
	"cmms_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// OrderGenerator runs a generation sweep over active plans. Satisfied by the
// plans service.
type OrderGenerator interface {
	GenerateDue(ctx context.Context, asOf time.Time) (int, error)
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	generator OrderGenerator
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, generator OrderGenerator, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		generator: generator,
		log:       log,
	}

	mux.HandleFunc(TaskGenerateDueOrders, w.handleGenerateDueOrders)

	return w, nil
}

func (w *Worker) handleGenerateDueOrders(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseGenerateDueOrdersPayload(task)
	if err != nil {
		return err
	}

	asOf := time.Now()
	if payload.AsOf != "" {
		parsed, err := time.Parse(time.RFC3339, payload.AsOf)
		if err != nil {
			return err
		}
		asOf = parsed
	}

	generated, err := w.generator.GenerateDue(ctx, asOf)
	if err != nil {
		return err
	}

	w.log.Info("generation sweep finished", "as_of", asOf.Format("2006-01-02"), "generated", generated)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
