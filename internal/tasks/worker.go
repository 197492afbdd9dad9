package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"fintrack/internal/logging"
)

const (
	popTimeout  = 5 * time.Second
	maxAttempts = 3
	retryDelay  = 10 * time.Second
)

// Sender delivers a single verification mail.
type Sender interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
}

// Worker drains the verification mail queue. Failed jobs go back onto the
// queue with an incremented attempt counter until maxAttempts is reached.
type Worker struct {
	client *redis.Client
	sender Sender
	logger *logging.Logger
}

func NewWorker(client *redis.Client, sender Sender, logger *logging.Logger) *Worker {
	return &Worker{client: client, sender: sender, logger: logger}
}

// Run blocks on the queue until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("mail worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("mail worker stopped")
			return
		default:
		}

		result, err := w.client.BRPop(ctx, popTimeout, verificationQueueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.Error("failed to pop job", "error", err.Error())
			time.Sleep(time.Second)
			continue
		}

		// BRPop returns [key, value].
		if len(result) != 2 {
			continue
		}

		w.process(ctx, []byte(result[1]))
	}
}

func (w *Worker) process(ctx context.Context, payload []byte) {
	var job Job
	if err := json.Unmarshal(payload, &job); err != nil {
		w.logger.Error("failed to decode job, dropping", "error", err.Error())
		return
	}

	if err := w.sender.SendVerificationEmail(ctx, job.Email, job.Token); err != nil {
		w.retry(ctx, job, err)
		return
	}
}

func (w *Worker) retry(ctx context.Context, job Job, cause error) {
	job.Attempt++
	if job.Attempt >= maxAttempts {
		w.logger.Error("job exhausted retries, dropping",
			"email", job.Email, "attempts", job.Attempt, "error", cause.Error())
		return
	}

	w.logger.Warn("job failed, requeueing",
		"email", job.Email, "attempt", job.Attempt, "error", cause.Error())

	time.Sleep(retryDelay)

	payload, err := json.Marshal(job)
	if err != nil {
		w.logger.Error("failed to marshal retry job", "error", err.Error())
		return
	}
	if err := w.client.LPush(ctx, verificationQueueKey, payload).Err(); err != nil {
		w.logger.Error("failed to requeue job", "error", err.Error())
	}
}
