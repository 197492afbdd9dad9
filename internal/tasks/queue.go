package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const verificationQueueKey = "tasks:verification_email"

// Job is one unit of background work pushed through Redis.
type Job struct {
	Email   string `json:"email"`
	Token   string `json:"token"`
	Attempt int    `json:"attempt"`
}

// Queue hands mail jobs to the background worker over a Redis list.
// Enqueueing succeeds as soon as the job is in Redis; delivery happens
// later, at least once.
type Queue struct {
	client *redis.Client
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

// EnqueueVerification pushes a verification mail job onto the queue.
func (q *Queue) EnqueueVerification(ctx context.Context, email, token string) error {
	payload, err := json.Marshal(Job{Email: email, Token: token})
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := q.client.LPush(ctx, verificationQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}
