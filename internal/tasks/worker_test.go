package tasks

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/logging"
)

type fakeSender struct {
	emails []string
	tokens []string
}

func (f *fakeSender) SendVerificationEmail(ctx context.Context, email, token string) error {
	f.emails = append(f.emails, email)
	f.tokens = append(f.tokens, token)
	return nil
}

func TestWorker_ProcessDeliversJob(t *testing.T) {
	sender := &fakeSender{}
	w := NewWorker(nil, sender, logging.NewLogger(true))

	payload, err := json.Marshal(Job{Email: "user@example.com", Token: "tok-123"})
	require.NoError(t, err)

	w.process(context.Background(), payload)

	assert.Equal(t, []string{"user@example.com"}, sender.emails)
	assert.Equal(t, []string{"tok-123"}, sender.tokens)
}

func TestWorker_RetryDropsAfterMaxAttempts(t *testing.T) {
	// The last allowed failure must drop the job without touching the
	// queue again; a nil client would panic if it tried.
	w := NewWorker(nil, &fakeSender{}, logging.NewLogger(true))

	w.retry(context.Background(), Job{
		Email:   "user@example.com",
		Token:   "tok-123",
		Attempt: maxAttempts - 1,
	}, assert.AnError)
}

func TestWorker_ProcessDropsMalformedJob(t *testing.T) {
	sender := &fakeSender{}
	w := NewWorker(nil, sender, logging.NewLogger(true))

	w.process(context.Background(), []byte("{not json"))

	assert.Empty(t, sender.emails)
}
