package integration

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// UpstreamError is a non-2xx response from the generation API.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("generation API status %d: %s", e.Status, e.Body)
}

type retryingClient struct {
	inner    Client
	attempts int
	delay    time.Duration
}

// NewRetryingClient wraps a Client with a fixed-delay retry. Only
// transport errors and 5xx responses are retried; 4xx means the request
// itself is wrong and repeating it cannot help.
func NewRetryingClient(inner Client, attempts int, delay time.Duration) Client {
	if attempts < 1 {
		attempts = 1
	}
	return &retryingClient{inner: inner, attempts: attempts, delay: delay}
}

func (c *retryingClient) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		out, err := c.inner.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !shouldRetry(err) || attempt == c.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.delay):
		}
	}
	return "", lastErr
}

func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Status >= 500
	}
	// Anything else is a transport fault.
	return true
}
