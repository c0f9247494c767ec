package integration

import (
	"context"
	"errors"
	"testing"
	"time"
)

type scriptedClient struct {
	calls   int
	results []error
	output  string
}

func (c *scriptedClient) Generate(context.Context, string) (string, error) {
	idx := c.calls
	c.calls++
	if idx >= len(c.results) || c.results[idx] == nil {
		return c.output, nil
	}
	return "", c.results[idx]
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	inner := &scriptedClient{
		results: []error{&UpstreamError{Status: 503, Body: "overloaded"}, nil},
		output:  "revised",
	}
	client := NewRetryingClient(inner, 2, 0)

	out, err := client.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "revised" {
		t.Fatalf("got %q", out)
	}
	if inner.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", inner.calls)
	}
}

func TestRetryStopsAfterMaxAttempts(t *testing.T) {
	upstream := &UpstreamError{Status: 500, Body: "boom"}
	inner := &scriptedClient{results: []error{upstream, upstream, upstream}}
	client := NewRetryingClient(inner, 2, 0)

	_, err := client.Generate(context.Background(), "prompt")
	var got *UpstreamError
	if !errors.As(err, &got) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", inner.calls)
	}
}

func TestRetryDoesNotRetryClientErrors(t *testing.T) {
	inner := &scriptedClient{results: []error{&UpstreamError{Status: 400, Body: "bad request"}}}
	client := NewRetryingClient(inner, 3, 0)

	_, err := client.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 1 {
		t.Fatalf("4xx must not retry, got %d calls", inner.calls)
	}
}

func TestRetryRetriesTransportErrors(t *testing.T) {
	inner := &scriptedClient{
		results: []error{errors.New("connection reset"), nil},
		output:  "ok",
	}
	client := NewRetryingClient(inner, 2, 0)

	out, err := client.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "ok" || inner.calls != 2 {
		t.Fatalf("expected transport retry, out=%q calls=%d", out, inner.calls)
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inner := &scriptedClient{results: []error{errors.New("transient"), nil}, output: "late"}
	client := NewRetryingClient(inner, 3, 50*time.Millisecond)

	_, err := client.Generate(ctx, "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
