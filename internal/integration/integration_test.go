package integration

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubClient struct {
	output string
	err    error
	prompt string
}

func (s *stubClient) Generate(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}

func TestIntegrateSplicesValidOutput(t *testing.T) {
	client := &stubClient{output: "Second point, sharper."}
	integrator := NewIntegrator(client, 1, 0)

	out, err := integrator.Integrate(context.Background(), Input{
		Document:  "First point.\nSecond point.\nThird point.",
		LineStart: 2,
		LineEnd:   2,
		Feedback:  "sharpen this",
	})
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	want := "First point.\nSecond point, sharper.\nThird point."
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
	if !strings.Contains(client.prompt, "sharpen this") {
		t.Fatal("feedback missing from prompt")
	}
}

func TestIntegrateRejectsOversizedOutput(t *testing.T) {
	client := &stubClient{output: strings.Repeat("x", 500)}
	integrator := NewIntegrator(client, 1, 0)

	_, err := integrator.Integrate(context.Background(), Input{
		Document:  "First point.\nSecond point.\nThird point.",
		LineStart: 2,
		LineEnd:   2,
		Feedback:  "sharpen this",
	})
	if !errors.Is(err, ErrInvalidOutput) {
		t.Fatalf("expected ErrInvalidOutput, got %v", err)
	}
}

func TestIntegratePropagatesUpstreamError(t *testing.T) {
	client := &stubClient{err: &UpstreamError{Status: 500, Body: "boom"}}
	integrator := NewIntegrator(client, 1, 0)

	_, err := integrator.Integrate(context.Background(), Input{
		Document:  "one\ntwo",
		LineStart: 1,
		LineEnd:   1,
		Feedback:  "x",
	})
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestIntegrateRejectsBadRange(t *testing.T) {
	integrator := NewIntegrator(&stubClient{output: "x"}, 1, 0)
	_, err := integrator.Integrate(context.Background(), Input{
		Document:  "one\ntwo",
		LineStart: 1,
		LineEnd:   5,
		Feedback:  "x",
	})
	if !errors.Is(err, ErrRangeOutOfBounds) {
		t.Fatalf("expected ErrRangeOutOfBounds, got %v", err)
	}
}
