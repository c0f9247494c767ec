// Package integration turns accepted review feedback into a revised
// document by calling a text-generation API and splicing the result
// back into the anchored line range.
package integration

import (
	"context"
	"fmt"
	"time"
)

// Client is the low-level text-generation call.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Input carries everything needed to revise one anchored range.
type Input struct {
	Document  string
	LineStart int
	LineEnd   int
	Feedback  string
	// Transcript holds the discussion thread, oldest first, each entry
	// pre-formatted as "author: message". Empty for plain accepts.
	Transcript []string
}

// Integrator drives one revision: prompt, generate with retry,
// validate against the excerpt, splice.
type Integrator struct {
	Client   Client
	Attempts int
	Delay    time.Duration
}

func NewIntegrator(client Client, attempts int, delay time.Duration) *Integrator {
	if attempts < 1 {
		attempts = 1
	}
	return &Integrator{
		Client:   NewRetryingClient(client, attempts, delay),
		Attempts: attempts,
		Delay:    delay,
	}
}

// Integrate returns the full revised document. Any failure, transport,
// upstream, or output validation, leaves the document untouched.
func (i *Integrator) Integrate(ctx context.Context, in Input) (string, error) {
	excerpt, err := ExtractLines(in.Document, in.LineStart, in.LineEnd)
	if err != nil {
		return "", err
	}

	prompt := BuildPrompt(excerpt, in.LineStart, in.LineEnd, in.Feedback, in.Transcript)

	out, err := i.Client.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate revision: %w", err)
	}

	if err := ValidateReplacement(excerpt, out); err != nil {
		return "", err
	}

	return ApplyReplacement(in.Document, out, in.LineStart, in.LineEnd), nil
}
