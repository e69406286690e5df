// Package collaborator asks an external text-generation service to split
// narration into moments. Every failure is reported as ErrUnavailable so the
// caller can fall back to rule-based extraction.
package collaborator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kittclouds/shotkit/pkg/emotion"
	"github.com/kittclouds/shotkit/pkg/moment"
)

// ErrUnavailable wraps every collaborator failure: transport errors,
// timeouts, and unusable responses.
var ErrUnavailable = errors.New("collaborator: unavailable")

// DefaultTimeout applies when a request carries no timeout
const DefaultTimeout = 20 * time.Second

// Generation parameters shared by the providers
const (
	Temperature = 0.7
	MaxTokens   = 2000
)

// Generator is the interface for text completion calls.
type Generator interface {
	// Generate sends a prompt and returns the raw response text.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to Generator
type Func func(ctx context.Context, prompt string) (string, error)

// Generate calls f
func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Request is one decomposition call
type Request struct {
	Narration string
	Target    int
	Context   moment.Context
	Timeout   time.Duration // zero means DefaultTimeout
}

// Option configures a Narrator
type Option func(*Narrator)

// WithTable sets the table used to score returned emotions
func WithTable(t *emotion.Table) Option {
	return func(n *Narrator) {
		if t != nil {
			n.table = t
		}
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(n *Narrator) {
		if log != nil {
			n.log = log
		}
	}
}

// Narrator turns a Generator response into moments.
type Narrator struct {
	gen   Generator
	table *emotion.Table
	log   *zap.Logger
}

// NewNarrator creates a Narrator with the given generator.
func NewNarrator(gen Generator, opts ...Option) *Narrator {
	n := &Narrator{
		gen:   gen,
		table: emotion.Default(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type result struct {
	text string
	err  error
}

// Decompose makes exactly one generation call bounded by the request
// timeout and parses its response. Moments are tagged ai and scored with the
// local emotion table.
func (n *Narrator) Decompose(ctx context.Context, req Request) ([]moment.Moment, error) {
	if n == nil || n.gen == nil {
		return nil, fmt.Errorf("%w: no generator configured", ErrUnavailable)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := BuildPrompt(req)
	n.log.Debug("collaborator request",
		zap.Int("target", req.Target),
		zap.Int("promptTokens", EstimateTokens(prompt)),
		zap.Duration("timeout", timeout),
	)

	// Buffered so the call can finish after a timeout without blocking
	done := make(chan result, 1)
	go func() {
		text, err := n.gen.Generate(ctx, prompt)
		done <- result{text: text, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	}
	if res.err != nil {
		return nil, fmt.Errorf("%w: generate: %w", ErrUnavailable, res.err)
	}

	moments, err := Parse(res.text, n.table)
	if err != nil {
		return nil, err
	}
	n.log.Debug("collaborator response",
		zap.Int("moments", len(moments)),
		zap.Int("responseTokens", EstimateTokens(res.text)),
	)
	return moments, nil
}
