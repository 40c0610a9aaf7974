package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrEmptyCompletion is returned when a runtime answers with no text.
var ErrEmptyCompletion = errors.New("empty completion")

// CompletionOptions are the sampling knobs of a single completion.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// Oracle is a text-in, text-out view of a Runtime bound to one model. It is
// immutable after construction and safe for concurrent use.
type Oracle struct {
	rt    Runtime
	model string
}

// NewOracle binds rt to model.
func NewOracle(rt Runtime, model string) (*Oracle, error) {
	if rt == nil {
		return nil, errors.New("runtime is nil")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("model cannot be empty")
	}
	return &Oracle{rt: rt, model: model}, nil
}

// Model returns the bound model id.
func (o *Oracle) Model() string { return o.model }

// Complete sends prompt as a single user message and returns the reply text.
func (o *Oracle) Complete(ctx context.Context, prompt string, opt CompletionOptions) (string, error) {
	resp, err := o.rt.Generate(ctx, GenerateRequest{
		Model:       o.model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		MaxTokens:   opt.MaxTokens,
		Temperature: opt.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	text := resp.Content()
	zap.L().Debug("completion done",
		zap.String("model", o.model),
		zap.String("request_id", resp.RequestID),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int("chars", len(text)),
	)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
