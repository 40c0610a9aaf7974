package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/leadloom-cli/internal/ai"
	"github.com/KaramelBytes/leadloom-cli/internal/leads"
	"github.com/KaramelBytes/leadloom-cli/internal/llmjson"
	"github.com/KaramelBytes/leadloom-cli/internal/utils"
)

// Placeholder reasonings for rows the oracle did not score.
const (
	ReasonAnalysisFailed = "Analysis failed"
	ReasonNoScore        = "No score returned"
)

var errUnparsableBatch = errors.New("batch response is not a JSON list")

// ScoreResult is the oracle's verdict on one row.
type ScoreResult struct {
	Score          float64
	SymmetricValue string
	Reasoning      string
}

// BatchOptions controls the scoring fan-out.
type BatchOptions struct {
	Size           int
	MaxConcurrency int // 0 means every batch at once
	Timeout        time.Duration
}

type batch struct {
	Index int
	Rows  []leads.Lead
}

func partition(rows []leads.Lead, size int) []batch {
	if size <= 0 {
		size = 10
	}
	out := make([]batch, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		out = append(out, batch{Index: len(out), Rows: rows[start:end]})
	}
	return out
}

// scoreBatches scores rows in fixed-size batches issued concurrently. The
// result has exactly one entry per row, in row order. A failed batch yields
// "Analysis failed" placeholders and never affects its siblings.
func scoreBatches(ctx context.Context, o Oracle, goal string, s Strategy, rows []leads.Lead, opt BatchOptions) (results []ScoreResult, batches, failed int) {
	parts := partition(rows, opt.Size)
	slots := make([][]ScoreResult, len(parts))
	errs := make([]error, len(parts))

	var g errgroup.Group
	if opt.MaxConcurrency > 0 {
		g.SetLimit(opt.MaxConcurrency)
	}
	for _, b := range parts {
		b := b
		g.Go(func() error {
			res, err := scoreBatch(ctx, o, goal, s, b, opt.Timeout)
			if err != nil {
				zap.L().Warn("batch scoring failed",
					zap.Int("batch", b.Index),
					zap.Int("rows", len(b.Rows)),
					zap.String("error_kind", ai.Kind(err)),
					zap.Error(err),
				)
				res = placeholders(len(b.Rows), ReasonAnalysisFailed)
			}
			slots[b.Index], errs[b.Index] = res, err
			return nil
		})
	}
	_ = g.Wait()

	results = make([]ScoreResult, 0, len(rows))
	for i, res := range slots {
		results = append(results, res...)
		if errs[i] != nil {
			failed++
		}
	}
	return results, len(parts), failed
}

func scoreBatch(ctx context.Context, o Oracle, goal string, s Strategy, b batch, timeout time.Duration) ([]ScoreResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	prompt := batchPrompt(goal, s, b.Rows)
	text, err := o.Complete(ctx, prompt, ai.CompletionOptions{Temperature: 0.3, MaxTokens: 4000})
	if err != nil {
		return nil, err
	}
	items, ok := parseBatchResponse(text)
	if !ok {
		return nil, fmt.Errorf("%w: %.200q", errUnparsableBatch, text)
	}
	res := reconcile(items, len(b.Rows))
	zap.L().Debug("batch scored",
		zap.Int("batch", b.Index),
		zap.Int("rows", len(b.Rows)),
		zap.Int("parsed", len(items)),
		zap.Int("prompt_tokens_est", utils.CountTokens(prompt)),
	)
	return res, nil
}

func parseBatchResponse(text string) ([]any, bool) {
	v, ok := llmjson.Extract(text)
	if !ok {
		return nil, false
	}
	switch t := llmjson.Unwrap(v).(type) {
	case []any:
		return t, true
	case map[string]any:
		if _, ok := t["score"]; ok {
			return []any{t}, true
		}
	}
	return nil, false
}

type joinKind int

const (
	joinByID joinKind = iota
	joinByPosition
)

// resolveSlot picks the row a result belongs to. A declared 1-based id within
// range wins; otherwise the result's position in the response is used.
func resolveSlot(id any, pos, n int) (int, joinKind) {
	if v, ok := coerceID(id); ok && v >= 1 && v <= n {
		return v - 1, joinByID
	}
	return pos, joinByPosition
}

// reconcile aligns oracle results with the n rows of a batch. Results with a
// valid id are placed first, then the rest fill their response position when
// that row is still free. Among duplicate ids the first result wins. Rows left
// unclaimed get a zero score.
func reconcile(items []any, n int) []ScoreResult {
	out := make([]ScoreResult, n)
	claimed := make([]bool, n)
	place := func(pos, slot int, kind joinKind, m map[string]any) {
		if slot >= n || claimed[slot] {
			zap.L().Debug("dropping unmatched result", zap.Int("position", pos), zap.Bool("by_id", kind == joinByID))
			return
		}
		out[slot] = ScoreResult{
			Score:          coerceScore(m["score"]),
			SymmetricValue: stringField(m["symmetric_value"]),
			Reasoning:      stringField(m["reasoning"]),
		}
		claimed[slot] = true
	}

	for _, kind := range []joinKind{joinByID, joinByPosition} {
		for pos, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if slot, k := resolveSlot(m["id"], pos, n); k == kind {
				place(pos, slot, k, m)
			}
		}
	}
	for i := range out {
		if !claimed[i] {
			out[i] = ScoreResult{Reasoning: ReasonNoScore}
		}
	}
	return out
}

func placeholders(n int, reason string) []ScoreResult {
	out := make([]ScoreResult, n)
	for i := range out {
		out[i].Reasoning = reason
	}
	return out
}
