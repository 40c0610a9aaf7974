package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestPartition(t *testing.T) {
	tbl := peopleTable(t, 25, func(int) string { return "CEO" })
	parts := partition(tbl.Rows, 10)
	if len(parts) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(parts))
	}
	for i, want := range []int{10, 10, 5} {
		if parts[i].Index != i || len(parts[i].Rows) != want {
			t.Fatalf("batch %d: index %d, %d rows", i, parts[i].Index, len(parts[i].Rows))
		}
	}
	if got := parts[2].Rows[0].Field("Last Name"); got != "21" {
		t.Fatalf("batches must be contiguous, batch 3 starts with %s", got)
	}
}

func TestBatchReconcilesShuffledIDs(t *testing.T) {
	tbl := peopleTable(t, 4, func(i int) string { return fmt.Sprintf("Role %d", i) })
	o := &fakeOracle{batch: func(_ context.Context, _ string, lines []string) (string, error) {
		order := []int{3, 1, 4, 2}
		var out []fakeResult
		for _, id := range order {
			out = append(out, fakeResult{ID: id, Score: float64(id) + 5, Reasoning: lines[id-1]})
		}
		return mustJSON(t, out), nil
	}}
	results, batches, failed := scoreBatches(context.Background(), o, "goal", Strategy{}, tbl.Rows, BatchOptions{Size: 10})
	if batches != 1 || failed != 0 {
		t.Fatalf("batches=%d failed=%d", batches, failed)
	}
	for i, r := range results {
		wantName := fmt.Sprintf("Person %d", i+1)
		if !strings.HasPrefix(r.Reasoning, wantName+",") || r.Score != float64(i+1)+5 {
			t.Fatalf("row %d misaligned: %+v", i, r)
		}
	}
}

func TestBatchFailureIsIsolated(t *testing.T) {
	tbl := peopleTable(t, 20, func(int) string { return "VP" })
	o := &fakeOracle{batch: func(_ context.Context, prompt string, lines []string) (string, error) {
		if strings.Contains(prompt, "Person 15,") {
			return "", errors.New("upstream exploded")
		}
		out := make([]fakeResult, len(lines))
		for i := range lines {
			out[i] = fakeResult{ID: i + 1, Score: 8.5, Reasoning: "fit"}
		}
		return mustJSON(t, out), nil
	}}
	results, batches, failed := scoreBatches(context.Background(), o, "goal", Strategy{}, tbl.Rows, BatchOptions{Size: 10})
	if len(results) != 20 || batches != 2 || failed != 1 {
		t.Fatalf("results=%d batches=%d failed=%d", len(results), batches, failed)
	}
	for i := 0; i < 10; i++ {
		if results[i].Score != 8.5 || results[i].Reasoning != "fit" {
			t.Fatalf("healthy batch row %d affected: %+v", i, results[i])
		}
	}
	for i := 10; i < 20; i++ {
		if results[i].Score != 0 || results[i].Reasoning != ReasonAnalysisFailed {
			t.Fatalf("failed batch row %d: %+v", i, results[i])
		}
	}
}

func TestBatchUnparsableAndTimeout(t *testing.T) {
	tbl := peopleTable(t, 3, func(int) string { return "VP" })
	cases := map[string]*fakeOracle{
		"prose": {batch: func(context.Context, string, []string) (string, error) {
			return "Sorry, I can't score these.", nil
		}},
		"object without list": {batch: func(context.Context, string, []string) (string, error) {
			return `{"note": "nothing"}`, nil
		}},
		"timeout": {delay: time.Second, batch: func(context.Context, string, []string) (string, error) {
			return `[]`, nil
		}},
	}
	for name, o := range cases {
		t.Run(name, func(t *testing.T) {
			results, _, failed := scoreBatches(context.Background(), o, "goal", Strategy{}, tbl.Rows, BatchOptions{Size: 10, Timeout: 50 * time.Millisecond})
			if failed != 1 || len(results) != 3 {
				t.Fatalf("failed=%d results=%d", failed, len(results))
			}
			for _, r := range results {
				if r.Reasoning != ReasonAnalysisFailed {
					t.Fatalf("expected placeholder, got %+v", r)
				}
			}
		})
	}
}

func TestBatchRunsConcurrently(t *testing.T) {
	tbl := peopleTable(t, 50, func(int) string { return "VP" })
	o := &fakeOracle{delay: 30 * time.Millisecond, batch: func(context.Context, string, []string) (string, error) {
		return `[]`, nil
	}}
	_, batches, _ := scoreBatches(context.Background(), o, "goal", Strategy{}, tbl.Rows, BatchOptions{Size: 10})
	if batches != 5 || o.batchCalls != 5 {
		t.Fatalf("batches=%d calls=%d", batches, o.batchCalls)
	}
	if o.maxInflight < 2 {
		t.Fatalf("batches were not issued concurrently (max in flight %d)", o.maxInflight)
	}

	limited := &fakeOracle{delay: 10 * time.Millisecond, batch: o.batch}
	scoreBatches(context.Background(), limited, "goal", Strategy{}, tbl.Rows, BatchOptions{Size: 10, MaxConcurrency: 1})
	if limited.maxInflight != 1 {
		t.Fatalf("concurrency limit ignored: %d in flight", limited.maxInflight)
	}
}

func TestReconcile(t *testing.T) {
	cases := []struct {
		name  string
		items []any
		want  []ScoreResult
	}{
		{
			name: "positional fallback for missing and invalid ids",
			items: []any{
				map[string]any{"score": 7.0, "reasoning": "a"},
				map[string]any{"id": "two", "score": "8", "reasoning": "b"},
				map[string]any{"id": 99.0, "score": 9.0, "reasoning": "c"},
			},
			want: []ScoreResult{{Score: 7, Reasoning: "a"}, {Score: 8, Reasoning: "b"}, {Score: 9, Reasoning: "c"}},
		},
		{
			name: "string ids and score coercion",
			items: []any{
				map[string]any{"id": "2", "score": "not a number", "reasoning": "b"},
				map[string]any{"id": 1.0, "score": nil, "symmetric_value": "sv"},
			},
			want: []ScoreResult{{SymmetricValue: "sv"}, {Reasoning: "b"}, {Reasoning: ReasonNoScore}},
		},
		{
			name: "claimed ids are not overwritten",
			items: []any{
				map[string]any{"id": 1.0, "score": 6.0, "reasoning": "first"},
				map[string]any{"id": 1.0, "score": 10.0, "reasoning": "dup"},
				"garbage",
			},
			want: []ScoreResult{{Score: 6, Reasoning: "first"}, {Reasoning: ReasonNoScore}, {Reasoning: ReasonNoScore}},
		},
		{
			name: "declared ids win over positional fallback",
			items: []any{
				map[string]any{"score": 2.0, "reasoning": "no id"},
				map[string]any{"id": 1.0, "score": 9.0, "reasoning": "one"},
				map[string]any{"id": "x", "score": 4.0, "reasoning": "third"},
			},
			want: []ScoreResult{{Score: 9, Reasoning: "one"}, {Reasoning: ReasonNoScore}, {Score: 4, Reasoning: "third"}},
		},
		{
			name:  "extra results are ignored",
			items: []any{nil, nil, nil, map[string]any{"score": 5.0}},
			want:  []ScoreResult{{Reasoning: ReasonNoScore}, {Reasoning: ReasonNoScore}, {Reasoning: ReasonNoScore}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := reconcile(tc.items, 3)
			if len(got) != 3 {
				t.Fatalf("expected 3 results, got %d", len(got))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("slot %d: got %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestParseBatchResponse(t *testing.T) {
	cases := []struct {
		text string
		n    int
		ok   bool
	}{
		{"```json\n[{\"id\":1,\"score\":7}]\n```", 1, true},
		{`{"results": [{"id": 1}, {"id": 2}]}`, 2, true},
		{`Note [draft]: {"id": 1, "score": 9, "reasoning": "uses [brackets]"}`, 1, true},
		{`{"summary": "none"}`, 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		items, ok := parseBatchResponse(tc.text)
		if ok != tc.ok || len(items) != tc.n {
			t.Fatalf("parseBatchResponse(%q) = %d items, %v", tc.text, len(items), ok)
		}
	}
}

func TestBatchPromptNumbersLeads(t *testing.T) {
	tbl := peopleTable(t, 2, func(i int) string {
		if i == 2 {
			return ""
		}
		return "CTO"
	})
	p := batchPrompt("find a cto", Strategy{ValueFlow: ValueFlowFromMe, Rubric: "be strict"}, tbl.Rows)
	lines := promptLeads(p)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lead lines, got %v", lines)
	}
	if lines[0] != "Person 1, CTO at Company 1" || lines[1] != "Person 2, Unknown at Company 2" {
		t.Fatalf("unexpected lead lines %q", lines)
	}
	for _, want := range []string{`User's Goal: "find a cto"`, `Implicit Ask: "find a cto"`, "Value Flow: from_me", "Rubric: be strict", "Return ONLY the JSON array."} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}
