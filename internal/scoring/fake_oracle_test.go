package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KaramelBytes/leadloom-cli/internal/ai"
	"github.com/KaramelBytes/leadloom-cli/internal/leads"
)

// fakeOracle answers strategy and batch prompts with scripted functions.
type fakeOracle struct {
	strategy func(ctx context.Context, attempt int) (string, error)
	batch    func(ctx context.Context, prompt string, lines []string) (string, error)
	delay    time.Duration

	mu            sync.Mutex
	strategyCalls int
	batchCalls    int
	opts          []ai.CompletionOptions

	inflight    int32
	maxInflight int32
}

func (f *fakeOracle) Complete(ctx context.Context, prompt string, opt ai.CompletionOptions) (string, error) {
	f.mu.Lock()
	f.opts = append(f.opts, opt)
	isBatch := strings.Contains(prompt, "LEADS TO SCORE:")
	var attempt int
	if isBatch {
		f.batchCalls++
	} else {
		f.strategyCalls++
		attempt = f.strategyCalls
	}
	f.mu.Unlock()

	if !isBatch {
		if f.strategy == nil {
			return "", fmt.Errorf("strategy unavailable")
		}
		return f.strategy(ctx, attempt)
	}

	n := atomic.AddInt32(&f.inflight, 1)
	defer atomic.AddInt32(&f.inflight, -1)
	for {
		m := atomic.LoadInt32(&f.maxInflight)
		if n <= m || atomic.CompareAndSwapInt32(&f.maxInflight, m, n) {
			break
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.batch == nil {
		return "", fmt.Errorf("batch unavailable")
	}
	return f.batch(ctx, prompt, promptLeads(prompt))
}

var leadLineRe = regexp.MustCompile(`^(\d+)\. (.*)$`)

// promptLeads returns the numbered lead lines of a batch prompt, without numbers.
func promptLeads(prompt string) []string {
	_, body, ok := strings.Cut(prompt, "LEADS TO SCORE:\n")
	if !ok {
		return nil
	}
	var out []string
	for _, line := range strings.Split(body, "\n") {
		m := leadLineRe.FindStringSubmatch(line)
		if m == nil {
			break
		}
		out = append(out, m[2])
	}
	return out
}

type fakeResult struct {
	ID             any    `json:"id"`
	Score          any    `json:"score"`
	SymmetricValue string `json:"symmetric_value,omitempty"`
	Reasoning      string `json:"reasoning"`
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

const investorStrategyJSON = "```json\n" + `{
  "value_flow": "to_me",
  "implicit_ask": "Seed investors for an AI sales tool",
  "persona": "Seed VCs",
  "anchor_domain": "AI / SaaS",
  "keywords": ["Partner", "Capital", "Ventures"],
  "boost_words": ["Partner"],
  "company_words": ["Capital"],
  "negative_words": ["Intern"],
  "rubric": "Tier1(9-10): GPs",
  "priority_signals": ["general partner"]
}` + "\n```"

// peopleTable builds a normalized table with n rows named Person 1..n.
func peopleTable(t *testing.T, n int, position func(i int) string) *leads.Table {
	t.Helper()
	var b strings.Builder
	b.WriteString("First Name,Last Name,Company,Position\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "Person,%d,Company %d,%s\n", i, i, position(i))
	}
	tbl, err := leads.Normalize([]byte(b.String()), leads.DefaultOptions())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if tbl.Len() != n {
		t.Fatalf("expected %d rows, got %d", n, tbl.Len())
	}
	return tbl
}
