package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/KaramelBytes/leadloom-cli/internal/leads"
)

// ErrEmptyGoal is returned by Analyze when no goal text is given.
var ErrEmptyGoal = errors.New("goal cannot be empty")

// NoMinScore as Options.MinScore keeps every scored lead.
const NoMinScore = -1.0

// Options tunes the analysis pipeline. Zero values take the defaults; a
// negative MinScore disables the threshold.
type Options struct {
	BatchSize          int
	CandidateLimit     int
	ResultLimit        int
	MinScore           float64
	StrategyAttempts   int
	StrategyRetryDelay time.Duration
	OracleTimeout      time.Duration
	MaxConcurrency     int
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		BatchSize:          10,
		CandidateLimit:     100,
		ResultLimit:        20,
		MinScore:           6,
		StrategyAttempts:   2,
		StrategyRetryDelay: 500 * time.Millisecond,
		OracleTimeout:      90 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BatchSize <= 0 {
		o.BatchSize = d.BatchSize
	}
	if o.CandidateLimit <= 0 {
		o.CandidateLimit = d.CandidateLimit
	}
	if o.ResultLimit <= 0 {
		o.ResultLimit = d.ResultLimit
	}
	if o.MinScore == 0 {
		o.MinScore = d.MinScore
	}
	if o.StrategyAttempts <= 0 {
		o.StrategyAttempts = d.StrategyAttempts
	}
	if o.StrategyRetryDelay <= 0 {
		o.StrategyRetryDelay = d.StrategyRetryDelay
	}
	if o.OracleTimeout <= 0 {
		o.OracleTimeout = d.OracleTimeout
	}
	if o.MaxConcurrency < 0 {
		o.MaxConcurrency = 0
	}
	return o
}

// Result is the outcome of one analysis.
type Result struct {
	Strategy      Strategy     `json:"strategy"`
	Leads         []ScoredLead `json:"data"`
	TotalRows     int          `json:"total_rows"`
	Candidates    int          `json:"candidates"`
	Batches       int          `json:"batches"`
	FailedBatches int          `json:"failed_batches"`
}

// Analyzer runs strategy derivation, quick filtering, batch scoring and
// ranking against one oracle. It holds no per-request state.
type Analyzer struct {
	oracle Oracle
	opt    Options
}

// NewAnalyzer binds an oracle. A nil oracle always uses the fallback
// strategy and fails every batch.
func NewAnalyzer(o Oracle, opt Options) *Analyzer {
	return &Analyzer{oracle: o, opt: opt.withDefaults()}
}

// Options returns the effective options.
func (a *Analyzer) Options() Options { return a.opt }

// Analyze ranks the rows of t against goal. Only an empty goal or table is an
// error; oracle failures degrade to fallback strategies and zero scores.
func (a *Analyzer) Analyze(ctx context.Context, goal string, t *leads.Table) (*Result, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, ErrEmptyGoal
	}
	if t.Len() == 0 {
		return nil, fmt.Errorf("analyze: %w", leads.ErrNoRows)
	}
	started := time.Now()

	strategy := GenerateStrategy(ctx, a.oracle, goal, t.Len(), StrategyOptions{
		Attempts:   a.opt.StrategyAttempts,
		Timeout:    a.opt.OracleTimeout,
		RetryDelay: a.opt.StrategyRetryDelay,
	})
	candidates := TopCandidates(t.Rows, strategy, a.opt.CandidateLimit)

	var (
		results         []ScoreResult
		batches, failed int
	)
	if a.oracle == nil {
		parts := partition(candidates, a.opt.BatchSize)
		results = placeholders(len(candidates), ReasonAnalysisFailed)
		batches, failed = len(parts), len(parts)
	} else {
		results, batches, failed = scoreBatches(ctx, a.oracle, goal, strategy, candidates, BatchOptions{
			Size:           a.opt.BatchSize,
			MaxConcurrency: a.opt.MaxConcurrency,
			Timeout:        a.opt.OracleTimeout,
		})
	}
	ranked := Rank(candidates, results, a.opt.MinScore, a.opt.ResultLimit)

	zap.L().Info("analysis complete",
		zap.Int("rows", t.Len()),
		zap.Int("candidates", len(candidates)),
		zap.Int("batches", batches),
		zap.Int("failed_batches", failed),
		zap.Int("ranked", len(ranked)),
		zap.String("strategy_source", string(strategy.Source)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return &Result{
		Strategy:      strategy,
		Leads:         ranked,
		TotalRows:     t.Len(),
		Candidates:    len(candidates),
		Batches:       batches,
		FailedBatches: failed,
	}, nil
}
