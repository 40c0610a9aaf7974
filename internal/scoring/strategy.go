package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/KaramelBytes/leadloom-cli/internal/ai"
	"github.com/KaramelBytes/leadloom-cli/internal/llmjson"
)

// Oracle is the text-in, text-out completion service used for strategy
// derivation and lead scoring. *ai.Oracle satisfies it.
type Oracle interface {
	Complete(ctx context.Context, prompt string, opt ai.CompletionOptions) (string, error)
}

// ValueFlow describes who benefits from the relationship the user wants.
type ValueFlow string

const (
	ValueFlowToMe    ValueFlow = "to_me"
	ValueFlowFromMe  ValueFlow = "from_me"
	ValueFlowBetween ValueFlow = "between"
)

func parseValueFlow(s string) ValueFlow {
	switch ValueFlow(s) {
	case ValueFlowToMe, ValueFlowFromMe, ValueFlowBetween:
		return ValueFlow(s)
	}
	return ValueFlowBetween
}

// StrategySource records how a Strategy was produced.
type StrategySource string

const (
	SourceOracle   StrategySource = "oracle"
	SourceFallback StrategySource = "fallback"
)

// Strategy drives both the quick filter and the batch prompts. List fields
// hold lowercase, trimmed, non-empty tokens.
type Strategy struct {
	ValueFlow       ValueFlow      `json:"value_flow"`
	ImplicitAsk     string         `json:"implicit_ask"`
	SummaryAnalysis string         `json:"summary_analysis"`
	Persona         string         `json:"persona"`
	AnchorDomain    string         `json:"anchor_domain"`
	Keywords        []string       `json:"keywords"`
	BoostWords      []string       `json:"boost_words"`
	CompanyWords    []string       `json:"company_words"`
	NegativeWords   []string       `json:"negative_words"`
	Rubric          string         `json:"rubric"`
	PrioritySignals []string       `json:"priority_signals"`
	Source          StrategySource `json:"source"`
}

// StrategyOptions bounds the oracle exchange.
type StrategyOptions struct {
	Attempts   int
	Timeout    time.Duration
	RetryDelay time.Duration
}

var (
	errUnparsableStrategy = errors.New("strategy response is not a JSON object")
	errNoKeywords         = errors.New("strategy response has no keywords")
)

// GenerateStrategy asks o for a scoring strategy and falls back to the
// rule-based classifier when every attempt fails. It never returns an error.
func GenerateStrategy(ctx context.Context, o Oracle, goal string, rowCount int, opt StrategyOptions) Strategy {
	if o == nil {
		return FallbackStrategy(goal)
	}
	if opt.Attempts <= 0 {
		opt.Attempts = 2
	}
	if opt.RetryDelay <= 0 {
		opt.RetryDelay = time.Millisecond
	}
	prompt := strategyPrompt(goal, rowCount)

	var (
		accepted Strategy
		attempt  int
	)
	backoff := retry.WithMaxRetries(uint64(opt.Attempts-1), retry.NewConstant(opt.RetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		s, err := requestStrategy(ctx, o, prompt, goal, opt.Timeout)
		if err != nil {
			zap.L().Warn("strategy attempt failed",
				zap.Int("attempt", attempt),
				zap.String("error_kind", ai.Kind(err)),
				zap.Error(err),
			)
			if ai.Permanent(err) {
				return err
			}
			return retry.RetryableError(err)
		}
		accepted = s
		return nil
	})
	if err != nil {
		zap.L().Info("using fallback strategy", zap.Int("attempts", attempt), zap.Error(err))
		return FallbackStrategy(goal)
	}
	zap.L().Info("strategy accepted",
		zap.Int("attempt", attempt),
		zap.String("persona", accepted.Persona),
		zap.Strings("keywords", accepted.Keywords),
	)
	return accepted
}

func requestStrategy(ctx context.Context, o Oracle, prompt, goal string, timeout time.Duration) (Strategy, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	text, err := o.Complete(ctx, prompt, ai.CompletionOptions{Temperature: 0.2, MaxTokens: 800})
	if err != nil {
		return Strategy{}, err
	}
	obj, ok := llmjson.ExtractObject(text)
	if !ok {
		return Strategy{}, fmt.Errorf("%w: %.200q", errUnparsableStrategy, text)
	}
	s, ok := coerceStrategy(obj, goal)
	if !ok {
		return Strategy{}, errNoKeywords
	}
	return s, nil
}

// coerceStrategy is the single boundary where loosely typed oracle output
// becomes a Strategy. It reports false when no keywords survive.
func coerceStrategy(obj map[string]any, goal string) (Strategy, bool) {
	s := Strategy{
		ValueFlow:       parseValueFlow(stringField(obj["value_flow"])),
		ImplicitAsk:     stringField(obj["implicit_ask"]),
		SummaryAnalysis: stringField(obj["summary_analysis"]),
		Persona:         stringField(obj["persona"]),
		AnchorDomain:    stringField(obj["anchor_domain"]),
		Keywords:        stringList(obj["keywords"]),
		BoostWords:      stringList(obj["boost_words"]),
		CompanyWords:    stringList(obj["company_words"]),
		NegativeWords:   stringList(obj["negative_words"]),
		Rubric:          stringField(obj["rubric"]),
		PrioritySignals: stringList(obj["priority_signals"]),
		Source:          SourceOracle,
	}
	if len(s.Keywords) == 0 {
		return Strategy{}, false
	}
	if s.Persona == "" {
		src := s.ImplicitAsk
		if src == "" {
			src = goal
		}
		s.Persona = truncateRunes(src, 80)
	}
	return s, true
}
