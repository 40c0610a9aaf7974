package scoring

import (
	"strings"

	"go.uber.org/zap"
)

type intent struct {
	name     string
	triggers []string
	build    func(goal string) Strategy
}

// intents are tried in order; the first whose trigger appears in the goal wins.
var intents = []intent{
	{
		name:     "fundraising",
		triggers: []string{"investor", "invest", "fundrais", "funding", "raise", "capital", "vc", "angel", "seed", "series"},
		build: func(goal string) Strategy {
			return Strategy{
				ValueFlow:       ValueFlowToMe,
				ImplicitAsk:     "Seeking investors for: " + goal,
				Persona:         "Investors & VCs",
				AnchorDomain:    "Technology / AI",
				Keywords:        []string{"investor", "venture", "capital", "fund", "angel", "partner", "portfolio"},
				BoostWords:      []string{"partner", "managing director", "general partner", "principal", "managing partner", "vp", "deal partner"},
				CompanyWords:    []string{"capital", "ventures", "partners", "fund", "holdings", "investments", "angels"},
				NegativeWords:   []string{"intern", "student", "freelance", "assistant"},
				Rubric:          "Tier1(9-10): Partners/GPs at known VC firms. Tier2(7-8): Founders of funded startups, angels. Tier3(5-6): Tangentially related. Tier4(0-4): Not investors.",
				PrioritySignals: []string{"partner at", "managing director", "venture capital", "angel investor", "general partner", "fund manager"},
			}
		},
	},
	{
		name:     "hiring",
		triggers: []string{"hire", "hiring", "job", "recruit", "employee", "engineer", "developer", "designer", "work on", "work for"},
		build: func(goal string) Strategy {
			return Strategy{
				ValueFlow:       ValueFlowToMe,
				ImplicitAsk:     "Looking to hire: " + goal,
				Persona:         "Hiring Managers",
				AnchorDomain:    "Technology / AI",
				Keywords:        []string{"engineer", "developer", "manager", "director", "head", "lead", "cto", "vp", "founder"},
				BoostWords:      []string{"vp", "director", "head of", "cto", "ceo", "founder", "lead", "manager", "principal"},
				NegativeWords:   []string{"intern", "student", "freelance", "assistant", "partner at fund", "investor"},
				Rubric:          "Tier1(9-10): Right role at strong company. Tier2(7-8): Related role. Tier3(5-6): Tangential. Tier4(0-4): Irrelevant.",
				PrioritySignals: []string{"engineer", "developer", "machine learning", "ai", "software", "data scientist"},
			}
		},
	},
	{
		name:     "partnership",
		triggers: []string{"partner", "partnership", "distribution", "integrate", "integration", "resell", "co-sell", "channel", "agency"},
		build: func(goal string) Strategy {
			return Strategy{
				ValueFlow:       ValueFlowBetween,
				ImplicitAsk:     "Finding distribution/integration/channel partners for: " + goal,
				Persona:         "Partnership & Distribution Leaders",
				AnchorDomain:    "Technology / SaaS / GTM",
				Keywords:        []string{"partnerships", "business development", "alliances", "integrations", "agency", "operations", "platform", "ecosystem"},
				BoostWords:      []string{"vp", "director", "head of", "ceo", "founder", "managing director", "gm"},
				CompanyWords:    []string{"agency", "solutions", "consulting", "platform", "services"},
				NegativeWords:   []string{"intern", "student", "freelance", "assistant"},
				Rubric:          "Tier1(9-10): Leaders at agencies/BPOs/complementary SaaS with distribution leverage. Tier2(7-8): Leaders at tech companies with integration potential. Tier3(5-6): Relevant but individual contributors or small companies. Tier4(0-4): End-users or unrelated industries.",
				PrioritySignals: []string{"partnerships", "business development", "alliances", "agency", "outsourced sales", "integration", "platform"},
			}
		},
	},
	{
		name:     "sales",
		triggers: []string{"sell", "sales", "pilot", "client", "customer", "buyer", "deal", "revenue"},
		build: func(goal string) Strategy {
			return Strategy{
				ValueFlow:       ValueFlowFromMe,
				ImplicitAsk:     "Finding buyers/pilots for: " + goal,
				Persona:         "Budget Holders",
				AnchorDomain:    "Technology",
				Keywords:        []string{"director", "head", "vp", "manager", "operations", "growth", "revenue"},
				BoostWords:      []string{"vp", "director", "head of", "chief", "svp"},
				NegativeWords:   []string{"intern", "student", "freelance", "assistant"},
				Rubric:          "Tier1(9-10): Budget holders at relevant companies. Tier2(7-8): Related decision makers. Tier3(5-6): Tangential. Tier4(0-4): No authority.",
				PrioritySignals: []string{"head of", "vp", "director", "operations", "growth"},
			}
		},
	},
}

func genericStrategy(goal string) Strategy {
	return Strategy{
		ValueFlow:     ValueFlowBetween,
		ImplicitAsk:   truncateRunes(goal, 200),
		Persona:       truncateRunes(goal, 80),
		AnchorDomain:  "Technology",
		Keywords:      []string{"director", "manager", "head", "vp", "founder", "lead"},
		BoostWords:    []string{"vp", "director", "head of", "founder", "cto"},
		NegativeWords: []string{"intern", "student"},
		Rubric:        "Score based on relevance to the user's goal.",
	}
}

// FallbackStrategy classifies goal against the fixed intent vocabularies and
// returns the matching template, or a generic one.
func FallbackStrategy(goal string) Strategy {
	lower := strings.ToLower(goal)
	s, name := genericStrategy(goal), "generic"
	for _, in := range intents {
		if containsAnyToken(lower, in.triggers) {
			s, name = in.build(goal), in.name
			break
		}
	}
	s.Source = SourceFallback
	zap.L().Debug("fallback strategy", zap.String("intent", name))
	return s
}

func containsAnyToken(text string, tokens []string) bool {
	for _, t := range tokens {
		if t != "" && strings.Contains(text, t) {
			return true
		}
	}
	return false
}
