package scoring

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/leadloom-cli/internal/leads"
)

const strategyInstructions = `Task: Create a Scoring Rubric.

CRITICAL INSTRUCTION:
1. Provide BROADER keywords (e.g. 'Investor' instead of 'SaaS Seed Investor') so the first pass does not miss targets.
2. If the user mentions 'Investors', you MUST include: 'Partner', 'VC', 'Capital', 'Ventures', 'Angel' in keywords.
3. summary_analysis must be a string.

CATEGORY RULES (never mix; understand the EXACT relationship the user wants):
- Job/hire: people with HEADCOUNT at operating companies. VCs score 0.
- Fundraising: people who WRITE CHECKS (VCs/angels). Employees score 0.
- Sales/pilot/client: BUDGET HOLDERS who would BUY and USE the product internally.
- Partner: people who would DISTRIBUTE, RESELL, INTEGRATE, or CO-SELL the product to THEIR customers. Partners are not buyers.
  * A "Partner" at a VC fund is NOT a business partner; that is their job title.
  * An end-user who would use the tool themselves is a CLIENT, not a partner.
- FUNDRAISING ONLY: Partner/GP/MD at a VC fund is a power signal, auto 9-10.
- PARTNER SEARCH: prioritize companies with distribution leverage (agencies, platforms, complementary tools, BPOs). Filter out end-users and unrelated industries.

Return a SINGLE JSON object (values are strings or arrays of strings, NO nested objects):
- value_flow: "to_me"|"from_me"|"between"
- implicit_ask: 1 sentence, hyper-specific (string)
- summary_analysis: 1 sentence insight, no restating the goal (string)
- persona: 2-4 word label (string)
- anchor_domain: short (string)
- keywords: 6-10 for THIS ask (array of strings)
- boost_words: titles for THIS ask (array of strings)
- company_words: company types for THIS ask (array of strings)
- negative_words: always ["Intern","Student","Freelance","Assistant"] plus irrelevant roles (array of strings)
- rubric: "Tier1(9-10): ..., Tier2(7-8): ..., Tier3(5-6): ..., Tier4(0-4): ..." as ONE flat string
- priority_signals: 3-8 short phrases for a fast filter (array of strings)`

func strategyPrompt(goal string, rowCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User Goal: %q\n\n", goal)
	b.WriteString(strategyInstructions)
	fmt.Fprintf(&b, "\n\nDataset: %d connections.", rowCount)
	return b.String()
}

const scoringRules = `SCORING RULES (apply to each lead independently):
1. CATEGORY MATCH: understand the EXACT relationship the user wants.
   - Hiring: people at OPERATING COMPANIES with headcount. VCs/investors = 0-2.
   - Fundraising: investors who WRITE CHECKS. Regular employees = 0-2. Prefer an explicit thesis fit; penalize stage mismatch by 1-2 points.
   - Sales/pilot/client: BUDGET HOLDERS who would BUY and USE the product internally.
   - Partner: people who DISTRIBUTE, RESELL, INTEGRATE, or CO-SELL to THEIR OWN CUSTOMERS. Agencies/BPOs and complementary SaaS = 9-10, resellers and GTM consultants = 7-8, end-users = 3-4, unrelated industries = 0-2.
   Wrong category = score 0-2, stop.
2. COMPANY VIABILITY: does this company have the right leverage? Company doesn't fit = cap at 4.
3. DOMAIN + SENIORITY: wrong domain = 0-2. Right domain, wrong level = 5-6.
4. FINAL SCORE (0-10, tough grading):
   9-10: perfect fit. 7-8: strong fit, slightly off on size or seniority. 5-6: decent but tangential. 0-4: wrong type, industry, or no leverage.
5. SYMMETRIC VALUE (2-3 sentences, UNIQUE per lead): a specific argument for why this person and the user benefit each other.
   Fundraising: open with what is specific to THIS fund or person, then connect the user's company to that thesis. Do not fabricate deal history.
   Client/sales: the company's situation, the concrete outcome the user's offering brings, and why this person owns the problem.
   Partner: the distribution math, naming the company.`

// batchPrompt renders one scoring request. Leads are numbered from 1 in row
// order; the oracle echoes these numbers back as ids.
func batchPrompt(goal string, s Strategy, rows []leads.Lead) string {
	implicitAsk := s.ImplicitAsk
	if implicitAsk == "" {
		implicitAsk = goal
	}
	anchor := s.AnchorDomain
	if anchor == "" {
		anchor = "the specified field"
	}
	flow := s.ValueFlow
	if flow == "" {
		flow = ValueFlowBetween
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User's Goal: %q\n", goal)
	fmt.Fprintf(&b, "Implicit Ask: %q\n", implicitAsk)
	fmt.Fprintf(&b, "Value Flow: %s | Anchor Domain: %q\n", flow, anchor)
	fmt.Fprintf(&b, "Rubric: %s\n\n", s.Rubric)
	b.WriteString("LEADS TO SCORE:\n")
	for i, row := range rows {
		b.WriteString(leadLine(i+1, row.Profile()))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(scoringRules)
	b.WriteString("\n\nReturn a JSON array. Each element: {\"id\": <number>, \"score\": <float>, \"symmetric_value\": \"<string>\", \"reasoning\": \"<max 15 words>\"}\n")
	b.WriteString("Return ONLY the JSON array.")
	return b.String()
}

func leadLine(id int, p leads.Profile) string {
	pos := p[leads.FieldPosition]
	if pos == "" {
		pos = "Unknown"
	}
	comp := p[leads.FieldCompany]
	if comp == "" {
		comp = "Unknown"
	}
	line := fmt.Sprintf("%d. %s, %s at %s", id, p.Name(), pos, comp)
	if ind := p[leads.FieldIndustry]; ind != "" {
		line += " | Industry: " + ind
	}
	return line
}
