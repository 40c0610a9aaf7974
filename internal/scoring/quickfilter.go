package scoring

import (
	"sort"
	"strings"

	"github.com/KaramelBytes/leadloom-cli/internal/leads"
)

// QuickScore is the cheap relevance heuristic used to rank rows before the
// oracle sees them. Matching is case-insensitive substring containment.
func QuickScore(l leads.Lead, s Strategy) float64 {
	p := l.Profile()
	position := strings.ToLower(p[leads.FieldPosition])
	company := strings.ToLower(p[leads.FieldCompany])
	text := position + " " + company

	var score float64
	score += countMatches(text, s.Keywords)
	score += 2 * countMatches(position, s.BoostWords)
	score += 2 * countMatches(company, s.CompanyWords)
	score += countMatches(text, s.PrioritySignals)
	score -= 5 * countMatches(position, s.NegativeWords)
	return score
}

func countMatches(text string, tokens []string) float64 {
	var n float64
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && strings.Contains(text, t) {
			n++
		}
	}
	return n
}

// TopCandidates scores every row and returns the k best, ties in original
// order. It only ranks: when fewer than k rows exist all are returned, even
// with non-positive scores. rows is not modified.
func TopCandidates(rows []leads.Lead, s Strategy, k int) []leads.Lead {
	ranked := make([]leads.Lead, len(rows))
	copy(ranked, rows)
	for i := range ranked {
		ranked[i].QuickScore = QuickScore(ranked[i], s)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].QuickScore > ranked[j].QuickScore
	})
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
