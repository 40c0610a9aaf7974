package scoring

import (
	"sort"

	"github.com/KaramelBytes/leadloom-cli/internal/leads"
)

// ScoredLead is one ranked result.
type ScoredLead struct {
	Name           string  `json:"name"`
	Company        string  `json:"company"`
	Role           string  `json:"role"`
	Score          float64 `json:"score"`
	Reasoning      string  `json:"reasoning"`
	SymmetricValue string  `json:"symmetric_value"`
	Industry       string  `json:"industry,omitempty"`
	Location       string  `json:"location,omitempty"`
	URL            string  `json:"url,omitempty"`
	Email          string  `json:"email,omitempty"`
}

// Rank joins candidates with their results, keeps scores of at least
// minScore, and returns up to limit leads by descending score. Equal scores
// keep candidate order.
func Rank(candidates []leads.Lead, results []ScoreResult, minScore float64, limit int) []ScoredLead {
	n := min(len(candidates), len(results))
	out := make([]ScoredLead, 0, n)
	for i := 0; i < n; i++ {
		r := results[i]
		if r.Score < minScore {
			continue
		}
		out = append(out, newScoredLead(candidates[i], r))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func newScoredLead(l leads.Lead, r ScoreResult) ScoredLead {
	p := l.Profile()
	return ScoredLead{
		Name:           p.Name(),
		Company:        p[leads.FieldCompany],
		Role:           p[leads.FieldPosition],
		Score:          r.Score,
		Reasoning:      r.Reasoning,
		SymmetricValue: r.SymmetricValue,
		Industry:       p[leads.FieldIndustry],
		Location:       p[leads.FieldLocation],
		URL:            l.Field(leads.FieldURL),
		Email:          l.Field(leads.FieldEmail),
	}
}
