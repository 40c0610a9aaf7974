package scoring

import (
	"testing"

	"github.com/KaramelBytes/leadloom-cli/internal/leads"
)

func TestRankThresholdOrderAndLimit(t *testing.T) {
	tbl := peopleTable(t, 6, func(int) string { return "Founder" })
	results := []ScoreResult{
		{Score: 5.99, Reasoning: "below"},
		{Score: 6, Reasoning: "edge"},
		{Score: 9, Reasoning: "top"},
		{Score: 7, Reasoning: "tie-a"},
		{Score: 7, Reasoning: "tie-b"},
		{Reasoning: ReasonAnalysisFailed},
	}
	ranked := Rank(tbl.Rows, results, 6, 20)
	want := []string{"top", "tie-a", "tie-b", "edge"}
	if len(ranked) != len(want) {
		t.Fatalf("expected %d leads, got %+v", len(want), ranked)
	}
	for i, w := range want {
		if ranked[i].Reasoning != w {
			t.Fatalf("position %d: got %q, want %q", i, ranked[i].Reasoning, w)
		}
	}
	if ranked[0].Name != "Person 3" || ranked[0].Company != "Company 3" || ranked[0].Role != "Founder" {
		t.Fatalf("lead fields not carried: %+v", ranked[0])
	}

	if got := Rank(tbl.Rows, results, 6, 2); len(got) != 2 || got[1].Reasoning != "tie-a" {
		t.Fatalf("limit not applied: %+v", got)
	}
}

func TestRankUsesProfileFallbacks(t *testing.T) {
	l := leads.NewLead([]string{"Name", "Employer", "Job Title"}, map[string]string{
		"Name":      "Ada Lovelace",
		"Employer":  "Analytical Engines",
		"Job Title": "Chief Scientist",
		"URL":       "https://example.com/ada",
	})
	ranked := Rank([]leads.Lead{l}, []ScoreResult{{Score: 8}}, 6, 20)
	if len(ranked) != 1 {
		t.Fatalf("expected one lead, got %d", len(ranked))
	}
	got := ranked[0]
	if got.Name != "Ada Lovelace" || got.Company != "Analytical Engines" || got.Role != "Chief Scientist" || got.URL != "https://example.com/ada" {
		t.Fatalf("unexpected lead %+v", got)
	}
}
