package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/leadloom-cli/internal/leads"
	"github.com/KaramelBytes/leadloom-cli/internal/scoring"
)

// Markdown renders an analysis result for terminals and documents.
func Markdown(res *scoring.Result) string {
	var b strings.Builder
	s := res.Strategy
	b.WriteString("[STRATEGY]\n")
	fmt.Fprintf(&b, "Persona: %s\n", safeVal(s.Persona))
	fmt.Fprintf(&b, "Value flow: %s\n", s.ValueFlow)
	if s.ImplicitAsk != "" {
		fmt.Fprintf(&b, "Implicit ask: %s\n", safeVal(s.ImplicitAsk))
	}
	if s.AnchorDomain != "" {
		fmt.Fprintf(&b, "Anchor domain: %s\n", safeVal(s.AnchorDomain))
	}
	if s.SummaryAnalysis != "" {
		fmt.Fprintf(&b, "Summary: %s\n", safeVal(s.SummaryAnalysis))
	}
	if len(s.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(s.Keywords, ", "))
	}
	fmt.Fprintf(&b, "Source: %s\n\n", s.Source)

	b.WriteString("[RUN]\n")
	fmt.Fprintf(&b, "Rows: %d, candidates: %d, batches: %d", res.TotalRows, res.Candidates, res.Batches)
	if res.FailedBatches > 0 {
		fmt.Fprintf(&b, " (%d failed)", res.FailedBatches)
	}
	b.WriteString("\n\n")

	b.WriteString("[RESULTS]\n")
	if len(res.Leads) == 0 {
		b.WriteString("No leads met the score threshold.\n")
		return b.String()
	}
	b.WriteString("| # | Score | Name | Role | Company | Reasoning |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for i, l := range res.Leads {
		fmt.Fprintf(&b, "| %d | %.1f | %s | %s | %s | %s |\n", i+1, l.Score,
			safeName(l.Name), safeVal(l.Role), safeVal(l.Company), safeVal(l.Reasoning))
	}
	return b.String()
}

// Dataset summarizes a normalized table: detected layout, column mapping and
// how many rows carry each canonical field.
func Dataset(t *leads.Table) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if t.Source != "" {
		fmt.Fprintf(&b, "File: %s\n", t.Source)
	}
	fmt.Fprintf(&b, "Rows: %d\n", t.Len())
	fmt.Fprintf(&b, "Columns: %d\n", len(t.Columns))
	if t.Delimiter != 0 {
		fmt.Fprintf(&b, "Delimiter: %s\n", delimiterName(t.Delimiter))
	}
	if t.HeaderOffset > 0 {
		fmt.Fprintf(&b, "Header line: %d\n", t.HeaderOffset+1)
	}

	b.WriteString("\n[SCHEMA]\n")
	sources := make(map[leads.Field]string, len(t.Mapping))
	for col, f := range t.Mapping {
		sources[f] = col
	}
	for _, f := range leads.CanonicalFields {
		filled := 0
		for _, r := range t.Rows {
			if r.Field(f) != "" {
				filled++
			}
		}
		pct := 0.0
		if t.Len() > 0 {
			pct = float64(filled) * 100 / float64(t.Len())
		}
		fmt.Fprintf(&b, "- %s: %d filled (%.1f%%)", f, filled, pct)
		if src, ok := sources[f]; ok && src != string(f) {
			fmt.Fprintf(&b, " from %q", src)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func delimiterName(r rune) string {
	switch r {
	case '\t':
		return "tab"
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	case '|':
		return "pipe"
	}
	return string(r)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return safeVal(s)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
