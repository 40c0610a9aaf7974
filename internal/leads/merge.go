package leads

import (
	"strings"

	"go.uber.org/zap"
)

// Merge concatenates tables and drops duplicate leads, keeping the first
// occurrence. Rows are keyed by profile URL, or by first name, last name and
// company when the URL is blank. Rows with no key at all are always kept.
func Merge(tables ...*Table) (*Table, error) {
	out := &Table{}
	seenCol := make(map[string]bool)
	var sources []string
	for _, t := range tables {
		if t == nil {
			continue
		}
		if t.Source != "" {
			sources = append(sources, t.Source)
		}
		for _, c := range t.Columns {
			if !seenCol[c] {
				seenCol[c] = true
				out.Columns = append(out.Columns, c)
			}
		}
		if len(tables) == 1 {
			out.Delimiter = t.Delimiter
			out.HeaderOffset = t.HeaderOffset
			out.Mapping = t.Mapping
		}
	}
	out.Source = strings.Join(sources, ",")

	seen := make(map[string]struct{})
	total := 0
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, row := range t.Rows {
			total++
			key := dedupeKey(row)
			if key != "" {
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
			}
			out.Rows = append(out.Rows, row)
		}
	}
	zap.L().Debug("leads merged",
		zap.Int("tables", len(tables)),
		zap.Int("rows_in", total),
		zap.Int("rows_out", len(out.Rows)),
	)
	if len(out.Rows) == 0 {
		return nil, inputError(out.Source, ErrNoRows)
	}
	return out, nil
}

func dedupeKey(l Lead) string {
	if u := strings.ToLower(strings.TrimSpace(l.Field(FieldURL))); u != "" {
		return "url:" + u
	}
	first := strings.ToLower(strings.TrimSpace(l.Field(FieldFirstName)))
	last := strings.ToLower(strings.TrimSpace(l.Field(FieldLastName)))
	company := strings.ToLower(strings.TrimSpace(l.Field(FieldCompany)))
	if first == "" && last == "" && company == "" {
		return ""
	}
	return "name:" + first + "|" + last + "|" + company
}
