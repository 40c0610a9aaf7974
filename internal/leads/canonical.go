package leads

import "strings"

// Canonicalize maps source column names to canonical fields. Each canonical
// field is claimed by at most one column and each column maps to at most one
// field. Exact matches are assigned for every column before any fuzzy match is
// considered, so a loose match arriving earlier in column order can never take
// a slot that an exact match elsewhere would have claimed.
func Canonicalize(columns []string) map[string]Field {
	used := make(map[Field]struct{}, len(vocabulary))
	mapping := make(map[string]Field)

	claim := func(col string, match func(v string) bool) {
		for _, fv := range vocabulary {
			if _, ok := used[fv.field]; ok {
				continue
			}
			for _, v := range fv.variants {
				if match(v) {
					mapping[col] = fv.field
					used[fv.field] = struct{}{}
					return
				}
			}
		}
	}

	// exact
	for _, col := range columns {
		raw := strings.TrimSpace(col)
		if raw == "" {
			continue
		}
		cell := strings.ToLower(raw)
		flat := flatten(raw)
		claim(col, func(v string) bool { return exactMatch(cell, flat, v) })
	}

	// fuzzy
	for _, col := range columns {
		if _, ok := mapping[col]; ok {
			continue
		}
		raw := strings.TrimSpace(col)
		if raw == "" {
			continue
		}
		cell := strings.ToLower(raw)
		if _, ok := fullNameColumns[cell]; ok {
			continue
		}
		claim(col, func(v string) bool { return fuzzyMatch(cell, v) })
	}
	return mapping
}
