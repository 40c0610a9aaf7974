package leads

import (
	"encoding/csv"
	"strings"
	"unicode/utf8"
)

const (
	// minVariantLen and minCellLen gate substring matches so that short
	// tokens like "org" or "id" do not produce spurious hits.
	minVariantLen = 4
	minCellLen    = 3
)

var flattener = strings.NewReplacer(" ", "", "-", "", "_", "")

// flatten lowercases s and removes spaces, hyphens and underscores.
func flatten(s string) string {
	return flattener.Replace(strings.ToLower(strings.TrimSpace(s)))
}

func exactMatch(cell, flat, variant string) bool {
	return cell == variant || flat == flattener.Replace(variant)
}

func fuzzyMatch(cell, variant string) bool {
	if utf8.RuneCountInString(variant) < minVariantLen || utf8.RuneCountInString(cell) < minCellLen {
		return false
	}
	return strings.Contains(cell, variant) || strings.Contains(variant, cell)
}

// headerMatchCount counts how many distinct canonical fields have at least one
// cell in line that looks like one of their header variants.
func headerMatchCount(line string) int {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	row, err := r.Read()
	if err != nil {
		return 0
	}
	seen := make(map[Field]struct{}, len(vocabulary))
	for _, raw := range row {
		cell := strings.ToLower(strings.TrimSpace(raw))
		if cell == "" {
			continue
		}
		flat := flatten(raw)
		for _, fv := range vocabulary {
			if _, ok := seen[fv.field]; ok {
				continue
			}
			for _, v := range fv.variants {
				if exactMatch(cell, flat, v) || fuzzyMatch(cell, v) {
					seen[fv.field] = struct{}{}
					break
				}
			}
		}
	}
	return len(seen)
}

// LocateHeader returns the index of the line within the first scanLines lines
// that looks most like a header row, and the number of fields it matched.
// Ties keep the earliest line; with no matches at all the offset is 0.
func LocateHeader(lines []string, scanLines int) (offset, matches int) {
	if scanLines <= 0 || scanLines > len(lines) {
		scanLines = len(lines)
	}
	for i, line := range lines[:scanLines] {
		if n := headerMatchCount(line); n > matches {
			offset, matches = i, n
		}
	}
	return offset, matches
}
