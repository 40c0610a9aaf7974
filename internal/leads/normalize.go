package leads

import (
	"fmt"
	"strings"
	"unicode"
)

// buildTable renames mapped columns to their canonical names, back-fills the
// canonical columns that are absent, splits a full-name column when the name
// fields are missing and blanks out missing-value tokens.
func buildTable(header []string, records [][]string, mapping map[string]Field) *Table {
	names := renameColumns(header, mapping)

	columns := append([]string(nil), names...)
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	for _, f := range CanonicalFields {
		if !present[string(f)] {
			columns = append(columns, string(f))
		}
	}

	rows := make([]Lead, 0, len(records))
	for _, rec := range records {
		values := make(map[string]string, len(columns))
		for i, name := range names {
			if i < len(rec) {
				values[name] = cleanCell(rec[i])
			} else {
				values[name] = ""
			}
		}
		for _, f := range CanonicalFields {
			if _, ok := values[string(f)]; !ok {
				values[string(f)] = ""
			}
		}
		rows = append(rows, Lead{Values: values, cols: columns})
	}

	t := &Table{Columns: columns, Rows: rows, Mapping: mapping}
	splitFullNames(t, present)
	return t
}

// renameColumns returns the output name of every source column. An unmapped
// column whose name collides with a claimed canonical name gets a numeric suffix.
func renameColumns(header []string, mapping map[string]Field) []string {
	claimed := make(map[string]bool, len(mapping))
	for _, f := range mapping {
		claimed[string(f)] = true
	}
	names := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	for i, col := range header {
		if f, ok := mapping[col]; ok {
			names[i] = string(f)
			taken[string(f)] = true
		}
	}
	for i, col := range header {
		if _, ok := mapping[col]; ok {
			continue
		}
		name := col
		for n := 1; taken[name] || claimed[name]; n++ {
			name = fmt.Sprintf("%s.%d", col, n)
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

// cleanCell trims a cell and maps missing-value tokens to "".
func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	if _, ok := missingTokens[strings.ToLower(v)]; ok {
		return ""
	}
	return v
}

// splitFullNames fills First Name and Last Name from a full-name column when
// either field is absent from the source or empty on every row. Cells that
// already hold a value are left alone.
func splitFullNames(t *Table, present map[string]bool) {
	nameCol := ""
	for _, c := range t.Columns {
		if _, ok := fullNameColumns[strings.ToLower(strings.TrimSpace(c))]; ok {
			nameCol = c
			break
		}
	}
	if nameCol == "" {
		return
	}
	needFirst := !present[string(FieldFirstName)] || columnEmpty(t.Rows, string(FieldFirstName))
	needLast := !present[string(FieldLastName)] || columnEmpty(t.Rows, string(FieldLastName))
	if !needFirst && !needLast {
		return
	}
	for _, row := range t.Rows {
		first, last := SplitName(row.Values[nameCol])
		if needFirst && row.Values[string(FieldFirstName)] == "" {
			row.Values[string(FieldFirstName)] = first
		}
		if needLast && row.Values[string(FieldLastName)] == "" {
			row.Values[string(FieldLastName)] = last
		}
	}
}

func columnEmpty(rows []Lead, col string) bool {
	for _, r := range rows {
		if r.Values[col] != "" {
			return false
		}
	}
	return true
}

// SplitName splits a full name on the first run of whitespace.
func SplitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	i := strings.IndexFunc(full, unicode.IsSpace)
	if i < 0 {
		return full, ""
	}
	return full[:i], strings.TrimLeftFunc(full[i:], unicode.IsSpace)
}
