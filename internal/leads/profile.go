package leads

import "strings"

// profileFields are the fields a profile may carry, in prompt order.
var profileFields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldPosition,
	FieldCompany,
	FieldIndustry,
	FieldLocation,
}

// Profile is the non-empty subset of a lead's identifying fields.
type Profile map[Field]string

// Name returns the trimmed "First Last" name.
func (p Profile) Name() string {
	return strings.TrimSpace(p[FieldFirstName] + " " + p[FieldLastName])
}

// Profile extracts the lead's profile. Canonical values come first. Fields
// still empty are looked up in the unmapped source columns by header keyword,
// and as a last resort a full-name column is split.
func (l Lead) Profile() Profile {
	p := make(Profile, len(profileFields))
	for _, f := range profileFields {
		if v := strings.TrimSpace(l.Values[string(f)]); v != "" {
			p[f] = v
		}
	}

	cols := l.Columns()
	for _, h := range profileHints {
		if p[h.field] != "" {
			continue
		}
		for _, col := range cols {
			if isCanonical(col) {
				continue
			}
			lower := strings.ToLower(strings.TrimSpace(col))
			if !containsAny(lower, h.variants) {
				continue
			}
			if v := strings.TrimSpace(l.Values[col]); v != "" {
				p[h.field] = v
				break
			}
		}
	}

	if p[FieldFirstName] == "" && p[FieldLastName] == "" {
		for _, col := range cols {
			if _, ok := fullNameColumns[strings.ToLower(strings.TrimSpace(col))]; !ok {
				continue
			}
			first, last := SplitName(l.Values[col])
			if first == "" {
				continue
			}
			p[FieldFirstName] = first
			if last != "" {
				p[FieldLastName] = last
			}
			break
		}
	}
	return p
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
