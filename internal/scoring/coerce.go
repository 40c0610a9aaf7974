package scoring

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// stringField renders any decoded JSON value as text. Objects become
// "k: v | k: v" in key order.
func stringField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringField(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+stringField(t[k]))
		}
		return strings.Join(parts, " | ")
	default:
		return fmt.Sprint(t)
	}
}

// stringList accepts a JSON array or a comma-separated string and returns
// lowercase, trimmed, non-empty tokens.
func stringList(v any) []string {
	var raw []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			raw = append(raw, stringField(item))
		}
	case string:
		raw = strings.Split(t, ",")
	default:
		return nil
	}
	return lowerTokens(raw)
}

func lowerTokens(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// coerceScore converts a score field to float64, returning 0 on any failure.
func coerceScore(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = p
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// coerceID converts a declared result id to an int. Fractional and
// non-numeric ids are rejected.
func coerceID(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
