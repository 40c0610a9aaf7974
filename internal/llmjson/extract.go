// Package llmjson recovers JSON payloads from free-form model output.
package llmjson

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("```(?:json|JSON)?")

// wrapperKeys are object keys models commonly use to wrap a result list.
var wrapperKeys = []string{"results", "leads", "data", "scores"}

// Extract returns the first JSON value found in text. Markdown fences are
// removed, then the whole text is tried, then each balanced [...] in order
// of appearance and finally each balanced {...}.
func Extract(text string) (any, bool) {
	return extract(text, '[', '{')
}

// ExtractObject is Extract for callers that expect a JSON object. When the
// text parses to something else, the first balanced {...} is tried instead.
func ExtractObject(text string) (map[string]any, bool) {
	if v, ok := Extract(text); ok {
		if m, ok := v.(map[string]any); ok {
			return m, true
		}
	}
	v, ok := extract(text, '{')
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

func extract(text string, opens ...byte) (any, bool) {
	s := strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
	if s == "" {
		return nil, false
	}
	if v, ok := decode(s); ok {
		return v, true
	}
	for _, open := range opens {
		for from := 0; from < len(s); {
			i := strings.IndexByte(s[from:], open)
			if i < 0 {
				break
			}
			start := from + i
			if end := matchingClose(s, start); end >= 0 {
				if v, ok := decode(s[start : end+1]); ok {
					return v, true
				}
			}
			from = start + 1
		}
	}
	return nil, false
}

// Unwrap returns the list stored under a conventional wrapper key when v is
// an object holding one. Any other value is returned unchanged.
func Unwrap(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for _, k := range wrapperKeys {
		if list, ok := m[k].([]any); ok {
			return list
		}
	}
	return v
}

func decode(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

// matchingClose returns the index of the bracket closing s[start], skipping
// brackets inside string literals. It returns -1 when unbalanced.
func matchingClose(s string, start int) int {
	open := s[start]
	closer := byte(']')
	if open == '{' {
		closer = '}'
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
