package leads

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// decodeText turns raw upload bytes into normalized text. Invalid UTF-8 is
// reinterpreted as Latin-1, a leading byte-order mark is dropped and line
// endings are unified to "\n".
func decodeText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	var text string
	if utf8.Valid(data) {
		text = string(data)
	} else {
		b, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		text = string(b)
	}
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = norm.NFC.String(text)
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}
