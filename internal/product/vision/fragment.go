package vision

import "errors"

var (
	ErrNoJSON         = errors.New("no JSON found in model reply")
	ErrUnbalancedJSON = errors.New("JSON in model reply is incomplete or unbalanced")
)

// ExtractJSONFragment returns the first complete JSON object or array in text.
// Brackets inside string literals are ignored.
func ExtractJSONFragment(text string) (string, error) {
	start := -1
	var open, closing byte
	for i := 0; i < len(text); i++ {
		if text[i] == '{' || text[i] == '[' {
			start, open = i, text[i]
			break
		}
	}
	if start == -1 {
		return "", ErrNoJSON
	}
	closing = '}'
	if open == '[' {
		closing = ']'
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
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
		case closing:
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", ErrUnbalancedJSON
}
