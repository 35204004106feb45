package llm

import (
	"strings"
)

// StripCodeFences removes a surrounding markdown code fence such as ```json ... ```.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// ExtractBalanced returns the first balanced span opened by open and closed by
// closer, skipping brackets inside JSON strings. ok is false when none exists.
func ExtractBalanced(s string, open byte, closer byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", false
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
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// CleanJSONObject strips fences and surrounding prose from a model reply that should hold one object.
func CleanJSONObject(s string) string {
	s = StripCodeFences(s)
	if obj, ok := ExtractBalanced(s, '{', '}'); ok {
		return obj
	}
	return s
}
