package patch

import "strings"

const fence = "```"

// ExtractJSON finds a JSON object in assistant text. A fenced block
// tagged json wins, then any fenced block holding an object, then the
// first balanced {...} span.
func ExtractJSON(text string) (string, bool) {
	if i := strings.Index(text, fence+"json"); i >= 0 {
		if body, _, ok := fencedBlock(text[i:]); ok {
			return body, true
		}
	}
	for rest := text; ; {
		i := strings.Index(rest, fence)
		if i < 0 {
			break
		}
		body, next, ok := fencedBlock(rest[i:])
		if !ok {
			break
		}
		if strings.HasPrefix(body, "{") {
			return body, true
		}
		rest = rest[i+next:]
	}
	return balancedObject(text)
}

// fencedBlock parses the block opened at the start of text. It returns
// the trimmed body without the language tag and the offset just past the
// closing fence.
func fencedBlock(text string) (string, int, bool) {
	body := text[len(fence):]
	end := strings.Index(body, fence)
	if end < 0 {
		return "", 0, false
	}
	next := len(fence) + end + len(fence)
	body = body[:end]

	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		tag := strings.TrimSpace(body[:nl])
		if tag != "" && !strings.ContainsAny(tag, "{[") {
			body = body[nl+1:]
		}
	} else {
		body = strings.TrimPrefix(body, "json")
	}
	return strings.TrimSpace(body), next, true
}

// balancedObject returns the first {...} span whose braces balance,
// ignoring braces inside JSON strings.
func balancedObject(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		depth := 0
		inString, escaped := false, false
		for i := start; i < len(text); i++ {
			c := text[i]
			switch {
			case escaped:
				escaped = false
			case inString && c == '\\':
				escaped = true
			case c == '"':
				inString = !inString
			case inString:
			case c == '{':
				depth++
			case c == '}':
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}
