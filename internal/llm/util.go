// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock recovers a JSON payload from a raw model response in a
// single pass: it strips markdown code fences, then extracts the first
// balanced JSON object or array when the payload is surrounded by prose.
// Input with no recoverable payload is returned unchanged so the caller's
// JSON parse fails and the failure is surfaced as-is.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	// Handle ```json ... ``` blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return extractJSONPayload(strings.TrimSpace(text))
	}

	// Handle generic ``` ... ``` blocks
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			// If first line looks like a language identifier (no spaces, short), skip it
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return extractJSONPayload(strings.TrimSpace(text))
	}

	return extractJSONPayload(text)
}

// extractJSONPayload finds the first JSON object or array in text that may
// carry conversational preamble or trailing commentary.
func extractJSONPayload(text string) string {
	objIdx := strings.Index(text, "{")
	arrIdx := strings.Index(text, "[")

	start := -1
	isArray := false
	switch {
	case objIdx >= 0 && (arrIdx < 0 || objIdx < arrIdx):
		start = objIdx
	case arrIdx >= 0:
		start = arrIdx
		isArray = true
	}
	if start < 0 {
		return text
	}

	var payload string
	if isArray {
		payload = extractJSONArray(text[start:])
	} else {
		payload = extractJSONObject(text[start:])
	}
	if payload == "" {
		return text
	}
	return payload
}

// extractJSONObject returns the balanced JSON object at the start of text,
// or "" if text does not begin one. Braces inside string values are ignored.
func extractJSONObject(text string) string {
	if !strings.HasPrefix(text, "{") {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		if escaped {
			escaped = false
			continue
		}
		switch text[i] {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[:i+1]
				}
			}
		}
	}
	return ""
}

// extractJSONArray returns the balanced JSON array at the start of text,
// or "" if text does not begin one.
func extractJSONArray(text string) string {
	if !strings.HasPrefix(text, "[") {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		if escaped {
			escaped = false
			continue
		}
		switch text[i] {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '[':
			if !inString {
				depth++
			}
		case ']':
			if !inString {
				depth--
				if depth == 0 {
					return text[:i+1]
				}
			}
		}
	}
	return ""
}
