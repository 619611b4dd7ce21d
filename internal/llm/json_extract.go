package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencePattern matches markdown code fences with an optional language tag.
var fencePattern = regexp.MustCompile(`(?s)` + "```" + `(\w*)\s*\n(.+?)\n` + "```")

// ExtractJSON pulls a JSON object or array out of a model response. Fenced
// blocks tagged json (or untagged) are tried first, then the first raw
// {...} or [...] span with balanced brackets. Models sometimes fence their
// output despite being told not to, so both forms must parse.
func ExtractJSON(response string) (string, error) {
	if jsonStr, found := extractFenced(response); found {
		return jsonStr, nil
	}

	if jsonStr, found := extractRaw(response); found {
		return jsonStr, nil
	}

	return "", fmt.Errorf("no valid JSON object found in response")
}

// extractFenced returns the first fenced block that holds valid JSON.
// Blocks tagged with another language are skipped.
func extractFenced(response string) (string, bool) {
	for _, match := range fencePattern.FindAllStringSubmatch(response, -1) {
		if len(match) < 3 {
			continue
		}

		lang := strings.ToLower(match[1])
		if lang != "" && lang != "json" {
			continue
		}

		content := strings.TrimSpace(match[2])
		if !strings.HasPrefix(content, "{") && !strings.HasPrefix(content, "[") {
			continue
		}
		if validJSON(content) {
			return content, true
		}
	}

	return "", false
}

// extractRaw finds the first bare JSON value in the response.
func extractRaw(response string) (string, bool) {
	startObj := strings.Index(response, "{")
	startArr := strings.Index(response, "[")

	start := -1
	closer := byte('}')
	if startObj >= 0 && (startArr < 0 || startObj < startArr) {
		start = startObj
	} else if startArr >= 0 {
		start = startArr
		closer = ']'
	}
	if start < 0 {
		return "", false
	}

	candidate := balancedSpan(response[start:], closer)
	if candidate != "" && validJSON(candidate) {
		return candidate, true
	}

	return "", false
}

// balancedSpan returns the prefix of s up to the bracket matching s[0],
// honoring string literals and escapes. Empty when unbalanced.
func balancedSpan(s string, closer byte) string {
	if len(s) == 0 {
		return ""
	}

	opener := s[0]
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if c == opener {
			depth++
		} else if c == closer {
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}

	return ""
}

func validJSON(s string) bool {
	var raw json.RawMessage
	return json.Unmarshal([]byte(s), &raw) == nil
}

// ExtractJSONAs extracts JSON from the response and unmarshals it into T.
func ExtractJSONAs[T any](response string) (T, error) {
	var result T

	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return result, nil
}
