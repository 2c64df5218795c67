package inference

import (
	"encoding/json"
	"errors"
	"strings"
)

// ParseState is the stage a structured decode ended in. The remote service
// routinely wraps JSON in explanatory prose or markdown fences, so decoding
// is an explicit two-stage process rather than a single unmarshal.
type ParseState int

const (
	// StateParsed means the strict decode succeeded.
	StateParsed ParseState = iota
	// StateNeedsFallback means the raw text is not valid JSON as-is and an
	// embedded block must be located.
	StateNeedsFallback
	// StateFailed means no structured value could be recovered; this is a
	// permanent failure.
	StateFailed
)

// Outcome is the result of one decode stage.
type Outcome struct {
	State ParseState
	Value interface{}
	Err   error
}

// ErrNoStructuredValue indicates the response carried no decodable JSON.
var ErrNoStructuredValue = errors.New("response contains no structured value")

// DecodeStrict attempts a direct decode of the raw response.
func DecodeStrict(raw string) Outcome {
	var v interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &v); err != nil {
		return Outcome{State: StateNeedsFallback, Err: err}
	}
	return Outcome{State: StateParsed, Value: v}
}

// DecodeFallback strips markdown fences and, failing that, scans for the
// first balanced JSON object or array embedded in the prose.
func DecodeFallback(raw string) Outcome {
	if stripped := stripFences(raw); stripped != raw {
		var v interface{}
		if err := json.Unmarshal([]byte(stripped), &v); err == nil {
			return Outcome{State: StateParsed, Value: v}
		}
	}

	if block := extractBlock(raw); block != "" {
		var v interface{}
		if err := json.Unmarshal([]byte(block), &v); err == nil {
			return Outcome{State: StateParsed, Value: v}
		}
	}

	return Outcome{State: StateFailed, Err: ErrNoStructuredValue}
}

// ExtractStructured runs both decode stages and returns the recovered value,
// or a permanent error when neither stage succeeds.
func ExtractStructured(raw string) (interface{}, error) {
	outcome := DecodeStrict(raw)
	if outcome.State == StateParsed {
		return outcome.Value, nil
	}

	outcome = DecodeFallback(raw)
	if outcome.State == StateParsed {
		return outcome.Value, nil
	}
	return nil, Permanent("parse", outcome.Err)
}

// stripFences removes a leading ```json / ``` fence and a trailing ``` fence.
func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = cleaned[:len(cleaned)-len("```")]
	}
	return strings.TrimSpace(cleaned)
}

// extractBlock returns the first balanced {...} or [...] region, respecting
// string literals and escapes.
func extractBlock(raw string) string {
	start := -1
	var opener, closer byte
	for i := 0; i < len(raw); i++ {
		if raw[i] == '{' {
			start, opener, closer = i, '{', '}'
			break
		}
		if raw[i] == '[' {
			start, opener, closer = i, '[', ']'
			break
		}
	}
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
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
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return ""
}
