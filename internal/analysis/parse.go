package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errNoJSONObject = errors.New("no JSON object in response")

// ExtractJSONObject strips markdown code fences and returns the first balanced
// top-level {...} span of text. Braces inside JSON strings are ignored.
func ExtractJSONObject(text string) (string, error) {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```JSON", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", errNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unterminated JSON object: %w", errNoJSONObject)
}

// DecodeStructured extracts and decodes the JSON object of a structured reply.
func DecodeStructured(text string, v interface{}) error {
	obj, err := ExtractJSONObject(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("failed to decode model JSON: %w", err)
	}
	return nil
}

// looseBool accepts true/false as JSON booleans, strings, numbers (non-zero is
// true) or null.
type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			*b = looseBool(strings.EqualFold(strings.TrimSpace(s), "yes"))
			return nil
		}
		*b = looseBool(v)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*b = looseBool(n != 0)
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = looseBool(v)
	return nil
}

// looseStrings accepts a list of strings, a single string or null.
type looseStrings []string

func (l *looseStrings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if strings.TrimSpace(one) == "" {
			*l = nil
		} else {
			*l = []string{one}
		}
		return nil
	}
	var items []interface{}
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

type privacyReport struct {
	Summary       string       `json:"summary"`
	Risks         looseStrings `json:"risks"`
	RecommendBlur looseBool    `json:"recommendBlur"`
}

type searchReport struct {
	MatchFound  looseBool `json:"matchFound"`
	Confidence  string    `json:"confidence"`
	Description string    `json:"description"`
	Timestamp   string    `json:"timestamp"`
}
