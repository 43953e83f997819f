package generative

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// modelFields is the JSON shape the prompt asks the model to return.
type modelFields struct {
	JobTitle         string  `json:"job_title"`
	Category         string  `json:"category"`
	ExperienceStatus string  `json:"experience_status"`
	CurrentCTC       string  `json:"current_ctc"`
	ExpectedCTC      string  `json:"expected_ctc"`
	WorkExp          string  `json:"work_exp"`
	InterviewTime    string  `json:"interview_time"`
	Location         string  `json:"location"`
	Agreement        string  `json:"agreement"`
	Confidence       float64 `json:"confidence"`
}

// parsed is the tagged outcome of parsing a model response: either Fields is
// valid or Err explains why the response was rejected. The shape is never
// trusted implicitly.
type parsed struct {
	Fields *modelFields
	Err    error
}

var errNoJSONObject = errors.New("no JSON object in response")

// parseResponse scans the raw model output for the first balanced JSON
// object, strips trailing commas, and validates the result against the
// expected shape.
func parseResponse(raw string) parsed {
	object, ok := firstJSONObject(raw)
	if !ok {
		return parsed{Err: errNoJSONObject}
	}

	object = stripTrailingCommas(object)

	var fields modelFields
	if err := json.Unmarshal([]byte(object), &fields); err != nil {
		return parsed{Err: fmt.Errorf("decode model JSON: %w", err)}
	}

	if fields.Confidence < 0 || fields.Confidence > 1 {
		return parsed{Err: fmt.Errorf("confidence %v outside [0,1]", fields.Confidence)}
	}

	return parsed{Fields: &fields}
}

// firstJSONObject returns the first balanced {...} span in raw, tracking
// string literals and escapes so braces inside values do not confuse the
// scan.
func firstJSONObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}

	return "", false
}

// stripTrailingCommas removes commas that directly precede a closing brace or
// bracket, a tolerated model quirk that encoding/json rejects.
func stripTrailingCommas(object string) string {
	var b strings.Builder
	b.Grow(len(object))

	inString := false
	escaped := false

	for i := 0; i < len(object); i++ {
		c := object[i]

		if inString {
			b.WriteByte(c)
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

		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}

		if c == ',' {
			j := i + 1
			for j < len(object) && (object[j] == ' ' || object[j] == '\t' || object[j] == '\n' || object[j] == '\r') {
				j++
			}
			if j < len(object) && (object[j] == '}' || object[j] == ']') {
				continue
			}
		}

		b.WriteByte(c)
	}

	return b.String()
}
