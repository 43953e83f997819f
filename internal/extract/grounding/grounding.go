// Package grounding verifies that a candidate value extracted by any tier is
// actually present in the source text. It is the single anti-hallucination
// gate for model-produced values.
package grounding

import "strings"

// MatchKind describes how a candidate value was located in the source.
type MatchKind string

const (
	MatchExact           MatchKind = "exact"
	MatchPartialComposed MatchKind = "partial-composed"
	MatchNone            MatchKind = "none"
)

// Verdict is the outcome of a grounding check.
type Verdict struct {
	Exists bool
	Kind   MatchKind
}

// Verify reports whether candidate appears in source, either verbatim or,
// for slash/ampersand-joined compounds like "Frontend/Backend Developer",
// with every component independently present. Both sides are compared
// lowercased with whitespace collapsed.
func Verify(candidate, source string) Verdict {
	c := normalize(candidate)
	s := normalize(source)

	if c == "" || s == "" {
		return Verdict{Exists: false, Kind: MatchNone}
	}

	if strings.Contains(s, c) {
		return Verdict{Exists: true, Kind: MatchExact}
	}

	if parts := splitCompound(c); len(parts) > 1 {
		for _, part := range parts {
			if !strings.Contains(s, part) {
				return Verdict{Exists: false, Kind: MatchNone}
			}
		}
		return Verdict{Exists: true, Kind: MatchPartialComposed}
	}

	return Verdict{Exists: false, Kind: MatchNone}
}

// EffectiveTrust combines a tier's stated confidence with groundedness. An
// ungrounded value carries no trust regardless of how confident the tier was.
func EffectiveTrust(confidence float64, verdict Verdict) float64 {
	if !verdict.Exists {
		return 0
	}
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

func splitCompound(candidate string) []string {
	fields := strings.FieldsFunc(candidate, func(r rune) bool {
		return r == '/' || r == '&'
	})

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
