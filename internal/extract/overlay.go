package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Keyword sets checked in priority order against the lower-cased title.
// Title-keyword mapping is the single source of truth for category, so the
// assigned category stays stable even when an upstream model disagrees.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryDeveloper, []string{
		"developer", "engineer", "programmer", "devops", "software",
		"backend", "frontend", "full stack", "fullstack", "architect",
		"tester", "qa", "sde", "data scientist", "android", "ios",
	}},
	{CategoryWebDesigner, []string{
		"designer", "ui", "ux", "graphic", "web design", "figma",
	}},
	{CategoryRecruiter, []string{
		"recruiter", "recruitment", "talent acquisition", "sourcer",
		"human resources", "hr executive", "hr manager",
	}},
	{CategorySalesMarketing, []string{
		"sales", "marketing", "business development", "seo",
		"content writer", "social media", "growth",
	}},
}

// CategoryFromTitle maps a title to its category via the keyword sets.
// Short keywords ("qa", "ui") are matched as whole tokens so they do not fire
// inside unrelated words; longer ones are matched as substrings.
func CategoryFromTitle(title string) Category {
	if title == "" || title == Unclear {
		return CategoryUnclear
	}

	lower := strings.ToLower(title)
	tokens := tokenize(lower)

	for _, set := range categoryKeywords {
		for _, keyword := range set.keywords {
			if len(keyword) <= 3 {
				if tokens[keyword] {
					return set.category
				}
				continue
			}
			if strings.Contains(lower, keyword) {
				return set.category
			}
		}
	}

	return CategoryUnclear
}

func tokenize(lower string) map[string]bool {
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})

	tokens := make(map[string]bool, len(fields))
	for _, field := range fields {
		tokens[field] = true
	}
	return tokens
}

var (
	yearsExpPattern   = regexp.MustCompile(`(?i)\b(\d{1,2})(?:\.\d+)?\+?\s*(?:years?|yrs?)\b`)
	fresherPattern    = regexp.MustCompile(`(?i)\b(?:fresher|fresh\s+graduate|recent\s+graduate|no\s+(?:prior\s+)?experience|intern(?:ship)?\s+(?:seeker|candidate))\b`)
	singleYearPattern = regexp.MustCompile(`(?i)\b(?:1|one)\s*(?:year|yr)\b`)
)

// ExperienceFromText applies the explicit textual marker chain: a stated
// years-of-experience figure pre-empts fresher markers, which pre-empt the
// single-year rule. The second return value is false when no marker matched.
//
// A single year of experience counts as experienced. Borderline, but that is
// the established triage behavior; see the pinned test before changing it.
func ExperienceFromText(text string) (Experience, bool) {
	if match := yearsExpPattern.FindStringSubmatch(text); match != nil {
		if years, err := strconv.Atoi(match[1]); err == nil && years >= 2 {
			return Experienced, true
		}
	}

	if fresherPattern.MatchString(text) {
		return Fresher, true
	}

	if singleYearPattern.MatchString(text) {
		return Experienced, true
	}

	return ExperienceUnclear, false
}

// ApplyOverlay normalizes a tier result: category is recomputed from the
// title keywords, and an unclear experience status is filled from explicit
// textual markers when the source text carries any.
func ApplyOverlay(result *Result, sourceText string) *Result {
	if result == nil {
		return nil
	}

	if category := CategoryFromTitle(result.JobTitle); category != CategoryUnclear {
		result.Category = category
	}

	if result.ExperienceStatus == "" {
		result.ExperienceStatus = ExperienceUnclear
	}

	if result.ExperienceStatus == ExperienceUnclear {
		if experience, ok := ExperienceFromText(sourceText); ok {
			result.ExperienceStatus = experience
		}
	}

	return result
}
