// Package pattern implements the deterministic first tier of title
// extraction: ordered phrase templates anchored to common application-email
// idioms, applied to the subject first and then the body.
package pattern

import (
	"regexp"
	"strings"
)

const (
	minTitleLen = 3
	maxTitleLen = 60
)

var replyPrefix = regexp.MustCompile(`(?i)^\s*(?:(?:re|fwd?)\s*:\s*)+`)

// Ordered subject templates. The first match wins.
var subjectTemplates = []*regexp.Regexp{
	regexp.MustCompile(`(?i)new application for\s+(.+)$`),
	regexp.MustCompile(`(?i)(?:job )?application for\s+(?:the\s+)?(?:post of\s+)?(.+)$`),
	regexp.MustCompile(`(?i)applying for\s+(?:the\s+)?(?:post of\s+)?(.+)$`),
	regexp.MustCompile(`(?i)apply(?:ing)? to\s+(?:the\s+)?(.+)$`),
	regexp.MustCompile(`(?i)candidate for\s+(?:the\s+)?(.+)$`),
	regexp.MustCompile(`(?i)^(.+?)\s*[-–—]\s*immediate joiner\b`),
	regexp.MustCompile(`(?i)^(?:job )?application\s*[:\-–]\s*(.+)$`),
	regexp.MustCompile(`(?i)resume for\s+(?:the\s+)?(.+)$`),
}

// Body templates run against individual lines and additionally require the
// captured span to contain a role keyword, since free body text matches far
// more loosely than a subject line.
var bodyTemplates = []*regexp.Regexp{
	regexp.MustCompile(`(?i)apply(?:ing)? for\s+(?:the\s+)?([^.,\n]+?)\s+(?:position|role|opening|vacancy|job)\b`),
	regexp.MustCompile(`(?i)application for\s+(?:the\s+)?([^.,\n]+?)\s+(?:position|role|opening|vacancy|job)\b`),
	regexp.MustCompile(`(?i)interested in\s+(?:the\s+)?([^.,\n]+?)\s+(?:position|role|opening|vacancy|job)\b`),
	regexp.MustCompile(`(?i)position of\s+([^.,\n]+)`),
	regexp.MustCompile(`(?i)for the role of\s+([^.,\n]+)`),
	regexp.MustCompile(`(?i)apply(?:ing)? for\s+(?:the\s+)?([^.,\n]+)`),
}

var roleKeywords = []string{
	"developer", "engineer", "designer", "manager", "analyst", "consultant",
	"specialist", "recruiter", "intern", "lead", "architect", "tester",
	"programmer",
}

var (
	parenSuffix   = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	trailingNoise = regexp.MustCompile(`(?i)\s+(?:position|role|job|opening|vacancy|opportunity)\s*$`)
	atCompany     = regexp.MustCompile(`(?i)\s+at\s+\S.*$`)
)

// ExtractTitle applies the subject templates and then the body templates,
// returning the cleaned first match. The second return value is false when no
// template produced an acceptable title.
func ExtractTitle(subject, body string) (string, bool) {
	if title, ok := FromSubject(subject); ok {
		return title, ok
	}
	return fromBody(body)
}

// FromSubject matches the subject line alone, used by the orchestrator's
// short-body fast path.
func FromSubject(subject string) (string, bool) {
	subject = strings.TrimSpace(replyPrefix.ReplaceAllString(subject, ""))
	if subject == "" {
		return "", false
	}

	for _, template := range subjectTemplates {
		match := template.FindStringSubmatch(subject)
		if match == nil {
			continue
		}
		if title, ok := clean(match[1]); ok {
			return title, true
		}
	}

	return "", false
}

func fromBody(body string) (string, bool) {
	if strings.TrimSpace(body) == "" {
		return "", false
	}

	for _, template := range bodyTemplates {
		match := template.FindStringSubmatch(body)
		if match == nil {
			continue
		}
		title, ok := clean(match[1])
		if !ok || !containsRoleKeyword(title) {
			continue
		}
		return title, true
	}

	return "", false
}

func containsRoleKeyword(title string) bool {
	lower := strings.ToLower(title)
	for _, keyword := range roleKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func clean(raw string) (string, bool) {
	title := strings.TrimSpace(raw)
	title = parenSuffix.ReplaceAllString(title, "")
	title = atCompany.ReplaceAllString(title, "")
	for {
		stripped := trailingNoise.ReplaceAllString(title, "")
		if stripped == title {
			break
		}
		title = stripped
	}
	title = strings.Trim(title, " \t.,;:-–—\"'")

	if len(title) < minTitleLen || len(title) > maxTitleLen {
		return "", false
	}

	return title, true
}
