package detect

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/hireloop/mailtriage/internal/email"
)

const minSniffIndicators = 4

var resumeLinkPattern = regexp.MustCompile(`(?im)^\s*(?:resume|cv)\s*[:\-]\s*(https?://\S+)`)

var resumeFilenameKeywords = []string{"resume", "cv", "curriculum"}

var resumeBodyPhrases = []string{
	"resume attached",
	"attached my resume",
	"attached resume",
	"please find my resume",
	"please find attached my resume",
	"cv attached",
	"attached my cv",
	"please find my cv",
	"enclosed my resume",
}

// Distinct section keywords counted during content-sniffing. A real resume
// hits several of these; a cover letter or random document rarely does.
var resumeContentIndicators = []string{
	"experience", "education", "skills", "objective", "summary",
	"employment", "qualification", "project", "certification",
	"achievement", "references", "work history",
}

var resumeBodyKeywords = []string{"resume", "curriculum vitae"}

var sniffableExtensions = []string{".pdf", ".doc", ".docx"}

// HasResume reports whether the email evidently carries a resume, and how it
// was detected. Layers run cheapest first and short-circuit.
func (d *Detector) HasResume(ctx context.Context, content email.Content, attachments []email.Attachment, fetch AttachmentFetcher) (bool, Signal) {
	lowerBody := strings.ToLower(content.Body)

	// Layer 0: explicit link in a structured body field.
	if resumeLinkPattern.MatchString(content.Body) {
		return true, SignalExplicitLink
	}

	// Layer 1: filename keywords.
	for _, att := range attachments {
		if matchesAnyKeyword(strings.ToLower(att.Filename), resumeFilenameKeywords) {
			return true, SignalFilename
		}
	}

	// Layer 2: body phrases.
	if matchesAnyKeyword(lowerBody, resumeBodyPhrases) {
		return true, SignalBodyPhrase
	}

	// Layer 3: content-sniff decodable attachments.
	if d.sniffAttachments(ctx, attachments, fetch, content.AttachmentText) {
		return true, SignalContentSniff
	}

	// Layer 4: low-confidence generic keyword sweep, last resort.
	for _, keyword := range resumeBodyKeywords {
		if containsWord(lowerBody, keyword) {
			return true, SignalBodyKeyword
		}
	}

	return false, SignalNone
}

func (d *Detector) sniffAttachments(ctx context.Context, attachments []email.Attachment, fetch AttachmentFetcher, preDecoded string) bool {
	if looksLikeResumeText(strings.ToLower(preDecoded)) {
		return true
	}

	if fetch == nil || d.decoder == nil {
		return false
	}

	for _, att := range attachments {
		if !sniffable(att.Filename) {
			continue
		}

		data, err := fetch(ctx, att)
		if err != nil {
			d.logger.Warn("fetching attachment for sniffing failed",
				zap.String("filename", att.Filename),
				zap.Error(err),
			)
			continue
		}

		text, err := d.decoder.DecodeToText(att.Filename, data)
		if err != nil {
			d.logger.Warn("decoding attachment failed",
				zap.String("filename", att.Filename),
				zap.Error(err),
			)
			continue
		}

		if looksLikeResumeText(strings.ToLower(text)) {
			return true
		}
	}

	return false
}

// looksLikeResumeText accepts immediately on the literal document labels, or
// at minSniffIndicators distinct section keywords.
func looksLikeResumeText(lower string) bool {
	if lower == "" {
		return false
	}

	if strings.Contains(lower, "resume") || strings.Contains(lower, "curriculum vitae") {
		return true
	}

	distinct := 0
	for _, indicator := range resumeContentIndicators {
		if strings.Contains(lower, indicator) {
			distinct++
			if distinct >= minSniffIndicators {
				return true
			}
		}
	}

	return false
}

func sniffable(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range sniffableExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func matchesAnyKeyword(lower string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// containsWord matches keyword as a whole word, so "cv" does not fire inside
// unrelated text.
func containsWord(lower, keyword string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], keyword)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(keyword)

		beforeOK := start == 0 || !isWordChar(lower[start-1])
		afterOK := end == len(lower) || !isWordChar(lower[end])
		if beforeOK && afterOK {
			return true
		}

		idx = end
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}
