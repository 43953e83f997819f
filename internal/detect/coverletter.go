package detect

import (
	"context"
	"regexp"
	"strings"

	"github.com/hireloop/mailtriage/internal/email"
)

// More than this many template placeholders marks the body as unfilled
// boilerplate, not a genuine cover letter.
const maxPlaceholderTokens = 2

var placeholderPattern = regexp.MustCompile(`\[[A-Za-z][^\[\]\n]{0,40}\]`)

var coverLetterFilenameKeywords = []string{"cover", "letter", "motivation"}

var coverLetterBodyPhrases = []string{
	"cover letter",
	"dear hiring manager",
	"dear sir/madam",
	"i am writing to apply",
	"i am writing to express my interest",
	"i am excited to apply",
	"motivation letter",
}

var coverLetterContentIndicators = []string{
	"dear", "hiring manager", "i am writing", "sincerely", "position",
	"opportunity", "excited to apply", "my background",
}

// HasCoverLetter reports whether the email evidently carries a genuine cover
// letter. A body stuffed with unfilled placeholder tokens like
// "[Company Name]" is rejected regardless of any positive phrase match.
func (d *Detector) HasCoverLetter(ctx context.Context, content email.Content, attachments []email.Attachment, fetch AttachmentFetcher) (bool, Signal) {
	if placeholders := placeholderPattern.FindAllString(content.Body, -1); len(placeholders) > maxPlaceholderTokens {
		d.logger.Debug("body rejected as template boilerplate")
		return false, SignalNone
	}

	for _, att := range attachments {
		if matchesAnyKeyword(strings.ToLower(att.Filename), coverLetterFilenameKeywords) {
			return true, SignalFilename
		}
	}

	lowerBody := strings.ToLower(content.Body)
	if matchesAnyKeyword(lowerBody, coverLetterBodyPhrases) {
		return true, SignalBodyPhrase
	}

	if d.sniffCoverLetter(ctx, attachments, fetch, content.AttachmentText) {
		return true, SignalContentSniff
	}

	return false, SignalNone
}

func (d *Detector) sniffCoverLetter(ctx context.Context, attachments []email.Attachment, fetch AttachmentFetcher, preDecoded string) bool {
	if looksLikeCoverLetterText(strings.ToLower(preDecoded)) {
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
			continue
		}

		text, err := d.decoder.DecodeToText(att.Filename, data)
		if err != nil {
			continue
		}

		if looksLikeCoverLetterText(strings.ToLower(text)) {
			return true
		}
	}

	return false
}

func looksLikeCoverLetterText(lower string) bool {
	if lower == "" {
		return false
	}

	if strings.Contains(lower, "cover letter") {
		return true
	}

	distinct := 0
	for _, indicator := range coverLetterContentIndicators {
		if strings.Contains(lower, indicator) {
			distinct++
			if distinct >= 3 {
				return true
			}
		}
	}

	return false
}
