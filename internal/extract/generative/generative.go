// Package generative implements the model-backed extraction tier. It is the
// riskiest tier (a generative model can fabricate answers), so every title it
// produces passes the grounding gate before being trusted.
package generative

import (
	"context"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/hireloop/mailtriage/internal/ai"
	"github.com/hireloop/mailtriage/internal/extract"
	"github.com/hireloop/mailtriage/internal/extract/grounding"
	"github.com/hireloop/mailtriage/internal/logger"
	"github.com/hireloop/mailtriage/internal/utils"
)

//go:embed prompt.md
var promptTemplate string

const (
	tierName = "generative"

	// A grounded title is accepted at low stated confidence; an ungrounded
	// one needs the model to be emphatic, since an ungrounded-but-confident
	// claim is the hallucination risk this tier introduces.
	groundedFloor   = 0.1
	ungroundedFloor = 0.7

	// Stated confidence assumed when the model omits the field. Below the
	// ungrounded floor on purpose: an ungrounded title with no stated
	// confidence is always discarded.
	defaultConfidence = 0.5

	defaultMaxLogLength = 200
)

// Tier issues a structured-extraction prompt and defensively parses the
// model's JSON-shaped answer. It satisfies extract.Tier.
type Tier struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

func New(generator ai.Generator, log *zap.Logger, maxLogLength int) *Tier {
	model := ""
	if generator != nil {
		model = generator.Model()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Tier{
		generator: generator,
		logger:    logger.WithTierFields(log, tierName, model),
		maxLogLen: maxLogLength,
	}
}

func (t *Tier) Name() string { return tierName }

// Attempt runs the model and returns a grounded result, or (nil, nil) when
// the response is malformed, empty, or fails the grounding gate.
func (t *Tier) Attempt(ctx context.Context, req extract.Request) (*extract.Result, error) {
	if t.generator == nil {
		return nil, nil
	}

	content := req.Content
	prompt := buildPrompt(content.Subject, content.Body, req.TitleHint)

	t.logger.Debug("generative extraction request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, t.maxLogLen)),
	)

	raw, err := t.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("generative extraction response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, t.maxLogLen)),
	)

	parsed := parseResponse(raw)
	if parsed.Err != nil {
		// Malformed model output is a NoMatch, not a failure.
		t.logger.Debug("malformed model output",
			zap.Error(parsed.Err),
			zap.String("response_preview", utils.TruncateForLog(raw, t.maxLogLen)),
		)
		return nil, nil
	}

	fields := parsed.Fields
	title := strings.TrimSpace(fields.JobTitle)
	if title == "" || strings.EqualFold(title, extract.Unclear) {
		return nil, nil
	}

	confidence := fields.Confidence
	if confidence <= 0 {
		confidence = defaultConfidence
	}

	verdict := grounding.Verify(title, content.CombinedText())
	floor := groundedFloor
	if !verdict.Exists {
		floor = ungroundedFloor
	}

	if confidence < floor {
		if !verdict.Exists {
			t.logger.Info("ungrounded claim discarded",
				zap.String("candidate", utils.TruncateForLog(title, 80)),
				zap.Float64("stated_confidence", confidence),
			)
		}
		return nil, nil
	}

	if !verdict.Exists {
		t.logger.Warn("accepting ungrounded title on high stated confidence",
			zap.String("candidate", utils.TruncateForLog(title, 80)),
			zap.Float64("stated_confidence", confidence),
		)
	} else {
		t.logger.Debug("candidate grounded",
			zap.String(logger.FieldMatchKind, string(verdict.Kind)),
			zap.Float64("stated_confidence", confidence),
		)
	}

	result := extract.NewUnclearResult()
	result.JobTitle = title
	result.Confidence = confidence
	result.Category = mapCategory(fields.Category)
	result.ExperienceStatus = mapExperience(fields.ExperienceStatus)
	result.CurrentCTC = orUnclear(fields.CurrentCTC)
	result.ExpectedCTC = orUnclear(fields.ExpectedCTC)
	result.WorkExp = orUnclear(fields.WorkExp)
	result.InterviewTime = orUnclear(fields.InterviewTime)
	result.Location = orUnclear(fields.Location)
	result.Agreement = orUnclear(fields.Agreement)

	return result, nil
}

func buildPrompt(subject, body, hint string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Subject:\n{{SUBJECT}}\n\nBody:\n{{BODY}}\n{{HINT_SECTION}}\nJSON response:"
	}

	hintSection := ""
	if hint = strings.TrimSpace(hint); hint != "" {
		hintSection = "\nA pattern match suggests the title may be \"" + hint +
			"\". Confirm it against the text or override it; do not repeat it unless the text supports it.\n"
	}

	prompt := strings.ReplaceAll(template, "{{SUBJECT}}", strings.TrimSpace(subject))
	prompt = strings.ReplaceAll(prompt, "{{BODY}}", strings.TrimSpace(body))
	prompt = strings.ReplaceAll(prompt, "{{HINT_SECTION}}", hintSection)
	return prompt
}

func orUnclear(value string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return extract.Unclear
}

func mapCategory(label string) extract.Category {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "developer":
		return extract.CategoryDeveloper
	case "web designer":
		return extract.CategoryWebDesigner
	case "recruiter":
		return extract.CategoryRecruiter
	case "sales & marketing", "sales and marketing":
		return extract.CategorySalesMarketing
	default:
		return extract.CategoryUnclear
	}
}

func mapExperience(label string) extract.Experience {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "experienced":
		return extract.Experienced
	case "fresher":
		return extract.Fresher
	default:
		return extract.ExperienceUnclear
	}
}

var _ extract.Tier = (*Tier)(nil)
