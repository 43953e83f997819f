// Package statistical implements the middle extraction tier: extractive
// question answering for the title span plus zero-shot classification for
// category and experience level, backed by local statistical models.
package statistical

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hireloop/mailtriage/internal/ai"
	"github.com/hireloop/mailtriage/internal/extract"
	"github.com/hireloop/mailtriage/internal/extract/grounding"
	"github.com/hireloop/mailtriage/internal/logger"
	"github.com/hireloop/mailtriage/internal/utils"
)

const (
	tierName = "statistical"

	// Model input limits.
	maxContextLen = 1500

	minAnswerLen   = 3
	maxAnswerLen   = 50
	minAnswerScore = 0.05

	minCategoryScore = 0.3

	// The zero-shot experience label is only trusted for bodies long
	// enough to classify and only at a clear margin; explicit textual
	// markers always pre-empt it.
	minExperienceScore    = 0.5
	minBodyLenForZeroShot = 100
)

var titleQuestions = []string{
	"What job position is mentioned?",
	"What role is the person applying for?",
}

// Answers that echo the question back are QA-model artifacts, not titles.
var selfReferentialMarkers = []string{"what", "mention", "applying for"}

var categoryLabels = []string{
	"Software Developer",
	"Web Designer",
	"Recruiter",
	"Sales and Marketing",
	"Other",
}

var experienceLabels = []string{
	"experienced professional",
	"fresher with no work experience",
}

// Tier runs the statistical models. It satisfies extract.Tier.
type Tier struct {
	classifier ai.Classifier
	logger     *zap.Logger
}

func New(classifier ai.Classifier, log *zap.Logger) *Tier {
	return &Tier{classifier: classifier, logger: logger.WithTierFields(log, tierName, "")}
}

func (t *Tier) Name() string { return tierName }

// Attempt extracts a title span and classifies category/experience. The tier
// reports no match when the models produce nothing grounded in the source.
func (t *Tier) Attempt(ctx context.Context, req extract.Request) (*extract.Result, error) {
	if t.classifier == nil {
		return nil, nil
	}

	content := req.Content
	title, score, err := t.extractTitleSpan(ctx, content.Subject, content.Body)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, nil
	}

	source := content.CombinedText()
	verdict := grounding.Verify(title, source)
	if !verdict.Exists {
		t.logger.Info("ungrounded claim discarded",
			zap.String("candidate", utils.TruncateForLog(title, 80)),
		)
		return nil, nil
	}

	t.logger.Debug("title span grounded",
		zap.String(logger.FieldMatchKind, string(verdict.Kind)),
		zap.Float64("qa_score", score),
	)

	result := extract.NewUnclearResult()
	result.JobTitle = title
	result.Confidence = grounding.EffectiveTrust(score, verdict)
	result.Category = t.classifyCategory(ctx, source)
	result.ExperienceStatus = t.classifyExperience(ctx, content.Body, source)

	return result, nil
}

// extractTitleSpan asks the fixed questions and keeps the highest-scoring
// acceptable answer.
func (t *Tier) extractTitleSpan(ctx context.Context, subject, body string) (string, float64, error) {
	passage := strings.TrimSpace(subject + "\n" + truncate(body, maxContextLen))
	if passage == "" {
		return "", 0, nil
	}

	var (
		best      string
		bestScore float64
	)

	for _, question := range titleQuestions {
		answer, err := t.classifier.AnswerQuestion(ctx, question, passage)
		if err != nil {
			return "", 0, fmt.Errorf("answer question: %w", err)
		}
		if answer == nil {
			continue
		}

		candidate := strings.TrimSpace(answer.Text)
		if !acceptableAnswer(candidate, answer.Score) {
			t.logger.Debug("qa answer rejected",
				zap.String("answer", utils.TruncateForLog(candidate, 80)),
				zap.Float64("score", answer.Score),
			)
			continue
		}

		if answer.Score > bestScore {
			best = candidate
			bestScore = answer.Score
		}
	}

	return best, bestScore, nil
}

func acceptableAnswer(answer string, score float64) bool {
	if len(answer) < minAnswerLen || len(answer) > maxAnswerLen {
		return false
	}
	if score < minAnswerScore {
		return false
	}

	lower := strings.ToLower(answer)
	for _, marker := range selfReferentialMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}

	return true
}

func (t *Tier) classifyCategory(ctx context.Context, text string) extract.Category {
	ranked, err := t.classifier.Classify(ctx, truncate(text, maxContextLen), categoryLabels)
	if err != nil || len(ranked) == 0 {
		if err != nil {
			t.logger.Warn("category classification failed", zap.Error(err))
		}
		return extract.CategoryUnclear
	}

	top := ranked[0]
	if top.Score < minCategoryScore {
		return extract.CategoryUnclear
	}

	return mapCategoryLabel(top.Label)
}

func mapCategoryLabel(label string) extract.Category {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "developer") || strings.Contains(lower, "engineer"):
		return extract.CategoryDeveloper
	case strings.Contains(lower, "designer"):
		return extract.CategoryWebDesigner
	case strings.Contains(lower, "recruit"):
		return extract.CategoryRecruiter
	case strings.Contains(lower, "sales") || strings.Contains(lower, "marketing"):
		return extract.CategorySalesMarketing
	default:
		return extract.CategoryUnclear
	}
}

// classifyExperience decides experience status by a priority chain: explicit
// textual markers first, the zero-shot label only as a guarded fallback.
// Regex evidence beats a short-text zero-shot guess.
func (t *Tier) classifyExperience(ctx context.Context, body, source string) extract.Experience {
	if experience, ok := extract.ExperienceFromText(source); ok {
		return experience
	}

	if len(strings.TrimSpace(body)) <= minBodyLenForZeroShot {
		return extract.ExperienceUnclear
	}

	ranked, err := t.classifier.Classify(ctx, truncate(body, maxContextLen), experienceLabels)
	if err != nil || len(ranked) == 0 {
		if err != nil {
			t.logger.Warn("experience classification failed", zap.Error(err))
		}
		return extract.ExperienceUnclear
	}

	top := ranked[0]
	if top.Score <= minExperienceScore {
		return extract.ExperienceUnclear
	}

	if strings.Contains(strings.ToLower(top.Label), "fresher") {
		return extract.Fresher
	}
	return extract.Experienced
}

// truncate bounds model input length without the log ellipsis.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

var _ extract.Tier = (*Tier)(nil)
