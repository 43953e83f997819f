package extract

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hireloop/mailtriage/internal/email"
	"github.com/hireloop/mailtriage/internal/extract/pattern"
)

const (
	// Bodies shorter than this make deeper tiers unreliable and wasteful;
	// a subject-line pattern match short-circuits them entirely.
	fastPathBodyLimit = 50

	fastPathConfidence = 0.9

	tierFastPath = "pattern-fast-path"
	tierFallback = "pattern-fallback"
)

// Orchestrator sequences the extraction tiers with early-exit rules. The
// fallback order is the tier slice itself: visible, ordered, testable.
type Orchestrator struct {
	tiers  []Tier
	logger *zap.Logger
}

// NewOrchestrator builds an orchestrator running the provided tiers in order
// between the deterministic fast path and the pattern fallback.
func NewOrchestrator(logger *zap.Logger, tiers ...Tier) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{tiers: tiers, logger: logger}
}

// Extract runs the tier chain for one email. It never returns nil and never
// fails: every tier error degrades to the next, cheaper strategy, converging
// on the pattern extractor and, past that, the terminal unclear result.
func (o *Orchestrator) Extract(ctx context.Context, content email.Content) *Result {
	source := content.CombinedText()

	// Fast path: short body, subject-only pattern match.
	if len(strings.TrimSpace(content.Body)) < fastPathBodyLimit {
		if title, ok := pattern.FromSubject(content.Subject); ok {
			result := NewUnclearResult()
			result.JobTitle = title
			result.Confidence = fastPathConfidence
			result.Tier = tierFastPath

			o.logger.Debug("fast path hit", zap.String("title", title))
			return o.finish(result, source)
		}
	}

	hint, _ := pattern.ExtractTitle(content.Subject, content.Body)
	req := Request{Content: content, TitleHint: hint}

	for _, tier := range o.tiers {
		result, err := tier.Attempt(ctx, req)
		if err != nil {
			// A failed tier is skipped, not retried.
			o.logger.Warn("tier failed, escalating",
				zap.String("tier", tier.Name()),
				zap.Error(err),
			)
			continue
		}
		if result == nil {
			o.logger.Debug("tier found no match", zap.String("tier", tier.Name()))
			continue
		}

		result.Tier = tier.Name()
		return o.finish(result, source)
	}

	// Deterministic fallback: the always-available floor.
	if hint != "" {
		result := NewUnclearResult()
		result.JobTitle = hint
		result.Tier = tierFallback
		return o.finish(result, source)
	}

	result := NewUnclearResult()
	result.Tier = tierFallback
	return o.finish(result, source)
}

// finish applies the keyword overlay and enforces the output invariants.
func (o *Orchestrator) finish(result *Result, source string) *Result {
	result = ApplyOverlay(result, source)

	// An uncertain title cannot co-occur with high stated confidence.
	if result.JobTitle == Unclear && result.Confidence >= 0.5 {
		result.Confidence = 0
	}

	o.logger.Info("extraction completed",
		zap.String("tier", result.Tier),
		zap.String("job_title", result.JobTitle),
		zap.String("category", string(result.Category)),
		zap.String("experience", string(result.ExperienceStatus)),
		zap.Float64("confidence", result.Confidence),
	)

	return result
}
