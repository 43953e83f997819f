package extract

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/hireloop/mailtriage/internal/email"
)

type stubTier struct {
	name   string
	result *Result
	err    error
	calls  int
	order  *[]string
}

func (s *stubTier) Name() string { return s.name }

func (s *stubTier) Attempt(_ context.Context, _ Request) (*Result, error) {
	s.calls++
	if s.order != nil {
		*s.order = append(*s.order, s.name)
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.result == nil {
		return nil, nil
	}
	clone := *s.result
	return &clone, nil
}

func titledResult(title string, confidence float64) *Result {
	result := NewUnclearResult()
	result.JobTitle = title
	result.Confidence = confidence
	return result
}

func TestFastPathShortCircuitsDeeperTiers(t *testing.T) {
	t.Parallel()

	deep := &stubTier{name: "generative", result: titledResult("Wrong Title", 0.99)}
	o := NewOrchestrator(zap.NewNop(), deep)

	result := o.Extract(context.Background(), email.Content{
		Subject: "Application for Senior Backend Developer",
		Body:    "",
	})

	if deep.calls != 0 {
		t.Fatalf("expected no deep tier calls on fast path, got %d", deep.calls)
	}
	if result.JobTitle != "Senior Backend Developer" {
		t.Fatalf("unexpected title: %q", result.JobTitle)
	}
	if result.Category != CategoryDeveloper {
		t.Fatalf("expected Developer category from overlay, got %q", result.Category)
	}
	if result.ExperienceStatus != ExperienceUnclear {
		t.Fatalf("expected unclear experience, got %q", result.ExperienceStatus)
	}
	if result.CurrentCTC != Unclear || result.Location != Unclear {
		t.Fatalf("expected remaining fields unclear, got %+v", result)
	}
	if result.Confidence < 0.5 {
		t.Fatalf("fast path must be confident, got %v", result.Confidence)
	}
}

func TestEscalationOrder(t *testing.T) {
	t.Parallel()

	var order []string
	first := &stubTier{name: "generative", order: &order}
	second := &stubTier{name: "statistical", order: &order, result: titledResult("QA Tester", 0.4)}

	o := NewOrchestrator(zap.NewNop(), first, second)

	body := "Hello, I am a QA Tester with plenty of automation background and I would like to join your team."
	result := o.Extract(context.Background(), email.Content{Subject: "Re: Opportunity", Body: body})

	if len(order) != 2 || order[0] != "generative" || order[1] != "statistical" {
		t.Fatalf("unexpected tier order: %v", order)
	}
	if result.JobTitle != "QA Tester" {
		t.Fatalf("unexpected title: %q", result.JobTitle)
	}
	if result.Tier != "statistical" {
		t.Fatalf("expected statistical provenance, got %q", result.Tier)
	}
}

func TestTierFailureEscalates(t *testing.T) {
	t.Parallel()

	failing := &stubTier{name: "generative", err: errors.New("model unavailable")}
	next := &stubTier{name: "statistical", result: titledResult("Web Designer", 0.3)}

	o := NewOrchestrator(zap.NewNop(), failing, next)

	body := "I am a web designer looking for a new role, my portfolio is attached for your review."
	result := o.Extract(context.Background(), email.Content{Subject: "Hello", Body: body})

	if next.calls != 1 {
		t.Fatalf("expected next tier to run after failure, got %d calls", next.calls)
	}
	if result.JobTitle != "Web Designer" {
		t.Fatalf("unexpected title: %q", result.JobTitle)
	}
}

func TestPatternFallbackWhenTiersExhaust(t *testing.T) {
	t.Parallel()

	empty := &stubTier{name: "statistical"}
	o := NewOrchestrator(zap.NewNop(), empty)

	body := "Good morning, I am applying for the Frontend Developer position at your company and can join soon."
	result := o.Extract(context.Background(), email.Content{Subject: "Hello there", Body: body})

	if result.JobTitle != "Frontend Developer" {
		t.Fatalf("expected pattern fallback title, got %q", result.JobTitle)
	}
	if result.Tier != tierFallback {
		t.Fatalf("expected fallback provenance, got %q", result.Tier)
	}
	if result.Confidence != 0 {
		t.Fatalf("fallback confidence must be zero, got %v", result.Confidence)
	}
	if result.Category != CategoryDeveloper {
		t.Fatalf("overlay must still assign category, got %q", result.Category)
	}
}

func TestTerminalUnclear(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(zap.NewNop(), &stubTier{name: "statistical"})

	result := o.Extract(context.Background(), email.Content{
		Subject: "Hello",
		Body:    "Just wanted to say thanks for the great meetup talk last week, it was really helpful to me.",
	})

	if result.JobTitle != Unclear {
		t.Fatalf("expected unclear title, got %q", result.JobTitle)
	}
	if result.Category != CategoryUnclear {
		t.Fatalf("expected unclear category, got %q", result.Category)
	}
	if result.Confidence >= 0.5 {
		t.Fatalf("unclear title must not carry high confidence, got %v", result.Confidence)
	}
}

func TestUnclearTitleConfidenceClamped(t *testing.T) {
	t.Parallel()

	confused := &stubTier{name: "generative", result: titledResult(Unclear, 0.95)}
	o := NewOrchestrator(zap.NewNop(), confused)

	result := o.Extract(context.Background(), email.Content{
		Subject: "Hello",
		Body:    "This body is long enough to skip the fast path but contains no role information whatsoever here.",
	})

	if result.JobTitle != Unclear {
		t.Fatalf("expected unclear title, got %q", result.JobTitle)
	}
	if result.Confidence >= 0.5 {
		t.Fatalf("confidence must be clamped for unclear titles, got %v", result.Confidence)
	}
}

func TestOverlayOverridesUpstreamCategory(t *testing.T) {
	t.Parallel()

	disagreeing := titledResult("DevOps Engineer", 0.8)
	disagreeing.Category = CategorySalesMarketing

	o := NewOrchestrator(zap.NewNop(), &stubTier{name: "generative", result: disagreeing})

	result := o.Extract(context.Background(), email.Content{
		Subject: "Re: role",
		Body:    "I have been working as a DevOps Engineer for a long time and would like to explore this further.",
	})

	if result.Category != CategoryDeveloper {
		t.Fatalf("overlay must override upstream category, got %q", result.Category)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(zap.NewNop(), &stubTier{name: "statistical", result: titledResult("Data Analyst", 0.6)})

	content := email.Content{
		Subject: "Re: Opportunity",
		Body:    "I am a Data Analyst with five years in reporting and dashboards, happy to share more details.",
	}

	first := o.Extract(context.Background(), content)
	second := o.Extract(context.Background(), content)

	if *first != *second {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
}
