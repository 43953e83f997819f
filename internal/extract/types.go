package extract

import (
	"context"

	"github.com/hireloop/mailtriage/internal/email"
)

// Unclear is the sentinel value for any field no tier could determine.
const Unclear = "unclear"

// Category is the closed set of job categories the pipeline can assign.
type Category string

const (
	CategoryDeveloper      Category = "Developer"
	CategoryWebDesigner    Category = "Web Designer"
	CategoryRecruiter      Category = "Recruiter"
	CategorySalesMarketing Category = "Sales & Marketing"
	CategoryUnclear        Category = Unclear
)

// Experience is the closed set of experience statuses.
type Experience string

const (
	Experienced       Experience = "experienced"
	Fresher           Experience = "fresher"
	ExperienceUnclear Experience = Unclear
)

// Result is the uniform output contract of every tier and of the orchestrator.
type Result struct {
	JobTitle         string
	Category         Category
	ExperienceStatus Experience
	CurrentCTC       string
	ExpectedCTC      string
	WorkExp          string
	InterviewTime    string
	Location         string
	Agreement        string
	Confidence       float64

	// Tier records which strategy produced the result, for observability only.
	Tier string
}

// NewUnclearResult returns a Result with every field set to the unclear
// sentinel and zero confidence, the terminal outcome when all tiers exhaust.
func NewUnclearResult() *Result {
	return &Result{
		JobTitle:         Unclear,
		Category:         CategoryUnclear,
		ExperienceStatus: ExperienceUnclear,
		CurrentCTC:       Unclear,
		ExpectedCTC:      Unclear,
		WorkExp:          Unclear,
		InterviewTime:    Unclear,
		Location:         Unclear,
		Agreement:        Unclear,
	}
}

// Request carries the email content plus a deterministic title hint shared by
// all tiers.
type Request struct {
	Content   email.Content
	TitleHint string
}

// Tier is a single extraction strategy in the escalation chain. A (nil, nil)
// return means the tier found nothing and the next tier should run; an error
// is treated the same way by the orchestrator, never propagated.
type Tier interface {
	Name() string
	Attempt(ctx context.Context, req Request) (*Result, error)
}
