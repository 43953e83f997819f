// Package triage maps an extraction result plus presence signals to the next
// action for the surrounding workflow.
package triage

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireloop/mailtriage/internal/extract"
)

// Action is the routing outcome for one email.
type Action string

const (
	// ActionSendQuestionnaire: application is clear enough to move forward.
	ActionSendQuestionnaire Action = "send-questionnaire"
	// ActionRequestInfo: title is clear but required material is missing.
	ActionRequestInfo Action = "request-info"
	// ActionNeedsClarification: the pipeline could not determine what the
	// candidate is applying for.
	ActionNeedsClarification Action = "needs-clarification"
)

// Template names handed to the reply renderer.
const (
	TemplateQuestionnaire = "questionnaire"
	TemplateRequestInfo   = "request-info"
	TemplateClarify       = "clarify"
)

// Labels applied to the processed message.
const (
	LabelTriaged       = "triaged"
	LabelClarify       = "needs-clarification"
	LabelAwaitingInfo  = "awaiting-info"
	LabelQuestionnaire = "questionnaire-sent"
)

// Decision is the routing verdict for one email.
type Decision struct {
	ProcessingID string
	Action       Action
	Template     string
	Labels       []string
	// Missing lists fields the candidate should be asked for.
	Missing []string
}

// Router turns extraction results into decisions.
type Router struct {
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{logger: logger}
}

// Route decides the next action. It never fails: an unclear extraction is a
// valid terminal outcome routed to clarification, not an error.
func (r *Router) Route(result *extract.Result, hasResume, hasCoverLetter bool) *Decision {
	decision := &Decision{ProcessingID: uuid.NewString()}

	switch {
	case result == nil || result.JobTitle == extract.Unclear:
		decision.Action = ActionNeedsClarification
		decision.Template = TemplateClarify
		decision.Labels = []string{LabelTriaged, LabelClarify}

	case !hasResume:
		decision.Action = ActionRequestInfo
		decision.Template = TemplateRequestInfo
		decision.Labels = []string{LabelTriaged, LabelAwaitingInfo}
		decision.Missing = append(decision.Missing, "resume")
		decision.Missing = append(decision.Missing, missingFields(result)...)

	default:
		decision.Action = ActionSendQuestionnaire
		decision.Template = TemplateQuestionnaire
		decision.Labels = []string{LabelTriaged, LabelQuestionnaire}
		decision.Missing = missingFields(result)
	}

	fields := []zap.Field{
		zap.String("processing_id", decision.ProcessingID),
		zap.String("action", string(decision.Action)),
		zap.Bool("has_resume", hasResume),
		zap.Bool("has_cover_letter", hasCoverLetter),
	}
	if result != nil {
		fields = append(fields,
			zap.String("job_title", result.JobTitle),
			zap.String("category", string(result.Category)),
		)
	}
	r.logger.Info("email routed", fields...)

	return decision
}

// missingFields lists the questionnaire fields the extraction left unclear.
func missingFields(result *extract.Result) []string {
	var missing []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"current_ctc", result.CurrentCTC},
		{"expected_ctc", result.ExpectedCTC},
		{"work_exp", result.WorkExp},
		{"interview_time", result.InterviewTime},
		{"location", result.Location},
	} {
		if field.value == extract.Unclear || field.value == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}
