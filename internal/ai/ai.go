package ai

import "context"

// Generator is the generative-model collaborator: best-effort text for a
// prompt, with no guarantee the response is valid JSON.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// LabelScore is a single ranked label from a zero-shot classification run.
type LabelScore struct {
	Label string
	Score float64
}

// Answer is the result of an extractive question-answering run.
type Answer struct {
	Text  string
	Score float64
}

// Classifier is the statistical-model collaborator. Implementations load
// their models once per process lifetime.
type Classifier interface {
	Classify(ctx context.Context, text string, labels []string) ([]LabelScore, error)
	AnswerQuestion(ctx context.Context, question, passage string) (*Answer, error)
}
