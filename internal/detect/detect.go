// Package detect implements the resume and cover-letter presence detectors.
// Evidence is layered: cheap checks first, attachment content-sniffing last,
// short-circuiting on the first positive signal.
package detect

import (
	"context"

	"go.uber.org/zap"

	"github.com/hireloop/mailtriage/internal/document"
	"github.com/hireloop/mailtriage/internal/email"
)

// Signal records the provenance of a positive detection.
type Signal string

const (
	SignalNone         Signal = "none"
	SignalExplicitLink Signal = "explicit-link"
	SignalFilename     Signal = "filename"
	SignalBodyPhrase   Signal = "body-phrase"
	SignalContentSniff Signal = "content-sniff"
	SignalBodyKeyword  Signal = "body-keyword"
)

// AttachmentFetcher loads attachment bytes on demand, so the expensive
// content-sniffing layer only pays for downloads when the cheap layers miss.
type AttachmentFetcher func(ctx context.Context, att email.Attachment) ([]byte, error)

// Detector runs the layered presence checks.
type Detector struct {
	decoder document.Decoder
	logger  *zap.Logger
}

func New(decoder document.Decoder, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{decoder: decoder, logger: logger}
}
