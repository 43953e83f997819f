package detect

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hireloop/mailtriage/internal/email"
)

type stubDecoder struct {
	text string
	err  error
}

func (s *stubDecoder) DecodeToText(string, []byte) (string, error) {
	return s.text, s.err
}

func fetcher(data []byte, err error, calls *int) AttachmentFetcher {
	return func(context.Context, email.Attachment) ([]byte, error) {
		if calls != nil {
			*calls++
		}
		return data, err
	}
}

func TestHasResumeExplicitLink(t *testing.T) {
	t.Parallel()

	d := New(nil, zap.NewNop())
	content := email.Content{Body: "Hello,\nResume: https://example.com/me.pdf\nThanks"}

	ok, signal := d.HasResume(context.Background(), content, nil, nil)
	if !ok || signal != SignalExplicitLink {
		t.Fatalf("expected explicit-link signal, got %v/%q", ok, signal)
	}
}

func TestHasResumeFilenameKeyword(t *testing.T) {
	t.Parallel()

	d := New(nil, zap.NewNop())
	attachments := []email.Attachment{{Filename: "John_Doe_Resume.pdf"}}

	ok, signal := d.HasResume(context.Background(), email.Content{Body: "see attached"}, attachments, nil)
	if !ok || signal != SignalFilename {
		t.Fatalf("expected filename signal, got %v/%q", ok, signal)
	}
}

func TestHasResumeBodyPhrase(t *testing.T) {
	t.Parallel()

	d := New(nil, zap.NewNop())
	content := email.Content{Body: "Please find my resume for your consideration."}

	ok, signal := d.HasResume(context.Background(), content, nil, nil)
	if !ok || signal != SignalBodyPhrase {
		t.Fatalf("expected body-phrase signal, got %v/%q", ok, signal)
	}
}

func TestHasResumeContentSniff(t *testing.T) {
	t.Parallel()

	decoder := &stubDecoder{text: "Education\nSkills\nEmployment history\nCertification list\nProject work"}
	d := New(decoder, zap.NewNop())

	var calls int
	attachments := []email.Attachment{{ID: "a1", Filename: "document.pdf"}}

	ok, signal := d.HasResume(context.Background(), email.Content{Body: "see the attached file"}, attachments, fetcher([]byte("pdf"), nil, &calls))
	if !ok || signal != SignalContentSniff {
		t.Fatalf("expected content-sniff signal, got %v/%q", ok, signal)
	}
	if calls != 1 {
		t.Fatalf("expected one fetch, got %d", calls)
	}
}

func TestHasResumeContentSniffLiteralMarker(t *testing.T) {
	t.Parallel()

	decoder := &stubDecoder{text: "CURRICULUM VITAE\nJane Doe"}
	d := New(decoder, zap.NewNop())
	attachments := []email.Attachment{{ID: "a1", Filename: "document.docx"}}

	ok, signal := d.HasResume(context.Background(), email.Content{Body: "attached file"}, attachments, fetcher([]byte("x"), nil, nil))
	if !ok || signal != SignalContentSniff {
		t.Fatalf("expected content-sniff on literal marker, got %v/%q", ok, signal)
	}
}

func TestHasResumeTooFewIndicators(t *testing.T) {
	t.Parallel()

	decoder := &stubDecoder{text: "Education and skills are listed on request."}
	d := New(decoder, zap.NewNop())
	attachments := []email.Attachment{{ID: "a1", Filename: "notes.pdf"}}

	ok, _ := d.HasResume(context.Background(), email.Content{Body: "see the attached file"}, attachments, fetcher([]byte("x"), nil, nil))
	if ok {
		t.Fatal("two indicators must not be enough")
	}
}

func TestHasResumeGenericKeywordLastResort(t *testing.T) {
	t.Parallel()

	d := New(nil, zap.NewNop())
	content := email.Content{Body: "My resume can be shared on request."}

	ok, signal := d.HasResume(context.Background(), content, nil, nil)
	if !ok || signal != SignalBodyKeyword {
		t.Fatalf("expected body-keyword signal, got %v/%q", ok, signal)
	}
}

func TestHasResumeCheapLayersSkipFetching(t *testing.T) {
	t.Parallel()

	var calls int
	d := New(&stubDecoder{}, zap.NewNop())
	attachments := []email.Attachment{{Filename: "resume.pdf"}}

	ok, _ := d.HasResume(context.Background(), email.Content{Body: "hi"}, attachments, fetcher(nil, errors.New("should not be called"), &calls))
	if !ok {
		t.Fatal("expected detection via filename")
	}
	if calls != 0 {
		t.Fatalf("filename layer must short-circuit fetching, got %d calls", calls)
	}
}

func TestHasResumeNegative(t *testing.T) {
	t.Parallel()

	d := New(nil, zap.NewNop())
	content := email.Content{Body: "Looking forward to hearing from you."}

	ok, signal := d.HasResume(context.Background(), content, nil, nil)
	if ok || signal != SignalNone {
		t.Fatalf("expected no detection, got %v/%q", ok, signal)
	}
}

func TestHasCoverLetterBodyPhrase(t *testing.T) {
	t.Parallel()

	d := New(nil, zap.NewNop())
	content := email.Content{Body: "Dear Hiring Manager,\nI am excited to apply for this role at your company."}

	ok, signal := d.HasCoverLetter(context.Background(), content, nil, nil)
	if !ok || signal != SignalBodyPhrase {
		t.Fatalf("expected body-phrase signal, got %v/%q", ok, signal)
	}
}

func TestHasCoverLetterRejectsTemplateBoilerplate(t *testing.T) {
	t.Parallel()

	d := New(nil, zap.NewNop())
	content := email.Content{Body: strings.Join([]string{
		"Dear Hiring Manager,",
		"I am excited to apply to [Company Name] for the [Job Title] role.",
		"I believe [Your Name] would be a great fit.",
	}, "\n")}

	ok, signal := d.HasCoverLetter(context.Background(), content, nil, nil)
	if ok || signal != SignalNone {
		t.Fatalf("boilerplate must be rejected despite positive phrases, got %v/%q", ok, signal)
	}
}

func TestHasCoverLetterFilename(t *testing.T) {
	t.Parallel()

	d := New(nil, zap.NewNop())
	attachments := []email.Attachment{{Filename: "cover_letter_jane.pdf"}}

	ok, signal := d.HasCoverLetter(context.Background(), email.Content{Body: "see attached"}, attachments, nil)
	if !ok || signal != SignalFilename {
		t.Fatalf("expected filename signal, got %v/%q", ok, signal)
	}
}
