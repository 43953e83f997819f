package email

import (
	"context"
	"strings"
)

// Content carries the text of a single inbound email as consumed by the
// extraction pipeline. Reply markers and quoted history are expected to be
// stripped by the caller before construction.
type Content struct {
	Subject        string
	Body           string
	AttachmentText string
}

// CombinedText returns subject and body joined for grounding checks.
func (c Content) CombinedText() string {
	return strings.TrimSpace(c.Subject + "\n" + c.Body)
}

// Attachment describes an attachment reference on a message. Data is fetched
// separately via GetAttachment.
type Attachment struct {
	ID       string
	Filename string
	MimeType string
	Size     int64
}

// Message is a fetched mailbox message.
type Message struct {
	ID          string
	ThreadID    string
	From        string
	Subject     string
	Body        string
	Snippet     string
	LabelIDs    []string
	Attachments []Attachment
}

// Ref identifies a message within a thread, as returned by search.
type Ref struct {
	ID       string
	ThreadID string
}

// Reply describes an outbound reply within an existing thread.
type Reply struct {
	ThreadID  string
	To        string
	Subject   string
	Body      string
	InReplyTo string
}

// Service is the mailbox collaborator consumed by the triage flow. The
// extraction core never calls it directly; it only sees Content.
type Service interface {
	Search(ctx context.Context, query string) ([]Ref, error)
	Get(ctx context.Context, id string) (*Message, error)
	GetThread(ctx context.Context, threadID string) ([]*Message, error)
	GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error)
	SendReply(ctx context.Context, reply *Reply) error
	ModifyLabels(ctx context.Context, messageID string, add, remove []string) error
}
