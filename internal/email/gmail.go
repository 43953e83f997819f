package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const gmailAPIURL = "https://gmail.googleapis.com/gmail/v1/users/me"

// GmailClient implements Service against the Gmail REST API.
type GmailClient struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewGmailClient creates a Gmail client authenticated with the provided OAuth token.
func NewGmailClient(token string, logger *zap.Logger) *GmailClient {
	client := resty.New().
		SetBaseURL(gmailAPIURL).
		SetAuthToken(strings.TrimSpace(token)).
		SetTimeout(30 * time.Second)

	if logger == nil {
		logger = zap.NewNop()
	}

	return &GmailClient{http: client, logger: logger}
}

func (c *GmailClient) Search(ctx context.Context, query string) ([]Ref, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		Get("/messages")
	if err != nil {
		return nil, fmt.Errorf("search messages: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("search messages: status %s", resp.Status())
	}

	var refs []Ref
	gjson.GetBytes(resp.Body(), "messages").ForEach(func(_, msg gjson.Result) bool {
		refs = append(refs, Ref{
			ID:       msg.Get("id").String(),
			ThreadID: msg.Get("threadId").String(),
		})
		return true
	})

	c.logger.Debug("gmail search completed",
		zap.String("query", query),
		zap.Int("messages", len(refs)),
	)

	return refs, nil
}

func (c *GmailClient) Get(ctx context.Context, id string) (*Message, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("format", "full").
		Get("/messages/" + id)
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get message %s: status %s", id, resp.Status())
	}

	return parseMessage(resp.Body()), nil
}

func (c *GmailClient) GetThread(ctx context.Context, threadID string) ([]*Message, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("format", "full").
		Get("/threads/" + threadID)
	if err != nil {
		return nil, fmt.Errorf("get thread %s: %w", threadID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get thread %s: status %s", threadID, resp.Status())
	}

	var messages []*Message
	gjson.GetBytes(resp.Body(), "messages").ForEach(func(_, raw gjson.Result) bool {
		messages = append(messages, parseMessage([]byte(raw.Raw)))
		return true
	})

	return messages, nil
}

func (c *GmailClient) GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/messages/" + messageID + "/attachments/" + attachmentID)
	if err != nil {
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get attachment: status %s", resp.Status())
	}

	encoded := gjson.GetBytes(resp.Body(), "data").String()
	data, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode attachment data: %w", err)
	}

	return data, nil
}

func (c *GmailClient) SendReply(ctx context.Context, reply *Reply) error {
	if reply == nil {
		return fmt.Errorf("reply is required")
	}

	raw := buildRFC822(reply)
	payload := map[string]string{
		"raw":      base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte(raw)),
		"threadId": reply.ThreadID,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post("/messages/send")
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("send reply: status %s", resp.Status())
	}

	c.logger.Info("reply sent",
		zap.String("thread_id", reply.ThreadID),
		zap.String("to", reply.To),
	)

	return nil
}

func (c *GmailClient) ModifyLabels(ctx context.Context, messageID string, add, remove []string) error {
	payload := map[string][]string{}
	if len(add) > 0 {
		payload["addLabelIds"] = add
	}
	if len(remove) > 0 {
		payload["removeLabelIds"] = remove
	}
	if len(payload) == 0 {
		return nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post("/messages/" + messageID + "/modify")
	if err != nil {
		return fmt.Errorf("modify labels: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("modify labels: status %s", resp.Status())
	}

	return nil
}

func buildRFC822(reply *Reply) string {
	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", reply.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", reply.Subject)
	if reply.InReplyTo != "" {
		fmt.Fprintf(&b, "In-Reply-To: %s\r\n", reply.InReplyTo)
		fmt.Fprintf(&b, "References: %s\r\n", reply.InReplyTo)
	}
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(reply.Body)
	return b.String()
}

func parseMessage(body []byte) *Message {
	root := gjson.ParseBytes(body)

	msg := &Message{
		ID:       root.Get("id").String(),
		ThreadID: root.Get("threadId").String(),
		Snippet:  root.Get("snippet").String(),
	}

	root.Get("labelIds").ForEach(func(_, label gjson.Result) bool {
		msg.LabelIDs = append(msg.LabelIDs, label.String())
		return true
	})

	root.Get("payload.headers").ForEach(func(_, header gjson.Result) bool {
		switch strings.ToLower(header.Get("name").String()) {
		case "subject":
			msg.Subject = header.Get("value").String()
		case "from":
			msg.From = header.Get("value").String()
		}
		return true
	})

	var bodyText strings.Builder
	collectParts(root.Get("payload"), &bodyText, &msg.Attachments)
	msg.Body = strings.TrimSpace(bodyText.String())

	return msg
}

// collectParts walks the MIME part tree, gathering text/plain bodies and
// attachment references.
func collectParts(part gjson.Result, text *strings.Builder, attachments *[]Attachment) {
	if !part.Exists() {
		return
	}

	filename := part.Get("filename").String()
	attachmentID := part.Get("body.attachmentId").String()
	if filename != "" && attachmentID != "" {
		*attachments = append(*attachments, Attachment{
			ID:       attachmentID,
			Filename: filename,
			MimeType: part.Get("mimeType").String(),
			Size:     part.Get("body.size").Int(),
		})
		return
	}

	if strings.HasPrefix(part.Get("mimeType").String(), "text/plain") {
		if decoded, err := decodeBody(part.Get("body.data").String()); err == nil && decoded != "" {
			if text.Len() > 0 {
				text.WriteString("\n")
			}
			text.WriteString(decoded)
		}
	}

	part.Get("parts").ForEach(func(_, child gjson.Result) bool {
		collectParts(child, text, attachments)
		return true
	})
}

func decodeBody(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	data, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// StripReplyMarkers removes quoted history and reply markers from a plain-text
// body, keeping only the newest content.
func StripReplyMarkers(body string) string {
	lines := strings.Split(body, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ">") {
			continue
		}
		lower := strings.ToLower(trimmed)
		if strings.HasPrefix(lower, "on ") && strings.HasSuffix(lower, "wrote:") {
			break
		}
		if strings.HasPrefix(lower, "-----original message-----") {
			break
		}
		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}

var _ Service = (*GmailClient)(nil)
