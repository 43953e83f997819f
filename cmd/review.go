package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hireloop/mailtriage/internal/email"
	"github.com/hireloop/mailtriage/internal/extract"
	"github.com/hireloop/mailtriage/internal/logger"
	"github.com/hireloop/mailtriage/internal/triage"
)

const (
	PromptResolve = "Resolve with a job title"
	PromptSkip    = "Skip"
	PromptBack    = "back"

	reviewQuery = "label:" + triage.LabelClarify
)

var errExit = errors.New("exit requested")

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review emails the pipeline could not triage automatically",
	Run: func(cmd *cobra.Command, _ []string) {
		review(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func review(_ *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	deps, err := buildPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}
	defer deps.tracker.Close()

	refs, err := deps.mail.Search(ctx, reviewQuery)
	if err != nil {
		logger.Fatal("searching flagged emails", zap.Error(err))
	}

	if len(refs) == 0 {
		logger.Info("exiting", zap.String("reason", "no emails awaiting review"))
		return
	}

	messages := make([]*email.Message, 0, len(refs))
	for _, ref := range refs {
		msg, err := deps.mail.Get(ctx, ref.ID)
		if err != nil {
			logger.Warn("skipping unreadable email",
				zap.String("message_id", ref.ID),
				zap.Error(err),
			)
			continue
		}
		messages = append(messages, msg)
	}

	for {
		msg, err := pickMessage(messages)
		if err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := reviewMessage(ctx, deps, config, msg, logger); err != nil {
			if errors.Is(err, errExit) {
				continue
			}
			logger.Warn("review action failed",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
	}
}

func pickMessage(messages []*email.Message) (*email.Message, error) {
	items := make([]string, 0, len(messages)+1)
	for _, msg := range messages {
		items = append(items, fmt.Sprintf("%s %s / %s", msg.ID, msg.Subject, msg.From))
	}

	messagePrompt := promptui.Select{
		Label: "Choose an email and press ENTER",
		Items: append(items, PromptBack),
	}

	_, selected, err := messagePrompt.Run()
	if err != nil {
		return nil, err
	}

	if selected == PromptBack {
		return nil, errExit
	}

	id := strings.Split(selected, " ")[0]
	for _, msg := range messages {
		if msg.ID == id {
			return msg, nil
		}
	}

	return nil, fmt.Errorf("there is no such message id %s", id)
}

// reviewMessage asks the reviewer what to do with one flagged email. Resolving
// replays the routing with the manually supplied job title.
func reviewMessage(ctx context.Context, deps *pipeline, config *Config, msg *email.Message, logger *zap.Logger) error {
	fmt.Printf("\nFrom: %s\nSubject: %s\n\n%s\n\n", msg.From, msg.Subject, email.StripReplyMarkers(msg.Body))

	actionPrompt := promptui.Select{
		Label: "Proceed?",
		Items: []string{PromptResolve, PromptSkip},
	}

	_, action, err := actionPrompt.Run()
	if err != nil {
		return err
	}

	if action == PromptSkip {
		return errExit
	}

	titlePrompt := promptui.Prompt{
		Label: "Job title",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("job title must not be empty")
			}
			return nil
		},
	}

	title, err := titlePrompt.Run()
	if err != nil {
		return err
	}

	result := extract.NewUnclearResult()
	result.JobTitle = strings.TrimSpace(title)
	result.Confidence = 1
	result.Tier = "manual-review"
	result = extract.ApplyOverlay(result, msg.Subject+"\n"+msg.Body)

	content := email.Content{Subject: msg.Subject, Body: email.StripReplyMarkers(msg.Body)}
	fetch := func(ctx context.Context, att email.Attachment) ([]byte, error) {
		return deps.mail.GetAttachment(ctx, msg.ID, att.ID)
	}

	hasResume, _ := deps.detector.HasResume(ctx, content, msg.Attachments, fetch)
	hasCoverLetter, _ := deps.detector.HasCoverLetter(ctx, content, msg.Attachments, fetch)

	decision := deps.router.Route(result, hasResume, hasCoverLetter)

	body, err := renderTemplate(config, decision, result)
	if err != nil {
		return err
	}

	reply := &email.Reply{
		ThreadID: msg.ThreadID,
		To:       msg.From,
		Subject:  replySubject(msg.Subject),
		Body:     body,
	}

	if err := deps.mail.SendReply(ctx, reply); err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}

	if err := deps.mail.ModifyLabels(ctx, msg.ID, decision.Labels, []string{triage.LabelClarify}); err != nil {
		return fmt.Errorf("updating labels: %w", err)
	}

	logger.Info("email resolved",
		zap.String("message_id", msg.ID),
		zap.String("job_title", result.JobTitle),
		zap.String("action", string(decision.Action)),
	)

	return nil
}
