package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hireloop/mailtriage/internal/ai/gemini"
	"github.com/hireloop/mailtriage/internal/dedup"
	"github.com/hireloop/mailtriage/internal/detect"
	"github.com/hireloop/mailtriage/internal/document"
	"github.com/hireloop/mailtriage/internal/email"
	"github.com/hireloop/mailtriage/internal/extract"
	"github.com/hireloop/mailtriage/internal/extract/generative"
	"github.com/hireloop/mailtriage/internal/extract/statistical"
	"github.com/hireloop/mailtriage/internal/hf"
	"github.com/hireloop/mailtriage/internal/logger"
	"github.com/hireloop/mailtriage/internal/secrets"
	"github.com/hireloop/mailtriage/internal/triage"
)

const (
	defaultQuery       = `in:inbox is:unread subject:(applying OR application OR resume)`
	defaultTierTimeout = 60 * time.Second
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the mailtriage main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("dry-run", "n", false, "triage and log decisions without sending replies or applying labels")
	runCmd.Flags().StringP("query", "q", "", "override the mailbox search query")

	viper.BindPFlag("gmail.query", runCmd.Flags().Lookup("query"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the mailtriage", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	deps, err := buildPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}
	defer deps.tracker.Close()

	query := defaultQuery
	if config.Gmail != nil && strings.TrimSpace(config.Gmail.Query) != "" {
		query = config.Gmail.Query
	}

	logger.Info("starting the search", zap.String("query", query))

	refs, err := deps.mail.Search(ctx, query)
	if err != nil {
		logger.Fatal("searching the mailbox", zap.Error(err))
	}

	if len(refs) == 0 {
		logger.Info("exiting", zap.String("reason", "no emails found"))
		return
	}

	logger.Info("emails found", zap.Int("count", len(refs)))

	dryRun := cmd.Flag("dry-run").Value.String() == "true"

	processed := 0
	for _, ref := range refs {
		if err := processEmail(ctx, deps, config, ref, dryRun, logger); err != nil {
			logger.Warn("skipping email",
				zap.String("message_id", ref.ID),
				zap.Error(err),
			)
			continue
		}
		processed++
	}

	logger.Info("run completed",
		zap.Int("processed", processed),
		zap.Int("skipped", len(refs)-processed),
	)
}

// pipeline bundles the collaborators the run and review commands drive.
type pipeline struct {
	mail         email.Service
	orchestrator *extract.Orchestrator
	detector     *detect.Detector
	tracker      *dedup.RedisTracker
	router       *triage.Router
	tierTimeout  time.Duration
}

func buildPipeline(ctx context.Context, config *Config, logger *zap.Logger) (*pipeline, error) {
	token, err := loadSecret("gmail token", tokenFile(config))
	if err != nil {
		return nil, fmt.Errorf("%w (set gmail.token-file or GMAIL_TOKEN_FILE)", err)
	}

	mail := email.NewGmailClient(token, logger)

	tiers, err := buildTiers(ctx, config, logger)
	if err != nil {
		return nil, err
	}

	redisCfg := dedup.Config{}
	if config.Redis != nil {
		redisCfg = dedup.Config{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
			TTL:      config.Redis.TTL,
		}
	}

	tierTimeout := defaultTierTimeout
	if config.Extraction != nil && config.Extraction.TierTimeout > 0 {
		tierTimeout = config.Extraction.TierTimeout
	}

	return &pipeline{
		mail:         mail,
		orchestrator: extract.NewOrchestrator(logger, tiers...),
		detector:     detect.New(document.NewDecoder(), logger),
		tracker:      dedup.NewRedisTracker(redisCfg),
		router:       triage.NewRouter(logger),
		tierTimeout:  tierTimeout,
	}, nil
}

// buildTiers assembles the escalation chain: the generative extractor first,
// the statistical classifier as the deeper fallback.
func buildTiers(ctx context.Context, config *Config, logger *zap.Logger) ([]extract.Tier, error) {
	if config.Gemini == nil {
		return nil, errors.New("gemini configuration is required")
	}
	if config.HF == nil {
		return nil, errors.New("hf configuration is required")
	}

	geminiKey, err := loadSecret("gemini api key", config.Gemini.APIKeyFile)
	if err != nil {
		return nil, fmt.Errorf("%w (set gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, geminiKey, config.Gemini.Model)
	if err != nil {
		return nil, fmt.Errorf("building gemini generator: %w", err)
	}

	hfKey, err := loadSecret("hugging face api key", config.HF.APIKeyFile)
	if err != nil {
		return nil, fmt.Errorf("%w (set hf.api-key-file or HF_API_KEY_FILE)", err)
	}

	classifier, err := hf.New(hf.Config{
		APIKey:        hfKey,
		ZeroShotModel: config.HF.ZeroShotModel,
		QAModel:       config.HF.QAModel,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("building hf classifier: %w", err)
	}

	maxLogLength := 0
	if config.Extraction != nil {
		maxLogLength = config.Extraction.MaxLogLength
	}

	return []extract.Tier{
		generative.New(generator, logger, maxLogLength),
		statistical.New(classifier, logger),
	}, nil
}

func processEmail(ctx context.Context, deps *pipeline, config *Config, ref email.Ref, dryRun bool, log *zap.Logger) error {
	seen, err := deps.tracker.Seen(ctx, ref.ThreadID)
	if err != nil {
		return fmt.Errorf("checking processed thread: %w", err)
	}
	if seen {
		log.Debug("thread already processed", zap.String("thread_id", ref.ThreadID))
		return nil
	}

	msg, err := deps.mail.Get(ctx, ref.ID)
	if err != nil {
		return fmt.Errorf("fetching message: %w", err)
	}

	content := email.Content{
		Subject: msg.Subject,
		Body:    email.StripReplyMarkers(msg.Body),
	}

	fetch := func(ctx context.Context, att email.Attachment) ([]byte, error) {
		return deps.mail.GetAttachment(ctx, msg.ID, att.ID)
	}

	extractCtx, cancel := context.WithTimeout(ctx, deps.tierTimeout)
	defer cancel()

	result := deps.orchestrator.Extract(extractCtx, content)

	hasResume, resumeSignal := deps.detector.HasResume(ctx, content, msg.Attachments, fetch)
	hasCoverLetter, _ := deps.detector.HasCoverLetter(ctx, content, msg.Attachments, fetch)

	decision := deps.router.Route(result, hasResume, hasCoverLetter)

	log.Info("triage decision",
		zap.String("processing_id", decision.ProcessingID),
		zap.String(logger.FieldEmailID, msg.ID),
		zap.String("action", string(decision.Action)),
		zap.String("resume_signal", string(resumeSignal)),
		zap.Strings("missing", decision.Missing),
	)

	if dryRun {
		return nil
	}

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

	if err := deps.mail.ModifyLabels(ctx, msg.ID, decision.Labels, nil); err != nil {
		return fmt.Errorf("applying labels: %w", err)
	}

	if err := deps.tracker.MarkProcessed(ctx, ref.ThreadID); err != nil {
		return fmt.Errorf("marking thread processed: %w", err)
	}

	return nil
}

// renderTemplate looks up the reply body for the decision and substitutes the
// {{missing}} placeholder with the fields the candidate should provide.
func renderTemplate(config *Config, decision *triage.Decision, result *extract.Result) (string, error) {
	body, ok := config.Templates[decision.Template]
	if !ok || strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("no reply template configured for %q", decision.Template)
	}

	body = strings.ReplaceAll(body, "{{missing}}", strings.Join(decision.Missing, ", "))
	body = strings.ReplaceAll(body, "{{job_title}}", result.JobTitle)

	return body, nil
}

func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

func tokenFile(config *Config) string {
	if config.Gmail != nil && strings.TrimSpace(config.Gmail.TokenFile) != "" {
		return config.Gmail.TokenFile
	}
	return viper.GetString("gmail.token-file")
}

func loadSecret(name, file string) (string, error) {
	return secrets.Load(secrets.Source{
		Name: name,
		File: strings.TrimSpace(file),
	})
}
