package hf

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/hireloop/mailtriage/internal/ai"
	"github.com/hireloop/mailtriage/internal/utils"
)

const (
	inferenceAPIURL = "https://api-inference.huggingface.co/models/"

	defaultZeroShotModel = "facebook/bart-large-mnli"
	defaultQAModel       = "deepset/roberta-base-squad2"

	inferRetries   = 2
	inferRetryWait = 5 * time.Second
)

// Client talks to the Hugging Face inference API for zero-shot classification
// and extractive question answering. Models are warmed up once per process;
// concurrent first-callers share a single warmup request.
type Client struct {
	http          *resty.Client
	zeroShotModel string
	qaModel       string
	logger        *zap.Logger

	warmup   singleflight.Group
	warmedMu sync.RWMutex
	warmed   map[string]bool
}

// Config holds connection settings for the inference API.
type Config struct {
	APIKey        string
	ZeroShotModel string
	QAModel       string
}

// New creates a Client. An empty model name selects the default for that task.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("hugging face api key is required")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	zeroShot := strings.TrimSpace(cfg.ZeroShotModel)
	if zeroShot == "" {
		zeroShot = defaultZeroShotModel
	}

	qa := strings.TrimSpace(cfg.QAModel)
	if qa == "" {
		qa = defaultQAModel
	}

	client := resty.New().
		SetBaseURL(inferenceAPIURL).
		SetAuthToken(apiKey).
		SetTimeout(60 * time.Second)

	return &Client{
		http:          client,
		zeroShotModel: zeroShot,
		qaModel:       qa,
		logger:        logger,
		warmed:        make(map[string]bool),
	}, nil
}

// Classify runs zero-shot classification of text against the candidate labels
// and returns them ranked by score.
func (c *Client) Classify(ctx context.Context, text string, labels []string) ([]ai.LabelScore, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text must not be empty")
	}
	if len(labels) == 0 {
		return nil, errors.New("candidate labels are required")
	}

	if err := c.ensureWarm(ctx, c.zeroShotModel); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"candidate_labels": labels,
		},
	}

	body, err := c.infer(ctx, c.zeroShotModel, payload)
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(body)
	names := root.Get("labels").Array()
	scores := root.Get("scores").Array()
	if len(names) == 0 || len(names) != len(scores) {
		return nil, fmt.Errorf("unexpected classification response shape: %s", root.Raw)
	}

	ranked := make([]ai.LabelScore, 0, len(names))
	for i, name := range names {
		ranked = append(ranked, ai.LabelScore{
			Label: name.String(),
			Score: scores[i].Float(),
		})
	}

	return ranked, nil
}

// AnswerQuestion runs extractive question answering over the passage.
func (c *Client) AnswerQuestion(ctx context.Context, question, passage string) (*ai.Answer, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(passage) == "" {
		return nil, errors.New("question and passage must not be empty")
	}

	if err := c.ensureWarm(ctx, c.qaModel); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"inputs": map[string]string{
			"question": question,
			"context":  passage,
		},
	}

	body, err := c.infer(ctx, c.qaModel, payload)
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(body)
	answer := root.Get("answer")
	if !answer.Exists() {
		return nil, fmt.Errorf("unexpected question-answering response shape: %s", root.Raw)
	}

	return &ai.Answer{
		Text:  strings.TrimSpace(answer.String()),
		Score: root.Get("score").Float(),
	}, nil
}

// ensureWarm issues a one-time warmup request per model so cold model loading
// happens exactly once even under concurrent first calls.
func (c *Client) ensureWarm(ctx context.Context, model string) error {
	c.warmedMu.RLock()
	warm := c.warmed[model]
	c.warmedMu.RUnlock()
	if warm {
		return nil
	}

	_, err, _ := c.warmup.Do(model, func() (any, error) {
		c.warmedMu.RLock()
		warm := c.warmed[model]
		c.warmedMu.RUnlock()
		if warm {
			return nil, nil
		}

		c.logger.Debug("warming up inference model", zap.String("model", model))

		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("wait_for_model", "true").
			SetBody(map[string]any{"inputs": "warmup"}).
			Post(model)
		if err != nil {
			return nil, fmt.Errorf("warm up model %s: %w", model, err)
		}

		// 400 here still means the model is loaded; only infra-level
		// statuses signal the model is unavailable.
		if resp.StatusCode() >= 500 {
			return nil, fmt.Errorf("warm up model %s: status %s", model, resp.Status())
		}

		c.warmedMu.Lock()
		c.warmed[model] = true
		c.warmedMu.Unlock()
		return nil, nil
	})

	return err
}

// infer posts the payload and retries when the API reports the model was
// evicted between the warmup and this call.
func (c *Client) infer(ctx context.Context, model string, payload any) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= inferRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying inference call",
				zap.String("model", model),
				zap.Int("attempt", attempt),
			)
			if err := utils.WaitFor(ctx, inferRetryWait); err != nil {
				return nil, err
			}
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(payload).
			Post(model)
		if err != nil {
			return nil, fmt.Errorf("inference call to %s: %w", model, err)
		}

		if resp.StatusCode() == http.StatusServiceUnavailable {
			lastErr = fmt.Errorf("inference call to %s: status %s", model, resp.Status())
			continue
		}
		if resp.IsError() {
			return nil, fmt.Errorf("inference call to %s: status %s", model, resp.Status())
		}

		return resp.Body(), nil
	}

	return nil, lastErr
}

var _ ai.Classifier = (*Client)(nil)
