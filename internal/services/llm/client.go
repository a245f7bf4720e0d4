package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	jsonResponseType      = "json_object"
	defaultBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultHTTPTimeout    = 60 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 3
)

// Config captures the runtime settings required to talk to the model API.
type Config struct {
	APIKey string
	// BaseURL is the full chat completions endpoint.
	BaseURL string
	Model   string
	// FallbackModels are tried in order when Model is rate limited or
	// rejects the request.
	FallbackModels []string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// DefaultHTTPTimeout returns the default timeout used for requests.
func DefaultHTTPTimeout() time.Duration {
	return defaultHTTPTimeout
}

// Client wraps an OpenRouter-compatible chat completion API.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the per-model attempt count (defaults to 3).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			FallbackModels: cleanModels(cfg.Model, cfg.FallbackModels),
			Referer:        strings.TrimSpace(cfg.Referer),
			Title:          strings.TrimSpace(cfg.Title),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

func cleanModels(primary string, fallbacks []string) []string {
	seen := map[string]bool{strings.TrimSpace(primary): true}
	var out []string
	for _, model := range fallbacks {
		model = strings.TrimSpace(model)
		if model == "" || seen[model] {
			continue
		}
		seen[model] = true
		out = append(out, model)
	}
	return out
}

// Models returns the model chain in the order it is tried.
func (c *Client) Models() []string {
	chain := make([]string, 0, 1+len(c.cfg.FallbackModels))
	if c.cfg.Model != "" {
		chain = append(chain, c.cfg.Model)
	}
	return append(chain, c.cfg.FallbackModels...)
}

// Complete sends a plain-text chat completion and returns the reply text.
// The system prompt is optional. Each model in the chain is retried on
// transient failures; a rate limit or a rejected request moves on to the
// next model.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return "", errors.New("llm complete: user prompt required")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("llm complete: api key required")
	}
	return c.completeWithFallback(ctx, buildMessages(systemPrompt, userPrompt), nil, "llm complete")
}

// CompleteJSON issues a JSON-only chat completion request and returns the raw
// JSON payload produced by the model.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if systemPrompt == "" {
		return "", errors.New("llm complete json: system prompt required")
	}
	if userPrompt == "" {
		return "", errors.New("llm complete json: user prompt required")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("llm complete json: api key required")
	}
	format := map[string]string{"type": jsonResponseType}
	return c.completeWithFallback(ctx, buildMessages(systemPrompt, userPrompt), format, "llm complete json")
}

// HealthCheck issues a fast ping against the primary model to verify the API
// key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("llm health: api key required")
	}
	payload := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: buildMessages(
			"You must respond with JSON only.",
			"Respond with {\"ok\":true}",
		),
		ResponseFormat: map[string]string{"type": jsonResponseType},
	}
	content, err := c.completionContentWithRetry(ctx, payload, false, "llm health")
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeJSON(content, &parsed); err != nil {
		return fmt.Errorf("llm health: parse payload: %w", err)
	}
	if !parsed.OK {
		return errors.New("llm health: unexpected response")
	}
	return nil
}

func buildMessages(systemPrompt, userPrompt string) []chatMessage {
	var messages []chatMessage
	if s := strings.TrimSpace(systemPrompt); s != "" {
		messages = append(messages, chatMessage{Role: "system", Content: s})
	}
	return append(messages, chatMessage{Role: "user", Content: userPrompt})
}

func (c *Client) completeWithFallback(ctx context.Context, messages []chatMessage, format map[string]string, op string) (string, error) {
	models := c.Models()
	if len(models) == 0 {
		return "", fmt.Errorf("%s: model required", op)
	}
	var lastErr error
	for i, model := range models {
		payload := chatCompletionRequest{
			Model:          model,
			Messages:       messages,
			ResponseFormat: format,
		}
		hasNext := i < len(models)-1
		content, err := c.completionContentWithRetry(ctx, payload, hasNext, op)
		if err == nil {
			return content, nil
		}
		lastErr = fmt.Errorf("model %s: %w", model, err)
		if !hasNext || !shouldFallback(err) {
			break
		}
	}
	return "", lastErr
}

// shouldFallback reports whether another model could succeed where this one
// failed: rate limits, rejected requests and empty replies qualify, server
// errors that survived retries do not.
func shouldFallback(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode < http.StatusInternalServerError
	}
	var emptyErr *emptyContentError
	return errors.As(err, &emptyErr)
}
