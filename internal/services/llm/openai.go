package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultHTTPTimeout = 60 * time.Second

// OpenAIClient implements Client against any OpenAI-compatible chat
// completion endpoint.
type OpenAIClient struct {
	cfg       Config
	api       openai.Client
	retry     retryer
	extraOpts []option.RequestOption
}

// Option customizes the client.
type Option func(*OpenAIClient)

// WithRetryMaxAttempts overrides the default retry count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *OpenAIClient) {
		c.retry.maxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *OpenAIClient) {
		c.retry.baseDelay = baseDelay
		c.retry.maxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *OpenAIClient) {
		c.retry.sleeper = sleeper
	}
}

// WithRequestOptions appends raw transport options, mainly for tests
// that point the client at a local server.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(c *OpenAIClient) {
		c.extraOpts = append(c.extraOpts, opts...)
	}
}

// NewOpenAIClient builds a client from configuration. The SDK's own
// retry loop is disabled; retrying happens here so backoff behavior
// matches the rest of the pipeline.
func NewOpenAIClient(cfg Config, opts ...Option) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm: api key required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("llm: model required")
	}
	client := &OpenAIClient{cfg: cfg, retry: newRetryer()}
	for _, opt := range opts {
		opt(client)
	}

	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	requestOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(cfg.BaseURL))
	}
	requestOpts = append(requestOpts, client.extraOpts...)
	client.api = openai.NewClient(requestOpts...)
	return client, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, "llm complete", systemPrompt, userPrompt, false)
}

func (c *OpenAIClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, "llm complete json", systemPrompt, userPrompt, true)
}

// HealthCheck issues a tiny JSON completion to verify the endpoint,
// key, and model before a batch starts.
func (c *OpenAIClient) HealthCheck(ctx context.Context) error {
	content, err := c.CompleteJSON(ctx,
		"You must respond with JSON only.",
		`Respond with {"ok":true}`)
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeJSON(content, &parsed); err != nil {
		return errors.New("llm health: unparseable response")
	}
	if !parsed.OK {
		return errors.New("llm health: unexpected response")
	}
	return nil
}

func (c *OpenAIClient) complete(ctx context.Context, op, systemPrompt, userPrompt string, jsonOnly bool) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if systemPrompt == "" {
		return "", errors.New(op + ": system prompt required")
	}
	if userPrompt == "" {
		return "", errors.New(op + ": user prompt required")
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	}
	if jsonOnly {
		params.Temperature = openai.Float(0)
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	} else {
		params.Temperature = openai.Float(c.cfg.Temperature)
	}

	return c.retry.Do(ctx, op, func(ctx context.Context) (string, error) {
		resp, err := c.api.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", &emptyContentError{Op: op}
		}
		choice := resp.Choices[0]
		content := strings.TrimSpace(choice.Message.Content)
		if content == "" {
			return "", &emptyContentError{Op: op, FinishReason: choice.FinishReason}
		}
		return content, nil
	})
}
