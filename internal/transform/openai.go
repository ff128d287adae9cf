package transform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sashabaranov/go-openai"

	"github.com/edgard/shamstagram/internal/config"
	"github.com/edgard/shamstagram/internal/logger"
)

// OpenAI exaggerates text with an OpenAI-compatible chat completion API.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	instruction string
	maxRetries  int
	retryDelay  time.Duration
	log         *slog.Logger
}

// Base delay between retries, doubled on every attempt.
const openAIRetryDelay = 500 * time.Millisecond

// NewOpenAI creates an OpenAI transformer. timeout bounds each HTTP request.
func NewOpenAI(cfg config.OpenAIConfig, timeout time.Duration, log *slog.Logger) *OpenAI {
	if log == nil {
		log = logger.Discard()
	}

	openAICfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		openAICfg.BaseURL = cfg.BaseURL
	}
	openAICfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAI{
		client:      openai.NewClientWithConfig(openAICfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		instruction: cfg.SystemInstruction,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  openAIRetryDelay,
		log:         log.With("component", "openai_transform"),
	}
}

// Name implements Transformer.
func (o *OpenAI) Name() string {
	return ProviderOpenAI
}

// Transform requests one chat completion for text.
func (o *OpenAI) Transform(ctx context.Context, text string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if o.instruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: o.instruction,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})

	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	}

	var resp openai.ChatCompletionResponse
	err := retry.Do(
		func() error {
			var err error
			resp, err = o.client.CreateChatCompletion(ctx, req)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(o.maxRetries+1)),
		retry.Delay(o.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryableOpenAIError),
		retry.OnRetry(func(n uint, err error) {
			o.log.InfoContext(ctx, "Retrying chat completion", "attempt", n+1, "max_retries", o.maxRetries, "error", err)
		}),
	)
	if err != nil {
		o.log.ErrorContext(ctx, "Chat completion failed", "model", o.model, "error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return cleanResponse(resp.Choices[0].Message.Content)
}

// retryableOpenAIError reports rate limits, server errors and transport
// failures. Other API errors (bad key, bad request) are final.
func retryableOpenAIError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
