package transform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/shamstagram/internal/config"
	"github.com/edgard/shamstagram/internal/logger"
)

// Gemini exaggerates text with Google's Gemini API.
type Gemini struct {
	client        *genai.Client
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	modelName     string
	maxRetries    int
	retryDelay    time.Duration
}

// NewGemini creates a Gemini transformer.
func NewGemini(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if log == nil {
		log = logger.Discard()
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	gi, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	contentCfg := &genai.GenerateContentConfig{
		Temperature: &cfg.Temperature,
	}
	if cfg.SystemInstruction != "" {
		contentCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: cfg.SystemInstruction}}}
	}

	l := log.With("component", "gemini_transform")
	l.Info("Gemini client initialized successfully", "model", cfg.ModelName)

	return &Gemini{
		client:        gi,
		log:           l,
		contentConfig: contentCfg,
		modelName:     cfg.ModelName,
		maxRetries:    cfg.MaxRetries,
		retryDelay:    time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, nil
}

// Name implements Transformer.
func (g *Gemini) Name() string {
	return ProviderGemini
}

// Transform sends text as a single user turn.
func (g *Gemini) Transform(ctx context.Context, text string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}

	resp, err := g.generateContentWithRetries(ctx, contents)
	if err != nil {
		return "", err
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reason := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reason = resp.PromptFeedback.BlockReasonMessage
		}
		g.log.WarnContext(ctx, "Gemini request blocked", "reason", reason)
		return "", fmt.Errorf("gemini blocked the request: %s", reason)
	}

	return cleanResponse(resp.Text())
}

func (g *Gemini) generateContentWithRetries(ctx context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	var err error
	for i := 0; i <= g.maxRetries; i++ {
		var resp *genai.GenerateContentResponse
		resp, err = g.client.Models.GenerateContent(ctx, g.modelName, contents, g.contentConfig)
		if err == nil {
			return resp, nil
		}

		code := apiErrorCode(err)
		if code != 500 && code != 503 {
			g.log.ErrorContext(ctx, "Gemini API call failed with non-retriable error", "error", err)
			return nil, fmt.Errorf("gemini API call failed: %w", err)
		}

		if i < g.maxRetries {
			g.log.InfoContext(ctx, "Retrying Gemini API call", "attempt", i+1, "delay", g.retryDelay, "code", code)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(g.retryDelay):
			}
		}
	}

	g.log.ErrorContext(ctx, "Gemini API call failed after max retries", "error", err)
	return nil, fmt.Errorf("gemini API call failed after %d retries: %w", g.maxRetries, err)
}

// apiErrorCode returns the HTTP code of a genai.APIError, or 0.
func apiErrorCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}
	return 0
}
