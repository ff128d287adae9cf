// Package transform exaggerates user text before it is published. AI
// providers are optional; the template provider always works and backs the
// others up.
package transform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edgard/shamstagram/internal/config"
	"github.com/edgard/shamstagram/internal/logger"
	"github.com/edgard/shamstagram/internal/random"
	"github.com/edgard/shamstagram/internal/resilience"
	"github.com/edgard/shamstagram/internal/text"
)

// ErrEmptyResponse is returned when a provider answers with no text.
var ErrEmptyResponse = errors.New("empty response from provider")

// Transformer turns ordinary text into its exaggerated form.
type Transformer interface {
	Transform(ctx context.Context, text string) (string, error)
	Name() string
}

// Observer is told how each transform ended. result is one of "ok",
// "fallback" or "error".
type Observer interface {
	TransformDone(provider, result string)
}

// Fallback tries primary and answers with fallback when it fails.
type Fallback struct {
	primary  Transformer
	fallback Transformer
	timeout  time.Duration
	observer Observer
	log      *slog.Logger
}

// WithFallback wraps primary. A zero timeout leaves the caller's deadline
// alone; observer may be nil.
func WithFallback(primary, fallback Transformer, timeout time.Duration, observer Observer, log *slog.Logger) *Fallback {
	if log == nil {
		log = logger.Discard()
	}
	return &Fallback{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		observer: observer,
		log:      log.With("component", "transform"),
	}
}

// Name returns the primary provider name.
func (f *Fallback) Name() string {
	return f.primary.Name()
}

// Transform returns the primary answer, or the fallback answer on any
// primary error.
func (f *Fallback) Transform(ctx context.Context, text string) (string, error) {
	callCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	out, err := f.primary.Transform(callCtx, text)
	if err == nil {
		f.done(f.primary.Name(), "ok")
		return out, nil
	}

	f.log.WarnContext(ctx, "Transform provider failed, using fallback",
		"provider", f.primary.Name(), "fallback", f.fallback.Name(), "error", err)

	out, fbErr := f.fallback.Transform(ctx, text)
	if fbErr != nil {
		f.done(f.primary.Name(), "error")
		return "", fmt.Errorf("transform failed: %w", errors.Join(err, fbErr))
	}

	f.done(f.primary.Name(), "fallback")
	return out, nil
}

func (f *Fallback) done(provider, result string) {
	if f.observer != nil {
		f.observer.TransformDone(provider, result)
	}
}

// New builds the transformer selected by cfg.Provider. AI providers sit
// behind a circuit breaker and fall back to the template provider.
func New(ctx context.Context, cfg config.AIConfig, observer Observer, log *slog.Logger) (Transformer, error) {
	tmpl := NewTemplate(random.Global())

	var primary Transformer
	switch cfg.Provider {
	case "", ProviderTemplate:
		return &observed{Transformer: tmpl, observer: observer}, nil
	case ProviderGemini:
		g, err := NewGemini(ctx, cfg.Gemini, log)
		if err != nil {
			return nil, err
		}
		primary = g
	case ProviderOpenAI:
		primary = NewOpenAI(cfg.OpenAI, cfg.Timeout, log)
	default:
		return nil, fmt.Errorf("unknown transform provider %q", cfg.Provider)
	}

	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Name:        primary.Name(),
		MaxFailures: cfg.Breaker.MaxFailures,
		Cooldown:    cfg.Breaker.Cooldown,
	}, log)

	return WithFallback(WithBreaker(primary, breaker), tmpl, cfg.Timeout, observer, log), nil
}

// observed reports results of a transformer used without fallback.
type observed struct {
	Transformer
	observer Observer
}

func (o *observed) Transform(ctx context.Context, text string) (string, error) {
	out, err := o.Transformer.Transform(ctx, text)
	if o.observer != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		o.observer.TransformDone(o.Name(), result)
	}
	return out, err
}

func cleanResponse(s string) (string, error) {
	s = text.Sanitize(s)
	if s == "" {
		return "", ErrEmptyResponse
	}
	return s, nil
}
