package transform

import (
	"context"

	"github.com/edgard/shamstagram/internal/resilience"
)

// guarded sends calls to an AI provider through a circuit breaker so a dead
// provider fails fast and the fallback answers without waiting for timeouts.
type guarded struct {
	Transformer
	breaker *resilience.Breaker
}

// WithBreaker wraps t with b.
func WithBreaker(t Transformer, b *resilience.Breaker) Transformer {
	return &guarded{Transformer: t, breaker: b}
}

func (g *guarded) Transform(ctx context.Context, text string) (string, error) {
	return g.breaker.Execute(ctx, func(ctx context.Context) (string, error) {
		return g.Transformer.Transform(ctx, text)
	})
}
