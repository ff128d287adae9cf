// Package bot orchestrates the lifecycle of the engine components: the
// reply scheduler, the cron maintenance scheduler and the metrics server.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/shamstagram/internal/logger"
)

// ReplyEngine is the part of the reply scheduler the orchestrator manages.
type ReplyEngine interface {
	Pending() int
	Shutdown() error
}

// MetricsServer serves metrics until its context is cancelled.
type MetricsServer interface {
	Run(ctx context.Context) error
}

// Bot owns the long-running components and stops them together.
type Bot struct {
	logger  *slog.Logger
	replies ReplyEngine
	cron    *Scheduler
	metrics MetricsServer
}

// NewBot wires the orchestrator. metrics may be nil when disabled.
func NewBot(log *slog.Logger, replies ReplyEngine, cron *Scheduler, metrics MetricsServer) *Bot {
	if log == nil {
		log = logger.Discard()
	}
	return &Bot{
		logger:  log.With("component", "bot_orchestrator"),
		replies: replies,
		cron:    cron,
		metrics: metrics,
	}
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails. Pending bot replies are cancelled on the way out.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := b.cron.Start(); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := b.cron.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		b.logger.Info("Stopping reply scheduler...", "pending", b.replies.Pending())

		if err := b.replies.Shutdown(); err != nil {
			b.logger.Error("Error stopping reply scheduler", "error", err)
		}
		return nil
	})

	if b.metrics != nil {
		g.Go(func() error {
			return b.metrics.Run(gCtx)
		})
	}

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
