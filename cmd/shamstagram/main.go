// Package main contains the entrypoint for the bot reaction engine.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edgard/shamstagram/internal/bot"
	"github.com/edgard/shamstagram/internal/bot/tasks"
	"github.com/edgard/shamstagram/internal/config"
	"github.com/edgard/shamstagram/internal/database"
	"github.com/edgard/shamstagram/internal/feed"
	"github.com/edgard/shamstagram/internal/logger"
	"github.com/edgard/shamstagram/internal/metrics"
	"github.com/edgard/shamstagram/internal/persona"
	"github.com/edgard/shamstagram/internal/reply"
	"github.com/edgard/shamstagram/internal/transform"
)

const pendingPollInterval = 500 * time.Millisecond

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires every component, runs until a signal arrives or a component
// fails, and returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	postText := flag.String("post", "", "Publish one post with this text after startup")
	userID := flag.Int64("user", 1, "User id used with -post")
	exitAfterPost := flag.Bool("exit", false, "With -post, exit once every bot reply has fired")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	reg := metrics.NewRegistry()
	recorder := metrics.NewRecorder(reg)

	personas := persona.NewRegistry(cfg.Personas.Path, log)

	transformer, err := transform.New(ctx, cfg.AI, recorder, log)
	if err != nil {
		log.Error("Failed to initialize transform provider", "provider", cfg.AI.Provider, "error", err)
		return 1
	}

	dispatcher, err := reply.NewGocronDispatcher(log)
	if err != nil {
		log.Error("Failed to create reply dispatcher", "error", err)
		return 1
	}
	replies := reply.NewScheduler(log, personas, store, dispatcher, reply.WithObserver(recorder))
	recorder.RegisterPending(replies.Pending)

	svc := feed.NewService(store, transformer, replies,
		burst(cfg.Replies.Post), burst(cfg.Replies.Comment), log)

	tDeps := tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Personas: personas,
		Replies:  replies,
		Config:   cfg,
	}
	cron, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		_ = replies.Shutdown()
		return 1
	}

	var metricsServer bot.MetricsServer
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Addr, reg, store.Ping, log)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if *postText != "" {
		post, err := svc.CreatePost(runCtx, *userID, *postText)
		if err != nil {
			log.Error("Failed to publish post", "error", err)
			_ = replies.Shutdown()
			return 1
		}
		log.Info("Published post", "post_id", post.ID, "ai_text", post.AIText)

		if *exitAfterPost {
			go waitForReplies(runCtx, cancel, svc, replies, post.ID, log)
		}
	}

	app := bot.NewBot(log, replies, cron, metricsServer)

	log.Info("Starting engine...", "personas", personas.Len(), "persona_source", personas.Source(), "transform", transformer.Name())
	runErr := app.Run(runCtx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Engine stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Engine stopped gracefully.")
	return 0
}

func burst(c config.BurstConfig) reply.Burst {
	return reply.Burst{Count: c.Count, MinDelay: c.MinDelay, MaxDelay: c.MaxDelay, Stagger: c.Stagger}
}

// waitForReplies polls until every reply has finished, logs the comments of the
// post and stops the engine.
func waitForReplies(ctx context.Context, cancel context.CancelFunc, svc *feed.Service, replies *reply.Scheduler, postID int64, log *slog.Logger) {
	ticker := time.NewTicker(pendingPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if !replies.Idle() {
			continue
		}

		comments, err := svc.Comments(ctx, postID)
		if err != nil {
			log.Error("Failed to list comments", "post_id", postID, "error", err)
		}
		for _, c := range comments {
			log.Info("Comment", "author", c.Author(), "delay_ms", c.DelayMS, "content", c.Content)
		}
		cancel()
		return
	}
}
