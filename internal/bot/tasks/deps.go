// Package tasks implements the cron maintenance tasks of the engine.
package tasks

import (
	"log/slog"

	"github.com/edgard/shamstagram/internal/config"
	"github.com/edgard/shamstagram/internal/database"
)

// PersonaSource is the part of the persona registry the tasks use.
type PersonaSource interface {
	Names() []string
	Reload() error
	Source() string
}

// PendingCounter reports how many bot replies are still waiting.
type PendingCounter interface {
	Pending() int
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Personas PersonaSource
	Replies  PendingCounter
	Config   *config.Config
}
