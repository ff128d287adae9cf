package tasks

import (
	"context"
)

// ScheduledTaskFunc is the signature of every scheduled task. The context
// provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// Task names as used in the scheduler.tasks configuration section.
const (
	SQLMaintenance    = "sql_maintenance"
	BotActivityReport = "bot_activity_report"
	PersonaReload     = "persona_reload"
)

// RegisterAllTasks returns every known task keyed by its configuration name.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		SQLMaintenance:    newSQLMaintenanceTask(deps),
		BotActivityReport: newBotActivityReportTask(deps),
		PersonaReload:     newPersonaReloadTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
