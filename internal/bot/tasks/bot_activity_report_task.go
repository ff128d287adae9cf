package tasks

import (
	"context"
	"fmt"
)

// newBotActivityReportTask logs how many comments each persona has written
// and how many replies are still pending. Personas that never commented are
// reported with zero.
func newBotActivityReportTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", BotActivityReport)

	return func(ctx context.Context) error {
		counts, err := deps.Store.CountBotComments(ctx)
		if err != nil {
			return fmt.Errorf("failed to count bot comments: %w", err)
		}

		total := 0
		for _, name := range deps.Personas.Names() {
			log.InfoContext(ctx, "Persona activity", "persona", name, "comments", counts[name])
			total += counts[name]
		}

		pending := 0
		if deps.Replies != nil {
			pending = deps.Replies.Pending()
		}

		log.InfoContext(ctx, "Bot activity report", "total_comments", total, "pending_replies", pending)
		return nil
	}
}
