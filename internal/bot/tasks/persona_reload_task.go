package tasks

import (
	"context"
	"fmt"
)

// newPersonaReloadTask reloads the persona catalog so edits to the file are
// picked up without a restart. A failed reload keeps the current personas.
func newPersonaReloadTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", PersonaReload)

	return func(ctx context.Context) error {
		if deps.Config == nil || deps.Config.Personas.Path == "" {
			log.DebugContext(ctx, "No persona file configured, nothing to reload")
			return nil
		}

		if err := deps.Personas.Reload(); err != nil {
			return fmt.Errorf("persona reload failed: %w", err)
		}

		log.InfoContext(ctx, "Personas reloaded", "source", deps.Personas.Source(), "count", len(deps.Personas.Names()))
		return nil
	}
}
