package tasks

import (
	"context"
	"fmt"

	"github.com/edgard/steamguardbot/internal/config"
)

// newCodeRefreshTask edits every account's message with its current code.
func newCodeRefreshTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", config.TaskCodeRefresh)

	return func(ctx context.Context) error {
		report, err := deps.Refresher.Sweep(ctx)
		if err != nil {
			return fmt.Errorf("code refresh sweep %s interrupted: %w", report.SweepID, err)
		}

		if report.Failed > 0 {
			log.WarnContext(ctx, "Code refresh finished with failures",
				"sweep_id", report.SweepID,
				"total", report.Total,
				"updated", report.Updated,
				"failed", report.Failed)
		}
		return nil
	}
}
