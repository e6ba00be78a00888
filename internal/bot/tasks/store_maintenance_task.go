package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/edgard/steamguardbot/internal/config"
)

// newStoreMaintenanceTask compacts and optimizes the account store.
func newStoreMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", config.TaskStoreMaintenance)

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting store maintenance")
		startTime := time.Now()

		err := deps.Store.RunMaintenance(ctx)
		duration := time.Since(startTime)
		if err != nil {
			log.ErrorContext(ctx, "Store maintenance failed", "error", err, "duration", duration)
			return fmt.Errorf("store maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Store maintenance completed", "duration", duration)
		return nil
	}
}
