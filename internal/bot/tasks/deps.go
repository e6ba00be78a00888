// Package tasks implements the bot's scheduled tasks.
package tasks

import (
	"context"
	"log/slog"

	"github.com/edgard/steamguardbot/internal/accounts"
)

// Sweeper runs one refresh pass over every registered account.
type Sweeper interface {
	Sweep(ctx context.Context) (accounts.SweepReport, error)
}

// Maintainer runs storage housekeeping.
type Maintainer interface {
	RunMaintenance(ctx context.Context) error
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger    *slog.Logger
	Store     Maintainer
	Refresher Sweeper
}
