package accounts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/edgard/steamguardbot/internal/authcode"
	"github.com/edgard/steamguardbot/internal/database"
	"github.com/edgard/steamguardbot/internal/metrics"
)

// RefresherDeps provides dependencies for the refresh cycle.
type RefresherDeps struct {
	Logger    *slog.Logger
	Registry  *Registry
	Generator authcode.Generator
	Messenger Messenger
	Clock     clockwork.Clock
	Location  *time.Location
}

// SweepReport summarizes one pass over the registry.
type SweepReport struct {
	SweepID string
	Total   int
	Updated int
	Failed  int
}

// Refresher republishes the current code of every registered account.
type Refresher struct {
	logger    *slog.Logger
	registry  *Registry
	generator authcode.Generator
	messenger Messenger
	clock     clockwork.Clock
	location  *time.Location
}

// NewRefresher creates a Refresher. Clock and Location default to the real
// clock and time.Local.
func NewRefresher(deps RefresherDeps) *Refresher {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}

	return &Refresher{
		logger:    logger.With("component", "refresher"),
		registry:  deps.Registry,
		generator: deps.Generator,
		messenger: deps.Messenger,
		clock:     clock,
		location:  loc,
	}
}

// Sweep edits every account's message in registry order, one at a time.
// A failure on one account is logged and counted and the sweep moves on.
// Only context cancellation stops a sweep early.
func (r *Refresher) Sweep(ctx context.Context) (SweepReport, error) {
	start := r.clock.Now()
	report := SweepReport{SweepID: uuid.NewString()}
	log := r.logger.With("sweep_id", report.SweepID)

	snapshot := r.registry.Snapshot()
	report.Total = len(snapshot)
	log.DebugContext(ctx, "Issuing code updates", "accounts", report.Total)

	for _, account := range snapshot {
		if err := ctx.Err(); err != nil {
			log.WarnContext(ctx, "Sweep interrupted", "updated", report.Updated, "remaining", report.Total-report.Updated-report.Failed)
			return report, err
		}

		if stage, err := r.refreshOne(ctx, account); err != nil {
			report.Failed++
			metrics.RefreshFailures.WithLabelValues(stage).Inc()
			log.WarnContext(ctx, "Failed to refresh account code",
				"account_id", account.ID,
				"chat_id", account.ChatID,
				"message_id", account.MessageID,
				"stage", stage,
				"error", err)
			continue
		}
		report.Updated++
		metrics.RefreshEdits.Inc()
	}

	metrics.RefreshSweeps.Inc()
	metrics.RefreshSweepDuration.Observe(r.clock.Since(start).Seconds())
	log.DebugContext(ctx, "Code updates issued", "updated", report.Updated, "failed", report.Failed)
	return report, nil
}

func (r *Refresher) refreshOne(ctx context.Context, account database.Account) (string, error) {
	now := r.clock.Now()
	code, err := r.generator.Generate(account.SharedSecret, now)
	if err != nil {
		return "generate", fmt.Errorf("failed to generate code: %w", err)
	}

	msg := Message{
		Text:     FormatCodeMessage(account.AccountName, code, now.In(r.location)),
		Markdown: true,
	}
	if err := r.messenger.Edit(ctx, refOf(account), msg); err != nil {
		return "edit", fmt.Errorf("failed to edit message: %w", err)
	}
	return "", nil
}
