// Package bot orchestrates the Telegram listener, the scheduler and the
// optional HTTP endpoint for the lifetime of the process.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const httpShutdownTimeout = 5 * time.Second

// Listener receives Telegram updates until ctx is cancelled. *bot.Bot from
// go-telegram satisfies it.
type Listener interface {
	Start(ctx context.Context)
}

// Waiter blocks until background work started by a component has finished.
type Waiter interface {
	Wait()
}

// Bot represents the main bot application and manages its components' lifecycle.
type Bot struct {
	logger     *slog.Logger
	listener   Listener
	scheduler  *Scheduler
	httpServer *http.Server
	pending    Waiter
}

// NewBot creates the orchestrator. httpServer and pending may be nil.
func NewBot(logger *slog.Logger, listener Listener, scheduler *Scheduler, httpServer *http.Server, pending Waiter) *Bot {
	return &Bot{
		logger:     logger.With("component", "bot_orchestrator"),
		listener:   listener,
		scheduler:  scheduler,
		httpServer: httpServer,
		pending:    pending,
	}
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails. Pending notice cleanups are awaited before returning.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener")
		b.listener.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped")

		if gCtx.Err() == nil {
			b.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation")
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		if err := b.scheduler.Start(); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler")
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	if b.httpServer != nil {
		g.Go(func() error {
			b.logger.Info("Starting HTTP server", "addr", b.httpServer.Addr)
			if err := b.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gCtx), httpShutdownTimeout)
			defer cancel()
			if err := b.httpServer.Shutdown(shutdownCtx); err != nil {
				b.logger.Error("Error stopping HTTP server", "error", err)
			}
			return nil
		})
	}

	err := g.Wait()

	if b.pending != nil {
		b.logger.Debug("Waiting for pending message cleanups")
		b.pending.Wait()
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully")
	return nil
}
