package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	tgbot "github.com/go-telegram/bot"
	"github.com/jonboulle/clockwork"

	"github.com/edgard/steamguardbot/internal/accounts"
	"github.com/edgard/steamguardbot/internal/authcode"
	"github.com/edgard/steamguardbot/internal/bot"
	"github.com/edgard/steamguardbot/internal/bot/handlers"
	"github.com/edgard/steamguardbot/internal/bot/tasks"
	"github.com/edgard/steamguardbot/internal/config"
	"github.com/edgard/steamguardbot/internal/database"
	"github.com/edgard/steamguardbot/internal/httpserver"
	"github.com/edgard/steamguardbot/internal/logger"
	"github.com/edgard/steamguardbot/internal/telegram"
)

// runBot wires every component and blocks until ctx is cancelled or a
// component fails.
func runBot(ctx context.Context, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	store, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.Path, log)
	if err != nil {
		return fmt.Errorf("failed to open %s store at %s: %w", cfg.Database.Driver, cfg.Database.Path, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close store", "error", err)
		}
	}()

	generator, err := authcode.New(authcode.Options{
		Algorithm: cfg.Codes.Algorithm,
		Digits:    cfg.Codes.Digits,
		Period:    cfg.Codes.Period,
	})
	if err != nil {
		return fmt.Errorf("failed to create code generator: %w", err)
	}

	registry, err := accounts.LoadRegistry(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	log.Info("Loaded registered accounts", "count", registry.Len())

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log,
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithErrorsHandler(func(err error) {
			log.Error("Telegram client error", "error", err)
		}),
	)
	if err != nil {
		return err
	}

	me, err := tg.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}
	log.Info("Retrieved bot info", "bot_id", me.ID, "bot_username", me.Username)

	clock := clockwork.NewRealClock()
	messenger := telegram.NewMessenger(tg)

	registrar := accounts.NewRegistrar(accounts.RegistrarDeps{
		Logger:      log,
		Store:       store,
		Registry:    registry,
		Generator:   generator,
		Messenger:   messenger,
		Clock:       clock,
		Location:    cfg.Location(),
		NoticeDelay: cfg.Refresh.NoticeDelay,
		Texts: accounts.Texts{
			Usage:         cfg.Messages.Usage,
			AccountExists: cfg.Messages.AccountExists,
			InvalidSecret: cfg.Messages.InvalidSecret,
			GeneralError:  cfg.Messages.GeneralError,
		},
	})
	refresher := accounts.NewRefresher(accounts.RefresherDeps{
		Logger:    log,
		Registry:  registry,
		Generator: generator,
		Messenger: messenger,
		Clock:     clock,
		Location:  cfg.Location(),
	})

	hDeps := handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Registrar: registrar,
		Messenger: messenger,
	}
	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		return fmt.Errorf("failed to register Telegram handlers: %w", err)
	}

	tDeps := tasks.TaskDeps{
		Logger:    log,
		Store:     store,
		Refresher: refresher,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		return err
	}

	var httpServer *http.Server
	if cfg.HTTP.ListenAddr != "" {
		httpServer = httpserver.New(cfg.HTTP.ListenAddr, store, log)
	}

	app := bot.NewBot(log, tg, sched, httpServer, registrar)
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot stopped: %w", err)
	}

	log.Info("Bot stopped gracefully")
	return nil
}
