package handlers

import (
	"context"
	"log/slog"

	"github.com/edgard/steamguardbot/internal/accounts"
	"github.com/edgard/steamguardbot/internal/config"
)

// Registrar runs the registration flow for a /code request.
type Registrar interface {
	Register(ctx context.Context, req accounts.Request) error
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Registrar Registrar
	Messenger accounts.Messenger
}
