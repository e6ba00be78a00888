package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/steamguardbot/internal/accounts"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler greets the user and follows up with the usage text.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /start command", "chat_id", chatID, "user_id", update.Message.From.ID)

	for _, text := range []string{h.deps.Config.Messages.Welcome, h.deps.Config.Messages.Usage} {
		if _, err := h.deps.Messenger.Send(ctx, chatID, accounts.Message{Text: text}); err != nil {
			log.ErrorContext(ctx, "Failed to send start message", "error", err, "chat_id", chatID)
			return
		}
	}
}
