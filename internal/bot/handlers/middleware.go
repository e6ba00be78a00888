// Package handlers contains Telegram bot command handlers, along with their
// registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/steamguardbot/internal/accounts"
)

// AllowedUsers rejects senders missing from telegram.allowed_user_ids with
// the not-authorized text. An empty allow-list lets everyone through.
func AllowedUsers(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				next(ctx, bot, update)
				return
			}

			userID := update.Message.From.ID
			if deps.Config.IsUserAuthorized(userID) {
				next(ctx, bot, update)
				return
			}

			chatID := update.Message.Chat.ID
			log := deps.Logger.With("middleware", "AllowedUsers")
			log.WarnContext(ctx, "Unauthorized access attempt", "user_id", userID, "chat_id", chatID)

			if _, err := deps.Messenger.Send(ctx, chatID, accounts.Message{Text: deps.Config.Messages.NotAuthorized}); err != nil {
				log.ErrorContext(ctx, "Failed to send unauthorized message", "error", err, "chat_id", chatID)
			}
		}
	}
}
