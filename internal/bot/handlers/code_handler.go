package handlers

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/mattn/go-shellwords"

	"github.com/edgard/steamguardbot/internal/accounts"
	"github.com/edgard/steamguardbot/internal/authcode"
)

// Mobile keyboards substitute typographic quotes for ASCII ones.
var quoteReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`,
	"‘", "'", "’", "'",
)

// NewCodeHandler returns a handler for the /code command.
func NewCodeHandler(deps HandlerDeps) bot.HandlerFunc {
	return codeHandler{deps}.Handle
}

// codeHandler registers an account from `/code "<name>" "<secret>"`.
type codeHandler struct {
	deps HandlerDeps
}

func (h codeHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "code")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Code handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	log = log.With("chat_id", chatID, "user_id", userID)
	log.InfoContext(ctx, "Handling /code command")

	name, secret := ParseCodeArgs(update.Message.Text)
	err := h.deps.Registrar.Register(ctx, accounts.Request{
		AccountName:      name,
		SharedSecret:     secret,
		OwnerID:          userID,
		ChatID:           chatID,
		RequestMessageID: update.Message.ID,
	})

	switch {
	case err == nil:
		log.InfoContext(ctx, "Account registration completed")
	case errors.Is(err, accounts.ErrInvalidRequest),
		errors.Is(err, accounts.ErrAccountExists),
		errors.Is(err, authcode.ErrInvalidSecret):
		log.InfoContext(ctx, "Account registration rejected", "reason", err)
	default:
		log.ErrorContext(ctx, "Account registration failed", "error", err)
	}
}

// ParseCodeArgs extracts the account name and shared secret from a /code
// message. Both are empty unless the message carries at least two arguments.
func ParseCodeArgs(text string) (name, secret string) {
	idx := strings.IndexFunc(text, unicode.IsSpace)
	if idx < 0 {
		return "", ""
	}

	args, err := shellwords.Parse(quoteReplacer.Replace(text[idx:]))
	if err != nil || len(args) < 2 {
		return "", ""
	}
	return args[0], args[1]
}
