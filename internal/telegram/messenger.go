package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/steamguardbot/internal/accounts"
)

// API is the subset of *bot.Bot used by Messenger.
type API interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
}

// Messenger implements accounts.Messenger on top of the Bot API.
type Messenger struct {
	api API
}

var _ accounts.Messenger = (*Messenger)(nil)

// NewMessenger creates a Messenger. Pass the *bot.Bot returned by NewTelegramBot.
func NewMessenger(api API) *Messenger {
	return &Messenger{api: api}
}

// Send posts msg to chatID.
func (m *Messenger) Send(ctx context.Context, chatID int64, msg accounts.Message) (accounts.MessageRef, error) {
	sent, err := m.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      msg.Text,
		ParseMode: parseMode(msg),
	})
	if err != nil {
		return accounts.MessageRef{}, fmt.Errorf("sendMessage to chat %d: %w", chatID, err)
	}
	if sent == nil {
		return accounts.MessageRef{}, fmt.Errorf("sendMessage to chat %d: empty response", chatID)
	}
	return accounts.MessageRef{ChatID: sent.Chat.ID, MessageID: sent.ID}, nil
}

// Edit replaces the text of an existing message. Telegram rejects edits that
// leave the text unchanged; those are treated as success.
func (m *Messenger) Edit(ctx context.Context, ref accounts.MessageRef, msg accounts.Message) error {
	_, err := m.api.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    ref.ChatID,
		MessageID: ref.MessageID,
		Text:      msg.Text,
		ParseMode: parseMode(msg),
	})
	if err != nil && !isNotModified(err) {
		return fmt.Errorf("editMessageText %d in chat %d: %w", ref.MessageID, ref.ChatID, err)
	}
	return nil
}

// Delete removes a message.
func (m *Messenger) Delete(ctx context.Context, ref accounts.MessageRef) error {
	if _, err := m.api.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    ref.ChatID,
		MessageID: ref.MessageID,
	}); err != nil {
		return fmt.Errorf("deleteMessage %d in chat %d: %w", ref.MessageID, ref.ChatID, err)
	}
	return nil
}

func parseMode(msg accounts.Message) models.ParseMode {
	if msg.Markdown {
		return models.ParseModeMarkdown
	}
	return ""
}

func isNotModified(err error) bool {
	return errors.Is(err, bot.ErrorBadRequest) && strings.Contains(err.Error(), "message is not modified")
}
