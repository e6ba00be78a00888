// Package accounts implements the account registry, the registration flow and
// the refresh cycle that keeps published code messages current.
package accounts

import (
	"context"

	"github.com/edgard/steamguardbot/internal/database"
)

// MessageRef identifies a sent chat message for later edits and deletes.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Message is an outgoing text. Markdown selects MarkdownV2 rendering.
type Message struct {
	Text     string
	Markdown bool
}

// Messenger is the chat boundary used by the registration flow and the
// refresh cycle.
type Messenger interface {
	Send(ctx context.Context, chatID int64, msg Message) (MessageRef, error)
	Edit(ctx context.Context, ref MessageRef, msg Message) error
	Delete(ctx context.Context, ref MessageRef) error
}

func refOf(a database.Account) MessageRef {
	return MessageRef{ChatID: a.ChatID, MessageID: a.MessageID}
}
