package database

import (
	"time"
)

// Account is a registered account whose authentication code is kept current
// in a previously published chat message. ChatID and MessageID identify that
// message; they are written once at registration and never change.
type Account struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	AccountName  string `db:"account_name"`
	SharedSecret string `db:"shared_secret"`
	OwnerID      int64  `db:"owner_id"`

	ChatID    int64 `db:"chat_id"`
	MessageID int   `db:"message_id"`
}
