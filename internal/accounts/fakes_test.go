package accounts

import (
	"context"
	"errors"
	"regexp"
	"sync"

	"github.com/edgard/steamguardbot/internal/database"
)

var codeBlockPattern = regexp.MustCompile("```([^`]+)```")

type sentMessage struct {
	Ref MessageRef
	Msg Message
}

type editedMessage struct {
	Ref MessageRef
	Msg Message
}

// fakeMessenger records every boundary call. Message ids start at 1000.
type fakeMessenger struct {
	mu       sync.Mutex
	nextID   int
	sent     []sentMessage
	edits    []editedMessage
	deletes  []MessageRef
	failEdit map[MessageRef]error
	failSend error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{nextID: 1000, failEdit: map[MessageRef]error{}}
}

func (m *fakeMessenger) Send(_ context.Context, chatID int64, msg Message) (MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSend != nil {
		return MessageRef{}, m.failSend
	}
	m.nextID++
	ref := MessageRef{ChatID: chatID, MessageID: m.nextID}
	m.sent = append(m.sent, sentMessage{Ref: ref, Msg: msg})
	return ref, nil
}

func (m *fakeMessenger) Edit(_ context.Context, ref MessageRef, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failEdit[ref]; ok {
		return err
	}
	m.edits = append(m.edits, editedMessage{Ref: ref, Msg: msg})
	return nil
}

func (m *fakeMessenger) Delete(_ context.Context, ref MessageRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deletes = append(m.deletes, ref)
	return nil
}

func (m *fakeMessenger) Sent() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}

func (m *fakeMessenger) Edits() []editedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]editedMessage(nil), m.edits...)
}

func (m *fakeMessenger) Deletes() []MessageRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MessageRef(nil), m.deletes...)
}

// fakeStore is an in-memory AccountWriter and AccountLister.
type fakeStore struct {
	mu        sync.Mutex
	rows      []database.Account
	insertErr error
}

func (s *fakeStore) InsertAccount(_ context.Context, account *database.Account) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insertErr != nil {
		return 0, s.insertErr
	}
	for _, row := range s.rows {
		if row.SharedSecret == account.SharedSecret && row.OwnerID == account.OwnerID {
			return 0, database.ErrDuplicateAccount
		}
	}
	account.ID = int64(len(s.rows) + 1)
	s.rows = append(s.rows, *account)
	return account.ID, nil
}

func (s *fakeStore) ListAccounts(_ context.Context) ([]database.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]database.Account(nil), s.rows...), nil
}

func (s *fakeStore) Rows() []database.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]database.Account(nil), s.rows...)
}

var errListFailed = errors.New("store unreachable")

type failingLister struct{}

func (failingLister) ListAccounts(context.Context) ([]database.Account, error) {
	return nil, errListFailed
}

func codeFrom(text string) string {
	m := codeBlockPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
