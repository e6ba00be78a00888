package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/steamguardbot/internal/accounts"
	"github.com/edgard/steamguardbot/internal/config"
)

type recordingMessenger struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMessenger) Send(_ context.Context, chatID int64, msg accounts.Message) (accounts.MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg.Text)
	return accounts.MessageRef{ChatID: chatID, MessageID: len(m.sent)}, nil
}

func (m *recordingMessenger) Edit(context.Context, accounts.MessageRef, accounts.Message) error {
	return nil
}

func (m *recordingMessenger) Delete(context.Context, accounts.MessageRef) error {
	return nil
}

type recordingRegistrar struct {
	requests []accounts.Request
	err      error
}

func (r *recordingRegistrar) Register(_ context.Context, req accounts.Request) error {
	r.requests = append(r.requests, req)
	return r.err
}

func newTestDeps(allowed ...int64) (HandlerDeps, *recordingMessenger, *recordingRegistrar) {
	messenger := &recordingMessenger{}
	registrar := &recordingRegistrar{}
	deps := HandlerDeps{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: &config.Config{
			Telegram: config.TelegramConfig{AllowedUserIDs: allowed},
			Messages: config.MessagesConfig{
				Welcome:       "Hello, I'm a steam code bot",
				Usage:         `Usage: /code "<account_name>" "<token>"`,
				NotAuthorized: "not authorized",
			},
		},
		Registrar: registrar,
		Messenger: messenger,
	}
	return deps, messenger, registrar
}

func messageUpdate(userID int64, text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   77,
			Text: text,
			Chat: models.Chat{ID: 500},
			From: &models.User{ID: userID},
		},
	}
}

func TestParseCodeArgs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		text     string
		wantName string
		secret   string
	}{
		{name: "quoted", text: `/code "Main" "ABCD1234EFGH5678="`, wantName: "Main", secret: "ABCD1234EFGH5678="},
		{name: "name with spaces", text: `/code "My Main" "cnOgv/KdpLoP6Nbh0GMkXkPXALQ="`, wantName: "My Main", secret: "cnOgv/KdpLoP6Nbh0GMkXkPXALQ="},
		{name: "bot suffix", text: `/code@SteamGuardBot "Main" "abc"`, wantName: "Main", secret: "abc"},
		{name: "smart quotes", text: "/code “Main” “abc”", wantName: "Main", secret: "abc"},
		{name: "unquoted words", text: "/code Main abc", wantName: "Main", secret: "abc"},
		{name: "extra args ignored", text: `/code "Main" "abc" "extra"`, wantName: "Main", secret: "abc"},
		{name: "no args", text: "/code"},
		{name: "one arg", text: `/code "Main"`},
		{name: "unterminated quote", text: `/code "Main abc`},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			name, secret := ParseCodeArgs(tc.text)
			assert.Equal(t, tc.wantName, name)
			assert.Equal(t, tc.secret, secret)
		})
	}
}

func TestCodeHandlerBuildsRequest(t *testing.T) {
	t.Parallel()

	deps, _, registrar := newTestDeps()
	NewCodeHandler(deps)(context.Background(), nil, messageUpdate(42, `/code "Main" "abc"`))

	require.Len(t, registrar.requests, 1)
	assert.Equal(t, accounts.Request{
		AccountName:      "Main",
		SharedSecret:     "abc",
		OwnerID:          42,
		ChatID:           500,
		RequestMessageID: 77,
	}, registrar.requests[0])
}

func TestCodeHandlerPassesMissingArgsThrough(t *testing.T) {
	t.Parallel()

	deps, _, registrar := newTestDeps()
	registrar.err = accounts.ErrInvalidRequest
	NewCodeHandler(deps)(context.Background(), nil, messageUpdate(42, "/code"))

	require.Len(t, registrar.requests, 1)
	assert.Empty(t, registrar.requests[0].AccountName)
	assert.Empty(t, registrar.requests[0].SharedSecret)
}

func TestCodeHandlerIgnoresUpdatesWithoutSender(t *testing.T) {
	t.Parallel()

	deps, _, registrar := newTestDeps()
	NewCodeHandler(deps)(context.Background(), nil, &models.Update{ID: 3})
	assert.Empty(t, registrar.requests)
}

func TestStartHandlerSendsWelcomeThenUsage(t *testing.T) {
	t.Parallel()

	deps, messenger, _ := newTestDeps()
	NewStartHandler(deps)(context.Background(), nil, messageUpdate(42, "/start"))

	assert.Equal(t, []string{deps.Config.Messages.Welcome, deps.Config.Messages.Usage}, messenger.sent)
}

func TestHelpHandlerSendsUsage(t *testing.T) {
	t.Parallel()

	deps, messenger, _ := newTestDeps()
	NewHelpHandler(deps)(context.Background(), nil, messageUpdate(42, "/help"))

	assert.Equal(t, []string{deps.Config.Messages.Usage}, messenger.sent)
}

func TestAllowedUsers(t *testing.T) {
	t.Parallel()

	deps, messenger, _ := newTestDeps(42)
	var calls int
	next := func(context.Context, *tgbot.Bot, *models.Update) { calls++ }
	handler := AllowedUsers(deps)(next)

	handler(context.Background(), nil, messageUpdate(42, "/code"))
	assert.Equal(t, 1, calls)
	assert.Empty(t, messenger.sent)

	handler(context.Background(), nil, messageUpdate(43, "/code"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"not authorized"}, messenger.sent)
}

func TestRegisterAllCommands(t *testing.T) {
	t.Parallel()

	deps, _, _ := newTestDeps()
	commands := RegisterAllCommands(deps)

	require.Contains(t, commands, "/start")
	require.Contains(t, commands, "/code")
	assert.Equal(t, "code", commands["/code"].Pattern)
	assert.Len(t, commands["/code"].Middleware, 1)
	assert.Empty(t, commands["/start"].Middleware)
	for name, h := range commands {
		assert.NotNil(t, h.Handler, name)
	}
}

func TestRegistrarErrorsAreNotFatal(t *testing.T) {
	t.Parallel()

	deps, _, registrar := newTestDeps()
	registrar.err = errors.New("disk full")
	assert.NotPanics(t, func() {
		NewCodeHandler(deps)(context.Background(), nil, messageUpdate(42, `/code "Main" "abc"`))
	})
}
