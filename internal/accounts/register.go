package accounts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"

	"github.com/edgard/steamguardbot/internal/authcode"
	"github.com/edgard/steamguardbot/internal/database"
	"github.com/edgard/steamguardbot/internal/metrics"
)

// DefaultNoticeDelay is how long a duplicate notice stays visible.
const DefaultNoticeDelay = 5 * time.Second

const cleanupTimeout = 30 * time.Second

var (
	// ErrInvalidRequest is returned when the account name or secret is missing.
	ErrInvalidRequest = errors.New("invalid registration request")
	// ErrAccountExists is returned when the owner already registered the secret.
	ErrAccountExists = errors.New("account already exists")
)

// AccountWriter is the write side of the store used by registration.
type AccountWriter interface {
	InsertAccount(ctx context.Context, account *database.Account) (int64, error)
}

// Texts are the user-facing replies sent by the registration flow.
type Texts struct {
	Usage         string
	AccountExists string
	InvalidSecret string
	GeneralError  string
}

// Request is one /code invocation.
type Request struct {
	AccountName      string `validate:"required"`
	SharedSecret     string `validate:"required"`
	OwnerID          int64  `validate:"required"`
	ChatID           int64  `validate:"required"`
	RequestMessageID int
}

// RegistrarDeps provides dependencies for the registration flow.
type RegistrarDeps struct {
	Logger      *slog.Logger
	Store       AccountWriter
	Registry    *Registry
	Generator   authcode.Generator
	Messenger   Messenger
	Clock       clockwork.Clock
	Location    *time.Location
	NoticeDelay time.Duration
	Texts       Texts
}

// Registrar turns registration requests into persisted, published accounts.
// Registrations are serialized so the duplicate check and the append stay
// consistent with each other.
type Registrar struct {
	logger      *slog.Logger
	store       AccountWriter
	registry    *Registry
	generator   authcode.Generator
	messenger   Messenger
	clock       clockwork.Clock
	location    *time.Location
	noticeDelay time.Duration
	texts       Texts
	validate    *validator.Validate

	mu      sync.Mutex
	pending sync.WaitGroup
}

// NewRegistrar creates a Registrar. Clock, Location and NoticeDelay default
// to the real clock, time.Local and DefaultNoticeDelay.
func NewRegistrar(deps RegistrarDeps) *Registrar {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	delay := deps.NoticeDelay
	if delay <= 0 {
		delay = DefaultNoticeDelay
	}

	return &Registrar{
		logger:      logger.With("component", "registrar"),
		store:       deps.Store,
		registry:    deps.Registry,
		generator:   deps.Generator,
		messenger:   deps.Messenger,
		clock:       clock,
		location:    loc,
		noticeDelay: delay,
		texts:       deps.Texts,
		validate:    validator.New(),
	}
}

// Register validates req, rejects duplicates, publishes the first code,
// persists the account and appends it to the registry, in that order.
// The request message is removed on success so the secret does not linger
// in the chat history. If persisting fails after publishing, the published
// message is left behind and the registry is unchanged.
func (r *Registrar) Register(ctx context.Context, req Request) error {
	req.AccountName = strings.TrimSpace(req.AccountName)
	req.SharedSecret = strings.TrimSpace(req.SharedSecret)
	log := r.logger.With("owner_id", req.OwnerID, "chat_id", req.ChatID)

	if err := r.validate.Struct(req); err != nil {
		metrics.Registrations.WithLabelValues(metrics.ResultInvalid).Inc()
		r.reply(ctx, log, req.ChatID, r.texts.Usage)
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.registry.Exists(req.SharedSecret, req.OwnerID) {
		metrics.Registrations.WithLabelValues(metrics.ResultDuplicate).Inc()
		log.InfoContext(ctx, "Account already registered for owner")
		r.noticeDuplicate(ctx, log, req)
		return ErrAccountExists
	}

	now := r.clock.Now()
	code, err := r.generator.Generate(req.SharedSecret, now)
	if err != nil {
		metrics.Registrations.WithLabelValues(metrics.ResultInvalid).Inc()
		r.reply(ctx, log, req.ChatID, r.texts.InvalidSecret)
		return fmt.Errorf("failed to generate code: %w", err)
	}

	ref, err := r.messenger.Send(ctx, req.ChatID, Message{
		Text:     FormatCodeMessage(req.AccountName, code, now.In(r.location)),
		Markdown: true,
	})
	if err != nil {
		metrics.Registrations.WithLabelValues(metrics.ResultFailed).Inc()
		log.ErrorContext(ctx, "Failed to publish code message", "error", err)
		return fmt.Errorf("failed to publish code message: %w", err)
	}

	account := database.Account{
		AccountName:  req.AccountName,
		SharedSecret: req.SharedSecret,
		OwnerID:      req.OwnerID,
		ChatID:       ref.ChatID,
		MessageID:    ref.MessageID,
	}
	if _, err := r.store.InsertAccount(ctx, &account); err != nil {
		metrics.Registrations.WithLabelValues(metrics.ResultFailed).Inc()
		log.ErrorContext(ctx, "Failed to persist account, published message is orphaned",
			"message_id", ref.MessageID, "error", err)
		r.reply(ctx, log, req.ChatID, r.texts.GeneralError)
		return fmt.Errorf("failed to persist account: %w", err)
	}

	r.registry.Append(account)
	metrics.Registrations.WithLabelValues(metrics.ResultCreated).Inc()
	log.InfoContext(ctx, "Account registered", "account_id", account.ID, "message_id", ref.MessageID)

	if req.RequestMessageID != 0 {
		if err := r.messenger.Delete(ctx, MessageRef{ChatID: req.ChatID, MessageID: req.RequestMessageID}); err != nil {
			log.WarnContext(ctx, "Failed to delete registration request message", "error", err)
		}
	}

	return nil
}

// Wait blocks until every scheduled notice cleanup has run.
func (r *Registrar) Wait() {
	r.pending.Wait()
}

func (r *Registrar) noticeDuplicate(ctx context.Context, log *slog.Logger, req Request) {
	var refs []MessageRef
	if req.RequestMessageID != 0 {
		refs = append(refs, MessageRef{ChatID: req.ChatID, MessageID: req.RequestMessageID})
	}

	notice, err := r.messenger.Send(ctx, req.ChatID, Message{Text: r.texts.AccountExists})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send duplicate notice", "error", err)
	} else {
		refs = append(refs, notice)
	}

	if len(refs) == 0 {
		return
	}

	r.pending.Add(1)
	r.clock.AfterFunc(r.noticeDelay, func() {
		defer r.pending.Done()

		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
		defer cancel()

		for _, ref := range refs {
			if err := r.messenger.Delete(cleanupCtx, ref); err != nil {
				log.WarnContext(cleanupCtx, "Failed to delete transient message", "message_id", ref.MessageID, "error", err)
			}
		}
	})
}

func (r *Registrar) reply(ctx context.Context, log *slog.Logger, chatID int64, text string) {
	if chatID == 0 || text == "" {
		return
	}
	if _, err := r.messenger.Send(ctx, chatID, Message{Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err)
	}
}
