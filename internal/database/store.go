package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrDuplicateAccount is returned by InsertAccount when the owner already has
// an account with the same shared secret.
var ErrDuplicateAccount = errors.New("account with this shared secret already exists for owner")

// Store defines the durable account operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	// EnsureSchema creates the backing schema if absent. Safe to call repeatedly.
	EnsureSchema(ctx context.Context) error

	// InsertAccount appends one account, sets its ID and CreatedAt, and returns the ID.
	InsertAccount(ctx context.Context, account *Account) (int64, error)

	// ListAccounts returns every stored account. Order is unspecified.
	ListAccounts(ctx context.Context) ([]Account, error)

	// RunMaintenance performs backend housekeeping (VACUUM for sqlite).
	RunMaintenance(ctx context.Context) error

	// Close releases the underlying database handle.
	Close() error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	path   string
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, path string, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		path:   path,
		logger: logger.With("component", "store", "driver", DriverSQLite),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) EnsureSchema(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return ApplyMigrations(s.db.DB, ExtractDBNameFromPath(s.path))
}

func (s *sqlxStore) InsertAccount(ctx context.Context, account *Account) (int64, error) {
	if err := validateAccount(account); err != nil {
		return 0, err
	}

	account.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO accounts (account_name, shared_secret, chat_id, message_id, owner_id, created_at)
        VALUES (:account_name, :shared_secret, :chat_id, :message_id, :owner_id, :created_at);
    `

	result, err := s.db.NamedExecContext(ctx, query, account)
	if err != nil {
		if isUniqueViolation(err) {
			s.logger.WarnContext(ctx, "Duplicate account rejected by store", "owner_id", account.OwnerID)
			return 0, fmt.Errorf("failed to insert account for owner %d: %w", account.OwnerID, ErrDuplicateAccount)
		}
		s.logger.ErrorContext(ctx, "Error inserting account", "owner_id", account.OwnerID, "error", err)
		return 0, fmt.Errorf("failed to insert account for owner %d: %w", account.OwnerID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted account id: %w", err)
	}
	account.ID = id

	s.logger.DebugContext(ctx, "Account inserted", "account_id", id, "owner_id", account.OwnerID)
	return id, nil
}

func (s *sqlxStore) ListAccounts(ctx context.Context) ([]Account, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var accounts []Account
	query := `
        SELECT id, account_name, shared_secret, chat_id, message_id, owner_id, created_at
        FROM accounts;
    `
	if err := s.db.SelectContext(ctx, &accounts, query); err != nil {
		s.logger.ErrorContext(ctx, "Error listing accounts", "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	s.logger.DebugContext(ctx, "Listed accounts", "count", len(accounts))
	return accounts, nil
}

// RunMaintenance executes VACUUM followed by PRAGMA optimize.
func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite
	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		s.logger.WarnContext(ctx, "PRAGMA optimize failed", "error", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}

func (s *sqlxStore) Close() error {
	return s.db.Close()
}

func validateAccount(account *Account) error {
	if account == nil {
		return errors.New("cannot insert nil account")
	}
	if account.AccountName == "" {
		return errors.New("account must have a non-empty account_name")
	}
	if account.SharedSecret == "" {
		return errors.New("account must have a non-empty shared_secret")
	}
	if account.OwnerID == 0 {
		return errors.New("account must have a non-zero owner_id")
	}
	if account.ChatID == 0 || account.MessageID == 0 {
		return errors.New("account must reference a published message")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE")
}
