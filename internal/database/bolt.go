package database

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
)

var (
	bucketAccounts      = []byte("accounts")
	bucketAccountOwners = []byte("account_owners")
)

// boltAccount is the msgpack record stored under the accounts bucket.
type boltAccount struct {
	ID           int64  `msgpack:"id"`
	AccountName  string `msgpack:"accountName"`
	SharedSecret string `msgpack:"sharedSecret"`
	OwnerID      int64  `msgpack:"ownerId"`
	ChatID       int64  `msgpack:"chatId"`
	MessageID    int    `msgpack:"messageId"`
	CreatedAt    int64  `msgpack:"createdAt"`
}

func (a *boltAccount) Key() []byte {
	return itob(uint64(a.ID)) //nolint:gosec // ids come from NextSequence
}

func (a *boltAccount) MarshalBinary() ([]byte, error) {
	type alias boltAccount
	return msgpack.Marshal((*alias)(a))
}

func (a *boltAccount) UnmarshalBinary(data []byte) error {
	type alias boltAccount
	return msgpack.Unmarshal(data, (*alias)(a))
}

func (a *boltAccount) toAccount() Account {
	return Account{
		ID:           a.ID,
		CreatedAt:    time.Unix(0, a.CreatedAt).UTC(),
		AccountName:  a.AccountName,
		SharedSecret: a.SharedSecret,
		OwnerID:      a.OwnerID,
		ChatID:       a.ChatID,
		MessageID:    a.MessageID,
	}
}

// boltStore implements Store on a single bbolt file. The account_owners
// bucket indexes (owner_id, shared_secret) to enforce uniqueness.
type boltStore struct {
	db     *bbolt.DB
	logger *slog.Logger
}

// NewBoltStore opens (or creates) the bbolt file at path.
func NewBoltStore(path string, logger *slog.Logger) (Store, error) {
	if path == "" {
		return nil, errors.New("database path is empty")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt db: %w", err)
	}

	return &boltStore{
		db:     db,
		logger: logger.With("component", "store", "driver", DriverBbolt),
	}, nil
}

func (s *boltStore) Ping(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketAccounts) == nil {
			return errors.New("accounts bucket is missing")
		}
		return nil
	})
}

func (s *boltStore) EnsureSchema(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketAccounts); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketAccountOwners); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create buckets: %w", err)
	}
	return nil
}

func (s *boltStore) InsertAccount(ctx context.Context, account *Account) (int64, error) {
	if err := validateAccount(account); err != nil {
		return 0, err
	}
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	createdAt := time.Now().UTC()
	var id int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		accounts := tx.Bucket(bucketAccounts)
		owners := tx.Bucket(bucketAccountOwners)
		if accounts == nil || owners == nil {
			return errors.New("schema not initialized")
		}

		ownerKey := ownerSecretKey(account.OwnerID, account.SharedSecret)
		if owners.Get(ownerKey) != nil {
			return ErrDuplicateAccount
		}

		seq, err := accounts.NextSequence()
		if err != nil {
			return err
		}
		id = int64(seq) //nolint:gosec // sequence stays far below MaxInt64

		rec := &boltAccount{
			ID:           id,
			AccountName:  account.AccountName,
			SharedSecret: account.SharedSecret,
			OwnerID:      account.OwnerID,
			ChatID:       account.ChatID,
			MessageID:    account.MessageID,
			CreatedAt:    createdAt.UnixNano(),
		}
		data, err := rec.MarshalBinary()
		if err != nil {
			return err
		}
		if err := accounts.Put(rec.Key(), data); err != nil {
			return err
		}
		return owners.Put(ownerKey, rec.Key())
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			s.logger.WarnContext(ctx, "Duplicate account rejected by store", "owner_id", account.OwnerID)
		} else {
			s.logger.ErrorContext(ctx, "Error inserting account", "owner_id", account.OwnerID, "error", err)
		}
		return 0, fmt.Errorf("failed to insert account for owner %d: %w", account.OwnerID, err)
	}

	account.ID = id
	account.CreatedAt = createdAt
	s.logger.DebugContext(ctx, "Account inserted", "account_id", id, "owner_id", account.OwnerID)
	return id, nil
}

func (s *boltStore) ListAccounts(ctx context.Context) ([]Account, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var accounts []Account
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketAccounts)
		if b == nil {
			return errors.New("schema not initialized")
		}
		return b.ForEach(func(_, v []byte) error {
			var rec boltAccount
			if err := rec.UnmarshalBinary(v); err != nil {
				return err
			}
			accounts = append(accounts, rec.toAccount())
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	s.logger.DebugContext(ctx, "Listed accounts", "count", len(accounts))
	return accounts, nil
}

// RunMaintenance flushes the file to disk; bbolt has no compaction in place.
func (s *boltStore) RunMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := s.db.Sync(); err != nil {
		return fmt.Errorf("failed to sync bbolt db: %w", err)
	}
	stats := s.db.Stats()
	s.logger.InfoContext(ctx, "Database maintenance completed", "free_pages", stats.FreePageN, "open_tx", stats.OpenTxN)
	return nil
}

func (s *boltStore) Close() error {
	return s.db.Close()
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func ownerSecretKey(ownerID int64, secret string) []byte {
	key := make([]byte, 8, 8+len(secret))
	binary.BigEndian.PutUint64(key, uint64(ownerID)) //nolint:gosec // bit pattern only
	return append(key, secret...)
}
