package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, driver string) Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "accounts."+driver)
	store, err := Open(context.Background(), driver, path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStores(t *testing.T) {
	t.Parallel()

	for _, driver := range []string{DriverSQLite, DriverBbolt} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			t.Parallel()

			t.Run("EnsureSchemaIsIdempotent", func(t *testing.T) {
				store := openTestStore(t, driver)
				ctx := context.Background()

				require.NoError(t, store.EnsureSchema(ctx))
				require.NoError(t, store.EnsureSchema(ctx))
				require.NoError(t, store.Ping(ctx))

				accounts, err := store.ListAccounts(ctx)
				require.NoError(t, err)
				assert.Empty(t, accounts)
			})

			t.Run("InsertAndList", func(t *testing.T) {
				store := openTestStore(t, driver)
				ctx := context.Background()

				first := &Account{AccountName: "Main", SharedSecret: "ABCD1234EFGH5678", OwnerID: 42, ChatID: 42, MessageID: 7}
				second := &Account{AccountName: "Alt", SharedSecret: "ZZZZ1234EFGH5678", OwnerID: 42, ChatID: 42, MessageID: 8}

				id1, err := store.InsertAccount(ctx, first)
				require.NoError(t, err)
				id2, err := store.InsertAccount(ctx, second)
				require.NoError(t, err)

				assert.Equal(t, id1, first.ID)
				assert.Greater(t, id2, id1)
				assert.False(t, first.CreatedAt.IsZero())

				accounts, err := store.ListAccounts(ctx)
				require.NoError(t, err)
				require.Len(t, accounts, 2)

				byID := map[int64]Account{}
				for _, a := range accounts {
					byID[a.ID] = a
				}
				got := byID[id1]
				assert.Equal(t, "Main", got.AccountName)
				assert.Equal(t, "ABCD1234EFGH5678", got.SharedSecret)
				assert.Equal(t, int64(42), got.OwnerID)
				assert.Equal(t, int64(42), got.ChatID)
				assert.Equal(t, 7, got.MessageID)
			})

			t.Run("DuplicateSecretForOwner", func(t *testing.T) {
				store := openTestStore(t, driver)
				ctx := context.Background()

				_, err := store.InsertAccount(ctx, &Account{AccountName: "Main", SharedSecret: "secret", OwnerID: 1, ChatID: 1, MessageID: 1})
				require.NoError(t, err)

				_, err = store.InsertAccount(ctx, &Account{AccountName: "Other name", SharedSecret: "secret", OwnerID: 1, ChatID: 1, MessageID: 2})
				require.ErrorIs(t, err, ErrDuplicateAccount)

				// Same secret for a different owner is allowed.
				_, err = store.InsertAccount(ctx, &Account{AccountName: "Main", SharedSecret: "secret", OwnerID: 2, ChatID: 2, MessageID: 3})
				require.NoError(t, err)

				accounts, err := store.ListAccounts(ctx)
				require.NoError(t, err)
				assert.Len(t, accounts, 2)
			})

			t.Run("RejectsIncompleteAccount", func(t *testing.T) {
				store := openTestStore(t, driver)
				ctx := context.Background()

				testCases := []struct {
					name    string
					account *Account
				}{
					{name: "nil", account: nil},
					{name: "no name", account: &Account{SharedSecret: "s", OwnerID: 1, ChatID: 1, MessageID: 1}},
					{name: "no secret", account: &Account{AccountName: "n", OwnerID: 1, ChatID: 1, MessageID: 1}},
					{name: "no owner", account: &Account{AccountName: "n", SharedSecret: "s", ChatID: 1, MessageID: 1}},
					{name: "no message", account: &Account{AccountName: "n", SharedSecret: "s", OwnerID: 1}},
				}
				for _, tc := range testCases {
					_, err := store.InsertAccount(ctx, tc.account)
					assert.Error(t, err, tc.name)
				}
			})

			t.Run("Maintenance", func(t *testing.T) {
				store := openTestStore(t, driver)
				require.NoError(t, store.RunMaintenance(context.Background()))
			})

			t.Run("PersistsAcrossReopen", func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "reopen."+driver)
				ctx := context.Background()

				store, err := Open(ctx, driver, path, nil)
				require.NoError(t, err)
				_, err = store.InsertAccount(ctx, &Account{AccountName: "Main", SharedSecret: "secret", OwnerID: 1, ChatID: 1, MessageID: 1})
				require.NoError(t, err)
				require.NoError(t, store.Close())

				reopened, err := Open(ctx, driver, path, nil)
				require.NoError(t, err)
				defer func() { _ = reopened.Close() }()

				accounts, err := reopened.ListAccounts(ctx)
				require.NoError(t, err)
				require.Len(t, accounts, 1)
				assert.Equal(t, "Main", accounts[0].AccountName)
			})
		})
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "postgres", filepath.Join(t.TempDir(), "x.db"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestExtractDBNameFromPath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected string
	}{
		{input: "storage.db", expected: "storage.db"},
		{input: "file:storage.db", expected: "storage.db"},
		{input: "file:storage.db?_pragma=busy_timeout(5000)", expected: "storage.db"},
		{input: "my%20data.db", expected: "my data.db"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ExtractDBNameFromPath(tc.input), tc.input)
	}
}
