package accounts

import (
	"context"
	"fmt"
	"sync"

	"github.com/edgard/steamguardbot/internal/database"
	"github.com/edgard/steamguardbot/internal/metrics"
)

// AccountLister is the read side of the store used at startup.
type AccountLister interface {
	ListAccounts(ctx context.Context) ([]database.Account, error)
}

// Registry is the in-process, append-only view of every registered account.
// It is rebuilt from the store on each start.
type Registry struct {
	mu       sync.RWMutex
	accounts []database.Account
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// LoadRegistry reads every stored account into a new registry.
func LoadRegistry(ctx context.Context, store AccountLister) (*Registry, error) {
	loaded, err := store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	r := &Registry{accounts: loaded}
	metrics.RegisteredAccounts.Set(float64(len(loaded)))
	return r, nil
}

// Exists reports whether ownerID already registered sharedSecret.
func (r *Registry) Exists(sharedSecret string, ownerID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if a.SharedSecret == sharedSecret && a.OwnerID == ownerID {
			return true
		}
	}
	return false
}

// Append adds an account that has already been persisted.
func (r *Registry) Append(account database.Account) {
	r.mu.Lock()
	r.accounts = append(r.accounts, account)
	n := len(r.accounts)
	r.mu.Unlock()

	metrics.RegisteredAccounts.Set(float64(n))
}

// Snapshot returns a copy of the accounts in registry order.
func (r *Registry) Snapshot() []database.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]database.Account, len(r.accounts))
	copy(out, r.accounts)
	return out
}

// Len returns the number of registered accounts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}
