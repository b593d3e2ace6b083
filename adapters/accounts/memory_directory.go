package accounts

import (
	"context"
	"sync"

	"github.com/talaria-id/talaria/core"
	"github.com/talaria-id/talaria/ports"
)

// MemoryDirectory is an in-memory implementation of the AccountDirectory
// interface, intended for tests.
type MemoryDirectory struct {
	accounts map[string]core.Account
	mu       sync.RWMutex
}

// NewMemoryDirectory creates a new in-memory account directory
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		accounts: make(map[string]core.Account),
	}
}

var _ ports.AccountDirectory = (*MemoryDirectory)(nil)

// FindByDID looks up an account by its DID
func (d *MemoryDirectory) FindByDID(ctx context.Context, did string) (*core.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	account, exists := d.accounts[did]
	if !exists {
		return nil, core.ErrAccountNotFound
	}

	return &account, nil
}

// Create registers a new account
func (d *MemoryDirectory) Create(ctx context.Context, account *core.Account) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.accounts[account.DID]; exists {
		return core.ErrAccountExists
	}

	d.accounts[account.DID] = *account
	return nil
}
