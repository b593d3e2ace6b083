package ports

import (
	"context"

	"github.com/talaria-id/talaria/core"
)

// AccountDirectory resolves asserted DIDs against known accounts.
type AccountDirectory interface {
	// FindByDID returns the account for did or core.ErrAccountNotFound.
	FindByDID(ctx context.Context, did string) (*core.Account, error)

	// Create registers a new account. A duplicate DID is
	// core.ErrAccountExists.
	Create(ctx context.Context, account *core.Account) error
}
