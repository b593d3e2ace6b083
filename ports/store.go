package ports

import (
	"context"
	"time"

	"github.com/talaria-id/talaria/core"
)

// ChallengeStore persists challenge records keyed by state token.
// Update must be atomic per record: a concurrent reader sees either the
// whole previous record or the whole new one, never a partial merge.
type ChallengeStore interface {
	// Insert stores a new record. A duplicate state is a hard error
	// (core.ErrStateCollision), never a silent overwrite.
	Insert(ctx context.Context, challenge *core.Challenge) error

	// FindByState returns the record for state or core.ErrChallengeNotFound.
	FindByState(ctx context.Context, state string) (*core.Challenge, error)

	// FindVerifiedFresh returns the record only if it is verified and no
	// older than maxAge; otherwise core.ErrChallengeNotFound.
	FindVerifiedFresh(ctx context.Context, state string, maxAge time.Duration) (*core.Challenge, error)

	// Update persists the record's attributes and verified flag.
	Update(ctx context.Context, challenge *core.Challenge) error

	// DeleteByState removes the record for state.
	DeleteByState(ctx context.Context, state string) error

	// PurgeOlderThan deletes every record older than age, verified or not.
	PurgeOlderThan(ctx context.Context, age time.Duration) error
}
