package ports

import "context"

// EventPublisher publishes challenge lifecycle events to notify other
// instances
type EventPublisher interface {
	PublishChallengeVerified(ctx context.Context, did string, state string) error
}
