package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/talaria-id/talaria/ports"
)

// ChallengeVerifiedEvent represents a successfully verified challenge
type ChallengeVerifiedEvent struct {
	DID   string `json:"did"`
	State string `json:"state"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     "talaria.challenge.verified",
	}
}

// PublishChallengeVerified publishes a challenge-verified event
func (p *WatermillPublisher) PublishChallengeVerified(ctx context.Context, did string, state string) error {
	event := ChallengeVerifiedEvent{
		DID:   did,
		State: state,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
