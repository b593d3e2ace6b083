package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/talaria-id/talaria/core"
	"github.com/talaria-id/talaria/ports"
)

// RedisStore is a Redis implementation of the ChallengeStore interface.
// Records live as JSON values keyed by state, with creation times mirrored
// into a sorted set so age-based purges are a single range query.
type RedisStore struct {
	client    *redis.Client
	prefix    string
	indexKey  string
	recordTTL time.Duration
}

// NewRedisStore creates a new Redis store. recordTTL is a safety net on
// each record key; the opportunistic purge remains the authoritative
// cleanup and recordTTL should comfortably exceed the housekeeping window.
func NewRedisStore(client *redis.Client, recordTTL time.Duration) *RedisStore {
	return &RedisStore{
		client:    client,
		prefix:    "talaria:challenge:",
		indexKey:  "talaria:challenge:index",
		recordTTL: recordTTL,
	}
}

var _ ports.ChallengeStore = (*RedisStore)(nil)

// Insert stores a new challenge record in Redis
func (s *RedisStore) Insert(ctx context.Context, challenge *core.Challenge) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	key := s.prefix + challenge.State

	created, err := s.client.SetNX(ctx, key, payload, s.recordTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to insert challenge: %w", err)
	}
	if !created {
		return core.ErrStateCollision
	}

	err = s.client.ZAdd(ctx, s.indexKey, redis.Z{
		Score:  float64(challenge.CreatedAt.UnixNano()),
		Member: challenge.State,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to index challenge: %w", err)
	}

	return nil
}

// FindByState retrieves a challenge record by its state token
func (s *RedisStore) FindByState(ctx context.Context, state string) (*core.Challenge, error) {
	payload, err := s.client.Get(ctx, s.prefix+state).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, core.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to fetch challenge: %w", err)
	}

	var challenge core.Challenge
	if err := json.Unmarshal([]byte(payload), &challenge); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}

	return &challenge, nil
}

// FindVerifiedFresh retrieves a challenge record only if it has been
// verified and is no older than maxAge
func (s *RedisStore) FindVerifiedFresh(ctx context.Context, state string, maxAge time.Duration) (*core.Challenge, error) {
	challenge, err := s.FindByState(ctx, state)
	if err != nil {
		return nil, err
	}

	if !challenge.Verified || !challenge.Fresh(time.Now(), maxAge) {
		return nil, core.ErrChallengeNotFound
	}

	return challenge, nil
}

// Update replaces the stored record. The JSON value is swapped in a single
// SET, so readers never observe a partial attribute merge.
func (s *RedisStore) Update(ctx context.Context, challenge *core.Challenge) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	key := s.prefix + challenge.State

	// XX: update only, an expired or deleted record must not resurrect
	set, err := s.client.SetXX(ctx, key, payload, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to update challenge: %w", err)
	}
	if !set {
		return core.ErrChallengeNotFound
	}

	return nil
}

// DeleteByState removes a challenge record and its index entry
func (s *RedisStore) DeleteByState(ctx context.Context, state string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.prefix+state)
	pipe.ZRem(ctx, s.indexKey, state)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}

	return nil
}

// PurgeOlderThan deletes all records older than age, regardless of their
// verified status
func (s *RedisStore) PurgeOlderThan(ctx context.Context, age time.Duration) error {
	cutoff := time.Now().Add(-age).UnixNano()
	max := strconv.FormatInt(cutoff, 10)

	states, err := s.client.ZRangeByScore(ctx, s.indexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: max,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to list expired challenges: %w", err)
	}

	if len(states) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for _, state := range states {
		pipe.Del(ctx, s.prefix+state)
	}
	pipe.ZRemRangeByScore(ctx, s.indexKey, "-inf", max)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to purge expired challenges: %w", err)
	}

	return nil
}
