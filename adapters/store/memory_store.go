package store

import (
	"context"
	"sync"
	"time"

	"github.com/talaria-id/talaria/core"
	"github.com/talaria-id/talaria/ports"
)

// MemoryStore is an in-memory implementation of the ChallengeStore
// interface, intended for tests and single-node development.
type MemoryStore struct {
	records map[string]*core.Challenge
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*core.Challenge),
	}
}

var _ ports.ChallengeStore = (*MemoryStore)(nil)

// Insert stores a new challenge record
func (s *MemoryStore) Insert(ctx context.Context, challenge *core.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[challenge.State]; exists {
		return core.ErrStateCollision
	}

	s.records[challenge.State] = challenge.Clone()
	return nil
}

// FindByState retrieves a challenge record by its state token
func (s *MemoryStore) FindByState(ctx context.Context, state string) (*core.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[state]
	if !exists {
		return nil, core.ErrChallengeNotFound
	}

	return record.Clone(), nil
}

// FindVerifiedFresh retrieves a challenge record only if it has been
// verified and is no older than maxAge
func (s *MemoryStore) FindVerifiedFresh(ctx context.Context, state string, maxAge time.Duration) (*core.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[state]
	if !exists || !record.Verified || !record.Fresh(time.Now(), maxAge) {
		return nil, core.ErrChallengeNotFound
	}

	return record.Clone(), nil
}

// Update replaces the stored record. The whole record is swapped under the
// lock, so readers never observe a partial attribute merge.
func (s *MemoryStore) Update(ctx context.Context, challenge *core.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[challenge.State]; !exists {
		return core.ErrChallengeNotFound
	}

	s.records[challenge.State] = challenge.Clone()
	return nil
}

// DeleteByState removes a challenge record
func (s *MemoryStore) DeleteByState(ctx context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, state)
	return nil
}

// PurgeOlderThan deletes all records older than age, regardless of their
// verified status
func (s *MemoryStore) PurgeOlderThan(ctx context.Context, age time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-age)
	for state, record := range s.records {
		if record.CreatedAt.Before(cutoff) {
			delete(s.records, state)
		}
	}

	return nil
}
