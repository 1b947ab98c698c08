// Package redis provides Redis-based adapters for the discovery engine.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/draftforge/discovery-engine/internal/core"
	"github.com/draftforge/discovery-engine/internal/domain/model"
)

// DefaultDraftTTL bounds how long an abandoned client snapshot lives.
const DefaultDraftTTL = 7 * 24 * time.Hour

// DraftStore holds client session snapshots in Redis, keyed by job. Snapshots
// are ephemeral resume hints; the authoritative stage data lives in Postgres.
type DraftStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// DraftStoreOptions configures a DraftStore.
type DraftStoreOptions struct {
	Prefix string
	TTL    time.Duration
}

// NewDraftStore creates a Redis-backed draft store with default settings.
func NewDraftStore(client redis.UniversalClient) *DraftStore {
	return NewDraftStoreWithOptions(client, DraftStoreOptions{})
}

// NewDraftStoreWithOptions creates a draft store with a custom prefix or TTL.
func NewDraftStoreWithOptions(client redis.UniversalClient, opts DraftStoreOptions) *DraftStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "draft:"
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &DraftStore{client: client, prefix: prefix, ttl: ttl}
}

// Save stores the snapshot, replacing any previous one and resetting the TTL.
func (s *DraftStore) Save(ctx context.Context, jobID string, snap *model.SessionSnapshot) error {
	if jobID == "" {
		return errors.New("job id cannot be empty")
	}
	if snap == nil {
		return errors.New("snapshot cannot be empty")
	}
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal draft snapshot: %w", err)
	}
	return s.client.Set(ctx, s.prefix+jobID, data, s.ttl).Err()
}

// Get returns the stored snapshot, or core.ErrDraftNotFound when none exists.
func (s *DraftStore) Get(ctx context.Context, jobID string) (*model.SessionSnapshot, error) {
	if jobID == "" {
		return nil, core.ErrDraftNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+jobID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrDraftNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var snap model.SessionSnapshot
	if unmarshalErr := json.Unmarshal([]byte(data), &snap); unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal draft snapshot: %w", unmarshalErr)
	}
	return &snap, nil
}

// Delete drops the snapshot. Deleting a missing key is a no-op.
func (s *DraftStore) Delete(ctx context.Context, jobID string) error {
	if jobID == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+jobID).Err()
}
