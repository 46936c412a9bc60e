package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-floor-plan/internal/editor"
)

// DraftStore keeps serialized draft blobs in Redis, one key per floor.
// It backs autosave and crash recovery: the in-memory draft stays
// authoritative and a lost blob only costs the recovery prompt.  Blobs
// expire after the configured TTL so abandoned drafts clean themselves up.
type DraftStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewDraftStore wraps a Redis client.  A nil client yields a nil store,
// which the lifecycle treats as "no persistence gateway".
func NewDraftStore(rdb *redis.Client, ttl time.Duration) *DraftStore {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &DraftStore{rdb: rdb, ttl: ttl}
}

func draftKey(floorID uint64) string {
	return fmt.Sprintf("floorplan:draft:%d", floorID)
}

// SaveDraft overwrites the floor's draft blob and refreshes its TTL.
func (s *DraftStore) SaveDraft(ctx context.Context, floorID uint64, blob editor.SavedDraft) error {
	b, err := json.Marshal(blob)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, draftKey(floorID), b, s.ttl).Err()
}

// LoadDraft fetches the floor's draft blob, nil when none is saved.
func (s *DraftStore) LoadDraft(ctx context.Context, floorID uint64) (*editor.SavedDraft, error) {
	b, err := s.rdb.Get(ctx, draftKey(floorID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var blob editor.SavedDraft
	if err := json.Unmarshal(b, &blob); err != nil {
		return nil, err
	}
	return &blob, nil
}

// ClearDraft drops the floor's draft blob.
func (s *DraftStore) ClearDraft(ctx context.Context, floorID uint64) error {
	return s.rdb.Del(ctx, draftKey(floorID)).Err()
}
