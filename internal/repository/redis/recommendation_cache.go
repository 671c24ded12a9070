package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopsphere/domain"

	"github.com/redis/go-redis/v9"
)

// cacheGrace keeps entries readable a little past their logical expiry so
// reads observe ExpiresAt themselves rather than racing key eviction.
const cacheGrace = 10 * time.Minute

// RecommendationCache stores immutable ranked-list snapshots. One key per
// (type, subject); writes overwrite, so concurrent generators resolve to
// last-writer-wins.
type RecommendationCache struct {
	client *redis.Client
}

func NewRecommendationCache(client *redis.Client) *RecommendationCache {
	return &RecommendationCache{client: client}
}

func cacheKey(recoType, subjectKey string) string {
	if subjectKey == "" {
		return fmt.Sprintf("reco:%s", recoType)
	}
	return fmt.Sprintf("reco:%s:%s", recoType, subjectKey)
}

// Get returns the entry for (recoType, subjectKey), or nil when there is no
// entry or the stored entry is past its logical expiry.
func (c *RecommendationCache) Get(ctx context.Context, recoType, subjectKey string, now time.Time) (*domain.CacheEntry, error) {
	val, err := c.client.Get(ctx, cacheKey(recoType, subjectKey)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read recommendation cache: %w", err)
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}

	if !entry.Valid(now) {
		return nil, nil
	}

	return &entry, nil
}

func (c *RecommendationCache) Put(ctx context.Context, entry *domain.CacheEntry) error {
	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	ttl := time.Until(entry.ExpiresAt) + cacheGrace
	if ttl <= 0 {
		return fmt.Errorf("cache entry already expired")
	}

	key := cacheKey(entry.Type, entry.SubjectKey)
	if err := c.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write recommendation cache: %w", err)
	}

	return nil
}
