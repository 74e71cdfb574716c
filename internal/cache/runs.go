// Package cache keeps recent conversion outcomes in Redis so the download
// and notify endpoints can serve them without re-running the pipeline.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = time.Hour
	keyPrefix  = "contactgw:run:"
)

// ErrNotFound is returned when a run id is unknown or has expired.
var ErrNotFound = errors.New("run not found")

// Entry is what a run leaves behind for later requests.
type Entry struct {
	Run     model.Run     `json:"run"`
	Summary model.Summary `json:"summary"`
	VCard   string        `json:"vcard"`
}

// Store is the subset of the go-redis client used by RunCache.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

type RunCache struct {
	store Store
	ttl   time.Duration
}

func NewRunCache(store Store, ttl time.Duration) *RunCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RunCache{store: store, ttl: ttl}
}

func (c *RunCache) Put(ctx context.Context, e Entry) error {
	if e.Run.ID == "" {
		return errors.New("cache: empty run id")
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("cache: marshal run %s: %w", e.Run.ID, err)
	}
	if err := c.store.Set(ctx, keyPrefix+e.Run.ID, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set run %s: %w", e.Run.ID, err)
	}
	return nil
}

func (c *RunCache) Get(ctx context.Context, runID string) (Entry, error) {
	b, err := c.store.Get(ctx, keyPrefix+runID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("cache: get run %s: %w", runID, err)
	}

	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return Entry{}, fmt.Errorf("cache: decode run %s: %w", runID, err)
	}
	return e, nil
}
