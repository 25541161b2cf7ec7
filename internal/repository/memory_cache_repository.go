package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryCacheRepository is an in-process stand-in for CacheRepository used when
// Redis is unavailable in development and by the CLI.
type MemoryCacheRepository struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	now   func() time.Time
}

// NewMemoryCacheRepository constructs an empty in-memory cache.
func NewMemoryCacheRepository() *MemoryCacheRepository {
	return &MemoryCacheRepository{items: map[string]memoryEntry{}, now: time.Now}
}

// Get unmarshals a live entry into dest.
func (r *MemoryCacheRepository) Get(_ context.Context, key string, dest interface{}) error {
	r.mu.Lock()
	entry, ok := r.items[key]
	if ok && !entry.expiresAt.IsZero() && !r.now().Before(entry.expiresAt) {
		delete(r.items, key)
		ok = false
	}
	r.mu.Unlock()
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(entry.payload, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set stores value; a non-positive ttl never expires.
func (r *MemoryCacheRepository) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	entry := memoryEntry{payload: payload}
	if ttl > 0 {
		entry.expiresAt = r.now().Add(ttl)
	}
	r.mu.Lock()
	r.items[key] = entry
	r.mu.Unlock()
	return nil
}

// Delete removes a single key.
func (r *MemoryCacheRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	delete(r.items, key)
	r.mu.Unlock()
	return nil
}

// DeleteByPattern removes keys matching a glob pattern and returns how many
// were removed.
func (r *MemoryCacheRepository) DeleteByPattern(_ context.Context, pattern string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for key := range r.items {
		matched, err := globMatch(pattern, key)
		if err != nil {
			return removed, fmt.Errorf("match pattern %s: %w", pattern, err)
		}
		if matched {
			delete(r.items, key)
			removed++
		}
	}
	return removed, nil
}

// globMatch treats a single trailing "*" as a prefix match, which is how cache
// patterns are written here; keys may contain "/" so path.Match alone would miss.
func globMatch(pattern, key string) (bool, error) {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok && !strings.ContainsAny(prefix, "*?[") {
		return strings.HasPrefix(key, prefix), nil
	}
	return path.Match(pattern, key)
}
