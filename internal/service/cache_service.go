package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

// CatalogCachePattern matches every cached catalog payload.
const CatalogCachePattern = catalogKeyPrefix + "*"

const catalogKeyPrefix = "catalog:"

// CacheRepository is the key/value store behind the catalog cache.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) (int, error)
}

// CacheService caches upstream catalog payloads under the "catalog:" namespace
// and records hit/miss metrics. Store failures count as misses so lookups fall
// through to the live catalog.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs the service. ttl applies when Set is given none.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled reports whether payloads are cached at all.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// CatalogKey namespaces a catalog cache key, e.g. "planetterp:/course?name=CMSC131".
func CatalogKey(key string) string {
	return catalogKeyPrefix + key
}

// Get decodes the cached payload for key into dest and reports a hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, CatalogKey(key), dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, appErrors.ErrCacheMiss):
	default:
		s.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}
	return false, nil
}

// Set caches a payload. A non-positive ttl uses the service default.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	start := time.Now()
	err := s.repo.Set(ctx, CatalogKey(key), value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// FlushCatalog drops every cached catalog payload.
func (s *CacheService) FlushCatalog(ctx context.Context) error {
	_, err := s.flush(ctx, CatalogCachePattern)
	return err
}

// FlushSource drops cached payloads of one upstream, e.g. "umdio", and returns
// how many were removed.
func (s *CacheService) FlushSource(ctx context.Context, source string) (int, error) {
	if source == "" {
		return s.flush(ctx, CatalogCachePattern)
	}
	return s.flush(ctx, CatalogKey(source+":*"))
}

func (s *CacheService) flush(ctx context.Context, pattern string) (int, error) {
	if !s.Enabled() {
		return 0, nil
	}
	removed, err := s.repo.DeleteByPattern(ctx, pattern)
	if err != nil {
		s.logger.Warn("catalog cache flush failed", zap.String("pattern", pattern), zap.Error(err))
		return removed, err
	}
	s.logger.Info("catalog cache flushed", zap.String("pattern", pattern), zap.Int("removed", removed))
	return removed, nil
}
