package models

import (
	"time"

	"github.com/noah-isme/course-planner-api/pkg/jobs"
)

// CacheMetrics summarises catalog cache lookups.
type CacheMetrics struct {
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	HitRatio float64 `json:"hit_ratio"`
}

// LatencyMetrics is a count with its mean duration.
type LatencyMetrics struct {
	Count     uint64  `json:"count"`
	AverageMs float64 `json:"average_ms"`
}

// CatalogMetrics counts upstream catalog requests.
type CatalogMetrics struct {
	Requests uint64 `json:"requests"`
	Failures uint64 `json:"failures"`
}

// SystemMetrics is the JSON form of /metrics/summary.
type SystemMetrics struct {
	Cache              CacheMetrics          `json:"cache"`
	HTTP               LatencyMetrics        `json:"http"`
	DB                 LatencyMetrics        `json:"db"`
	Catalog            CatalogMetrics        `json:"catalog"`
	ScheduleOperations uint64                `json:"schedule_operations"`
	Queues             map[string]jobs.Stats `json:"queues,omitempty"`
	Goroutines         int                   `json:"goroutines"`
	GeneratedAt        time.Time             `json:"generated_at"`
}
