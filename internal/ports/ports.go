// Package ports defines the core interfaces that form the contract between
// the pipeline core and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-votegraph/internal/domain"
)

// RecordSource supplies the immutable input record sets for a session.
// The pipeline never performs I/O itself; it consumes pre-loaded record
// sets so that caching and transport concerns stay outside the core.
// Implementations should cache: repeated calls within a session must be
// cheap and must return equivalent data.
type RecordSource interface {
	// Load returns the session's record sets. The returned RecordSet is
	// shared and must be treated as read-only by callers.
	Load(ctx context.Context) (*domain.RecordSet, error)
}

// GraphWriter persists a pipeline result as flat record sets. The write
// happens only on explicit caller action; the pipeline itself returns
// results in-memory.
type GraphWriter interface {
	// Write persists the graph's edge and node lists.
	Write(g *domain.Graph) error
}

// MetricsCollector defines the interface for collecting operational
// metrics. Implementations should integrate with observability platforms
// like Prometheus or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like runs, errors, cache hits.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	// This is useful for tracking values like emitted node and edge counts.
	RecordGauge(metric string, value float64, labels map[string]string)
}
