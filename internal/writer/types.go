package writer

import (
	"context"
	"time"

	"github.com/rickgao/quote-stream/internal/model"
)

// WriterConfig contains configuration for batch writers.
type WriterConfig struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     1000,
		FlushInterval: time.Second,
	}
}

// Sink persists batches of quote rows.
type Sink interface {
	// Name labels the sink in logs and metrics.
	Name() string

	// Write stores rows. It returns how many rows were already present and
	// therefore skipped.
	Write(ctx context.Context, rows []model.QuoteTick) (skipped int, err error)

	Close() error
}

// WriterMetrics holds metrics for a writer.
type WriterMetrics struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
}
