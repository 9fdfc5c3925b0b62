package writer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/quote-stream/internal/metrics"
	"github.com/rickgao/quote-stream/internal/model"
	"github.com/rickgao/quote-stream/internal/router"
)

// BatchWriter consumes QuoteTicks from a router buffer and flushes them to a
// Sink in batches.
type BatchWriter struct {
	cfg     WriterConfig
	logger  *slog.Logger
	metrics *metrics.Metrics

	// Input from the router
	input *router.GrowableBuffer[model.QuoteTick]

	sink Sink

	// Batching
	batch       []model.QuoteTick
	batchMu     sync.Mutex
	flushMu     sync.Mutex // serializes sink writes
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	stats WriterMetrics
}

// NewBatchWriter creates a writer that drains input into sink.
func NewBatchWriter(
	cfg WriterConfig,
	input *router.GrowableBuffer[model.QuoteTick],
	sink Sink,
	m *metrics.Metrics,
	logger *slog.Logger,
) *BatchWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultWriterConfig().BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultWriterConfig().FlushInterval
	}
	return &BatchWriter{
		cfg:     cfg,
		input:   input,
		sink:    sink,
		metrics: m,
		logger:  logger.With("sink", sink.Name()),
		batch:   make([]model.QuoteTick, 0, cfg.BatchSize),
	}
}

// Start begins consuming rows and flushing them to the sink.
func (w *BatchWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	// Consumer goroutine
	w.wg.Add(1)
	go w.consumeLoop()

	// Flush ticker goroutine
	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop shuts the writer down, drains whatever is left in the input buffer
// and flushes it with ctx, then closes the sink.
func (w *BatchWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping writer")

	if w.cancel != nil {
		w.cancel()
	}

	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	// Wait for goroutines
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("writer stop timed out")
	}

	// Final flush of anything still buffered
	for {
		rows := w.input.DrainTo(w.cfg.BatchSize)
		if len(rows) == 0 {
			break
		}
		w.batchMu.Lock()
		w.batch = append(w.batch, rows...)
		w.batchMu.Unlock()
		w.flush(ctx)
	}
	w.flush(ctx)

	err := w.sink.Close()
	w.logger.Info("writer stopped", "inserts", w.Stats().Inserts)
	return err
}

// Name returns the sink's name.
func (w *BatchWriter) Name() string { return w.sink.Name() }

// Stats returns current metrics.
func (w *BatchWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.stats
}

// consumeLoop reads from the input buffer and accumulates batches.
func (w *BatchWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
			row, ok := w.input.TryReceive()
			if !ok {
				// Buffer empty, wait a bit before trying again
				select {
				case <-w.ctx.Done():
					return
				case <-time.After(10 * time.Millisecond):
					continue
				}
			}

			w.handleRow(row)
		}
	}
}

// flushLoop periodically flushes the batch.
func (w *BatchWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush(w.ctx)
		}
	}
}

// handleRow adds a row to the batch, flushing when it is full.
func (w *BatchWriter) handleRow(row model.QuoteTick) {
	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush(w.ctx)
	}
}

// flush writes the current batch to the sink.
func (w *BatchWriter) flush(ctx context.Context) {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]model.QuoteTick, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	skipped, err := w.sink.Write(ctx, batch)
	if err != nil {
		w.logger.Error("batch write failed", "error", err, "count", len(batch))
		w.metrics.WriterFailed(w.sink.Name())
		w.batchMu.Lock()
		w.stats.Errors++
		w.batchMu.Unlock()
		return
	}

	w.metrics.WriterFlushed(w.sink.Name(), len(batch)-skipped)
	w.batchMu.Lock()
	w.stats.Inserts += int64(len(batch) - skipped)
	w.stats.Conflicts += int64(skipped)
	w.stats.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed quotes",
		"count", len(batch),
		"conflicts", skipped,
		"duration", time.Since(start),
	)
}
