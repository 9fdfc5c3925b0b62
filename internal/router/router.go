package router

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/quote-stream/internal/metrics"
	"github.com/rickgao/quote-stream/internal/model"
	"github.com/rickgao/quote-stream/internal/quote"
)

// Router flattens quotes into rows and fans them out to the writers.
type Router interface {
	// Route copies q into every sink buffer. It never blocks, so it is
	// safe to call from the session's quote handler.
	Route(q quote.Quote)

	// Buffer returns the output buffer for a sink, or nil.
	Buffer(sink string) *GrowableBuffer[model.QuoteTick]

	// Close closes all buffers; writers drain what is left.
	Close()

	// Stats returns current router statistics.
	Stats() RouterStats
}

// router is the internal implementation.
type router struct {
	cfg     RouterConfig
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	sinks   []string
	buffers map[string]*GrowableBuffer[model.QuoteTick]

	mu           sync.Mutex
	received     int64
	routed       int64
	unidentified int64
	dropped      int64
}

// NewRouter creates a router with one buffer per configured sink.
func NewRouter(cfg RouterConfig, m *metrics.Metrics, logger *slog.Logger) Router {
	if logger == nil {
		logger = slog.Default()
	}

	r := &router{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		now:     time.Now,
		buffers: make(map[string]*GrowableBuffer[model.QuoteTick], len(cfg.Sinks)),
	}
	for _, sink := range cfg.Sinks {
		if _, dup := r.buffers[sink]; dup {
			continue
		}
		r.sinks = append(r.sinks, sink)
		r.buffers[sink] = NewBoundedBuffer[model.QuoteTick](cfg.BufferSize, cfg.MaxBuffered)
	}

	logger.Info("router created",
		"sinks", r.sinks,
		"buffer_size", cfg.BufferSize,
		"max_buffered", cfg.MaxBuffered,
	)
	return r
}

// Route copies q into every sink buffer.
func (r *router) Route(q quote.Quote) {
	r.mu.Lock()
	r.received++
	r.mu.Unlock()

	if _, ok := q.Identifier(); !ok {
		r.mu.Lock()
		r.unidentified++
		r.mu.Unlock()
		r.logger.Debug("quote without identifier", "quote_id", q.ID())
		return
	}

	tick := model.FromQuote(q, r.now())

	var routed, dropped int64
	for _, sink := range r.sinks {
		err := r.buffers[sink].Send(tick)
		if err == nil {
			routed++
			continue
		}

		dropped++
		r.metrics.RouterDropped(sink)
		if errors.Is(err, ErrBufferFull) {
			r.logger.Warn("sink buffer full, dropping quote", "sink", sink, "symbol", tick.Symbol)
		}
	}

	r.mu.Lock()
	r.routed += routed
	r.dropped += dropped
	r.mu.Unlock()
}

// Buffer returns the output buffer for a sink.
func (r *router) Buffer(sink string) *GrowableBuffer[model.QuoteTick] {
	return r.buffers[sink]
}

// Close closes all output buffers.
func (r *router) Close() {
	for _, sink := range r.sinks {
		r.buffers[sink].Close()
	}
	r.logger.Info("router closed")
}

// Stats returns current statistics.
func (r *router) Stats() RouterStats {
	r.mu.Lock()
	stats := RouterStats{
		QuotesReceived: r.received,
		QuotesRouted:   r.routed,
		Unidentified:   r.unidentified,
		Dropped:        r.dropped,
	}
	r.mu.Unlock()

	stats.Buffers = make(map[string]BufferStats, len(r.sinks))
	for _, sink := range r.sinks {
		stats.Buffers[sink] = r.buffers[sink].Stats()
	}
	return stats
}
