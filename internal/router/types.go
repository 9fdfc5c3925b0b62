package router

// Sink names used by the collector.
const (
	SinkPostgres = "postgres"
	SinkParquet  = "parquet"
	SinkKafka    = "kafka"
)

// RouterConfig holds configuration for the Router.
type RouterConfig struct {
	Sinks       []string // One output buffer per sink
	BufferSize  int      // Initial capacity per buffer. Default: 1000
	MaxBuffered int      // Per-buffer limit, 0 = unbounded. Default: 100000
}

// DefaultRouterConfig returns default configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		BufferSize:  1000,
		MaxBuffered: 100000,
	}
}

// RouterStats contains runtime statistics.
type RouterStats struct {
	QuotesReceived int64
	QuotesRouted   int64 // Quote copies accepted by a buffer
	Unidentified   int64 // Quotes without an identifier, not routed
	Dropped        int64 // Copies rejected by a full or closed buffer
	Buffers        map[string]BufferStats
}
