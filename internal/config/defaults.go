package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultStreamURL        = "wss://streamer.finance.yahoo.com/"
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultPingInterval     = 30 * time.Second
	DefaultPingTimeout      = 90 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
	DefaultStreamBuffer     = 1024
	DefaultRestartInitial   = 1 * time.Second
	DefaultRestartMax       = 2 * time.Minute
	DefaultResetAfter       = 5 * time.Minute
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 10
	DefaultMinConns         = 2
	DefaultBatchSize        = 1000
	DefaultFlushInterval    = 1 * time.Second
	DefaultBufferSize       = 10000
	DefaultMaxBuffered      = 1000000
	DefaultArchivePrefix    = "quotes"
	DefaultKafkaTopic       = "quotes"
	DefaultKafkaAcks        = "all"
	DefaultKafkaCompression = "none"
	DefaultKafkaTimeout     = 10 * time.Second
	DefaultKafkaMaxRetries  = 5
	DefaultMetricsPort      = 9090
	DefaultMetricsPath      = "/metrics"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

func (c *CollectorConfig) applyDefaults() {
	// Stream defaults
	if c.Stream.URL == "" {
		c.Stream.URL = DefaultStreamURL
	}
	if c.Stream.HandshakeTimeout == 0 {
		c.Stream.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = DefaultPingInterval
	}
	if c.Stream.PingTimeout == 0 {
		c.Stream.PingTimeout = DefaultPingTimeout
	}
	if c.Stream.WriteTimeout == 0 {
		c.Stream.WriteTimeout = DefaultWriteTimeout
	}
	if c.Stream.BufferSize == 0 {
		c.Stream.BufferSize = DefaultStreamBuffer
	}
	if c.Stream.Restart.InitialInterval == 0 {
		c.Stream.Restart.InitialInterval = DefaultRestartInitial
	}
	if c.Stream.Restart.MaxInterval == 0 {
		c.Stream.Restart.MaxInterval = DefaultRestartMax
	}
	if c.Stream.ResetAfter == 0 {
		c.Stream.ResetAfter = DefaultResetAfter
	}

	// Database defaults
	applyDBDefaults(&c.Database.Postgres)

	// Writers defaults
	if c.Writers.BatchSize == 0 {
		c.Writers.BatchSize = DefaultBatchSize
	}
	if c.Writers.FlushInterval == 0 {
		c.Writers.FlushInterval = DefaultFlushInterval
	}
	if c.Writers.BufferSize == 0 {
		c.Writers.BufferSize = DefaultBufferSize
	}
	if c.Writers.MaxBuffered == 0 {
		c.Writers.MaxBuffered = DefaultMaxBuffered
	}

	// Archive defaults
	if c.Archive.Prefix == "" {
		c.Archive.Prefix = DefaultArchivePrefix
	}

	// Kafka defaults
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = DefaultKafkaTopic
	}
	if c.Kafka.RequiredAcks == "" {
		c.Kafka.RequiredAcks = DefaultKafkaAcks
	}
	if c.Kafka.Compression == "" {
		c.Kafka.Compression = DefaultKafkaCompression
	}
	if c.Kafka.Timeout == 0 {
		c.Kafka.Timeout = DefaultKafkaTimeout
	}
	if c.Kafka.Retry.MaxRetries == 0 {
		c.Kafka.Retry.MaxRetries = DefaultKafkaMaxRetries
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
