package config

import (
	"time"

	"github.com/rickgao/quote-stream/internal/retry"
)

// CollectorConfig is the root configuration for a collector instance.
type CollectorConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Stream   StreamConfig   `yaml:"stream"`
	Database DatabaseConfig `yaml:"database"`
	Writers  WritersConfig  `yaml:"writers"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// InstanceConfig identifies this collector.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// StreamConfig holds quote stream settings.
type StreamConfig struct {
	URL              string        `yaml:"url"`
	Symbols          []string      `yaml:"symbols"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	PingInterval     time.Duration `yaml:"ping_interval"`
	PingTimeout      time.Duration `yaml:"ping_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	BufferSize       int           `yaml:"buffer_size"`

	// Restart is the back-off between session runs. A run that stayed up
	// for ResetAfter resets it.
	Restart    retry.Config  `yaml:"restart"`
	ResetAfter time.Duration `yaml:"reset_after"`
}

// DatabaseConfig holds the PostgreSQL sink connection.
type DatabaseConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// WritersConfig holds batch writer settings shared by all sinks.
type WritersConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
	MaxBuffered   int           `yaml:"max_buffered"`
}

// ArchiveConfig holds the Parquet archive sink settings.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	Prefix  string `yaml:"prefix"`
}

// KafkaConfig holds the Kafka sink settings.
type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	RequiredAcks string        `yaml:"required_acks"` // all | leader | none
	Compression  string        `yaml:"compression"`   // none | gzip | snappy | lz4 | zstd
	Timeout      time.Duration `yaml:"timeout"`
	Retry        retry.Config  `yaml:"retry"`
}

// MetricsConfig holds Prometheus metrics settings. The health endpoint is
// served on the same port.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}
