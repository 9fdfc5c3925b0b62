package writer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"

	"github.com/rickgao/quote-stream/internal/config"
	"github.com/rickgao/quote-stream/internal/model"
	"github.com/rickgao/quote-stream/internal/retry"
	"github.com/rickgao/quote-stream/internal/router"
)

// NewKafkaProducer builds a synchronous producer from cfg.
func NewKafkaProducer(cfg config.KafkaConfig) (sarama.SyncProducer, error) {
	sc, err := buildSaramaConfig(cfg)
	if err != nil {
		return nil, err
	}
	prod, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return prod, nil
}

func buildSaramaConfig(cfg config.KafkaConfig) (*sarama.Config, error) {
	sc := sarama.NewConfig()

	switch strings.ToLower(cfg.RequiredAcks) {
	case "all", "":
		sc.Producer.RequiredAcks = sarama.WaitForAll
		sc.Producer.Idempotent = true
		sc.Net.MaxOpenRequests = 1
	case "leader":
		sc.Producer.RequiredAcks = sarama.WaitForLocal
	case "none":
		sc.Producer.RequiredAcks = sarama.NoResponse
	default:
		return nil, fmt.Errorf("kafka producer: invalid required acks %q", cfg.RequiredAcks)
	}

	// SyncProducer requires both
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	if cfg.Timeout > 0 {
		sc.Producer.Timeout = cfg.Timeout
	}

	switch strings.ToLower(cfg.Compression) {
	case "none", "":
		sc.Producer.Compression = sarama.CompressionNone
	case "gzip":
		sc.Producer.Compression = sarama.CompressionGZIP
	case "snappy":
		sc.Producer.Compression = sarama.CompressionSnappy
	case "lz4":
		sc.Producer.Compression = sarama.CompressionLZ4
	case "zstd":
		sc.Producer.Compression = sarama.CompressionZSTD
	default:
		return nil, fmt.Errorf("kafka producer: invalid compression %q", cfg.Compression)
	}

	return sc, nil
}

// KafkaSink publishes one JSON message per row, keyed by symbol so a
// symbol's quotes stay on one partition.
type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string
	retry    retry.Config
	logger   *slog.Logger
}

// NewKafkaSink wraps producer. The sink owns it and closes it on Close.
func NewKafkaSink(producer sarama.SyncProducer, topic string, rc retry.Config, logger *slog.Logger) *KafkaSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaSink{producer: producer, topic: topic, retry: rc, logger: logger}
}

// Name identifies the sink in routing rules and metrics.
func (s *KafkaSink) Name() string { return router.SinkKafka }

// Write sends rows, retrying only the messages the brokers rejected.
func (s *KafkaSink) Write(ctx context.Context, rows []model.QuoteTick) (int, error) {
	pending := make([]*sarama.ProducerMessage, 0, len(rows))
	for _, r := range rows {
		value, err := json.Marshal(r)
		if err != nil {
			return 0, fmt.Errorf("encode quote %s: %w", r.QuoteID, err)
		}
		pending = append(pending, &sarama.ProducerMessage{
			Topic: s.topic,
			Key:   sarama.StringEncoder(r.Symbol),
			Value: sarama.ByteEncoder(value),
		})
	}

	err := retry.Do(ctx, s.retry, s.logger, "kafka publish", func(ctx context.Context) error {
		err := s.producer.SendMessages(pending)
		if err == nil {
			return nil
		}
		var perrs sarama.ProducerErrors
		if errors.As(err, &perrs) && len(perrs) > 0 {
			failed := make([]*sarama.ProducerMessage, 0, len(perrs))
			for _, pe := range perrs {
				failed = append(failed, pe.Msg)
			}
			pending = failed
		}
		return err
	})
	return 0, err
}

// Close closes the producer.
func (s *KafkaSink) Close() error {
	return s.producer.Close()
}
