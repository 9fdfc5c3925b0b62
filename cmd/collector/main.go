// collector streams quotes for the configured symbols and fans them out to
// the enabled sinks (PostgreSQL, Parquet archive, Kafka).
//
// Usage: go run ./cmd/collector --config configs/collector.example.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/quote-stream/internal/config"
	"github.com/rickgao/quote-stream/internal/connection"
	"github.com/rickgao/quote-stream/internal/database"
	"github.com/rickgao/quote-stream/internal/metrics"
	"github.com/rickgao/quote-stream/internal/quote"
	"github.com/rickgao/quote-stream/internal/retry"
	"github.com/rickgao/quote-stream/internal/router"
	"github.com/rickgao/quote-stream/internal/version"
	"github.com/rickgao/quote-stream/internal/writer"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "configs/collector.example.yaml", "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	logger.Info("starting collector",
		"version", version.Version,
		"commit", version.Commit,
		"instance_id", cfg.Instance.ID,
		"symbols", len(cfg.Stream.Symbols),
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("collector failed", "error", err)
		os.Exit(1)
	}
	logger.Info("collector stopped")
}

func newLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts)), nil
}

func run(cfg *config.CollectorConfig, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	// Sinks
	var pool *pgxpool.Pool
	var sinks []writer.Sink

	if cfg.Database.Enabled {
		logger.Info("connecting to database",
			"host", cfg.Database.Postgres.Host,
			"port", cfg.Database.Postgres.Port,
			"database", cfg.Database.Postgres.Name,
		)
		pool, err = database.Connect(ctx, cfg.Database.Postgres)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		if err := database.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		sinks = append(sinks, writer.NewPostgresSink(pool))
	}

	if cfg.Archive.Enabled {
		ps, err := writer.NewParquetSink(cfg.Archive.Dir, cfg.Archive.Prefix)
		if err != nil {
			return err
		}
		sinks = append(sinks, ps)
	}

	if cfg.Kafka.Enabled {
		prod, err := writer.NewKafkaProducer(cfg.Kafka)
		if err != nil {
			return err
		}
		sinks = append(sinks, writer.NewKafkaSink(prod, cfg.Kafka.Topic, cfg.Kafka.Retry, logger))
	}

	if len(sinks) == 0 {
		logger.Warn("no sinks enabled, quotes will only be counted")
	}

	// Router and writers
	sinkNames := make([]string, len(sinks))
	for i, s := range sinks {
		sinkNames[i] = s.Name()
	}
	rt := router.NewRouter(router.RouterConfig{
		Sinks:       sinkNames,
		BufferSize:  cfg.Writers.BufferSize,
		MaxBuffered: cfg.Writers.MaxBuffered,
	}, m, logger)

	writerCfg := writer.WriterConfig{
		BatchSize:     cfg.Writers.BatchSize,
		FlushInterval: cfg.Writers.FlushInterval,
	}
	writers := make([]*writer.BatchWriter, len(sinks))
	for i, s := range sinks {
		writers[i] = writer.NewBatchWriter(writerCfg, rt.Buffer(s.Name()), s, m, logger)
		if err := writers[i].Start(ctx); err != nil {
			return fmt.Errorf("start %s writer: %w", s.Name(), err)
		}
	}

	// Session
	session := connection.NewSession(connection.SessionConfig{
		Client: connection.ClientConfig{
			URL:              cfg.Stream.URL,
			HandshakeTimeout: cfg.Stream.HandshakeTimeout,
			PingInterval:     cfg.Stream.PingInterval,
			PingTimeout:      cfg.Stream.PingTimeout,
			WriteTimeout:     cfg.Stream.WriteTimeout,
			BufferSize:       cfg.Stream.BufferSize,
		},
		Symbols: cfg.Stream.Symbols,
	}, connection.Handlers{
		OnConnect: func() {
			logger.Info("stream connected", "symbols", len(cfg.Stream.Symbols))
		},
		OnQuote: func(q quote.Quote) {
			rt.Route(q)
		},
		OnError: func(err error) {
			logger.Warn("stream error", "error", err)
		},
		OnClose: func() {
			logger.Info("stream closed")
		},
		OnDrop: func(frame []byte, err error) {
			logger.Debug("dropped frame", "bytes", len(frame), "error", err)
		},
	}, m, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           newHTTPHandler(cfg.Metrics.Path, reg, session, rt, writers, pool),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "port", cfg.Metrics.Port, "metrics_path", cfg.Metrics.Path)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return retry.Supervise(gctx, cfg.Stream.Restart, cfg.Stream.ResetAfter, logger, "quote stream", session.Run)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := session.Stop(shutdownCtx); err != nil {
			logger.Warn("session stop", "error", err)
		}
		rt.Close()
		for _, w := range writers {
			if err := w.Stop(shutdownCtx); err != nil {
				logger.Warn("writer stop", "error", err)
			}
		}
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
