// streamtest connects to the quote stream and prints decoded quotes to the
// console until interrupted.
// Usage: go run ./cmd/streamtest --symbols TSLA,AAPL,BTC-USD
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rickgao/quote-stream/internal/connection"
	"github.com/rickgao/quote-stream/internal/model"
	"github.com/rickgao/quote-stream/internal/quote"
)

func main() {
	symbols := flag.String("symbols", "TSLA,AAPL,BTC-USD", "comma-separated symbols to subscribe to")
	url := flag.String("url", connection.DefaultURL, "stream endpoint")
	verbose := flag.Bool("verbose", false, "print every present field as JSON")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ids := strings.Split(*symbols, ",")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := connection.SessionConfig{
		Client:  connection.DefaultClientConfig(),
		Symbols: ids,
	}
	cfg.Client.URL = *url

	count := 0
	session := connection.NewSession(cfg, connection.Handlers{
		OnConnect: func() {
			logger.Info("connected - press Ctrl+C to stop", "symbols", ids)
		},
		OnQuote: func(q quote.Quote) {
			count++
			if *verbose {
				data, err := json.MarshalIndent(model.FromQuote(q, time.Now()), "", "  ")
				if err != nil {
					sym, _ := q.Identifier()
					logger.Warn("encode quote", "symbol", sym, "error", err)
					return
				}
				fmt.Printf("[QUOTE] %s\n", data)
				return
			}
			fmt.Printf("[QUOTE] %s\n", q)
		},
		OnError: func(err error) {
			logger.Error("stream error", "error", err)
		},
		OnClose: func() {
			logger.Info("stream closed", "quotes", count)
		},
		OnDrop: func(frame []byte, err error) {
			logger.Warn("dropped frame", "bytes", len(frame), "error", err)
		},
	}, nil, logger)

	if err := session.Run(ctx); err != nil {
		logger.Error("stream ended", "quotes", count, "error", err)
		os.Exit(1)
	}
}
