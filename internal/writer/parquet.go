package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/rickgao/quote-stream/internal/model"
	"github.com/rickgao/quote-stream/internal/router"
)

// ParquetSink writes each batch to its own Parquet file under dir. Files are
// written under a temporary name and renamed once complete, so readers never
// see a partial file.
type ParquetSink struct {
	dir    string
	prefix string
	now    func() time.Time

	mu  sync.Mutex
	seq int
}

// NewParquetSink creates dir if needed.
func NewParquetSink(dir, prefix string) (*ParquetSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &ParquetSink{dir: dir, prefix: prefix, now: time.Now}, nil
}

// Name identifies the sink in routing rules and metrics.
func (s *ParquetSink) Name() string { return router.SinkParquet }

// Write stores rows in a new file.
func (s *ParquetSink) Write(ctx context.Context, rows []model.QuoteTick) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	path := s.nextPath()
	tmp := path + ".tmp"

	if err := writeParquet(tmp, rows); err != nil {
		os.Remove(tmp)
		return 0, err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("rename archive file: %w", err)
	}
	return 0, nil
}

// Close is a no-op; every file is closed after its batch.
func (s *ParquetSink) Close() error { return nil }

func (s *ParquetSink) nextPath() string {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	ts := s.now().UTC().Format("20060102T150405.000000")
	return filepath.Join(s.dir, fmt.Sprintf("%s-%s-%06d.parquet", s.prefix, ts, seq))
}

func writeParquet(path string, rows []model.QuoteTick) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}

	w := parquet.NewGenericWriter[model.QuoteTick](f)
	if _, err := w.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close archive file: %w", err)
	}
	return nil
}
