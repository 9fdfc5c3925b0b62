// Package writer drains router buffers in batches and hands each batch to a
// Sink.
//
// Sinks:
//   - PostgresSink: quotes table, append-only (ON CONFLICT DO NOTHING)
//   - ParquetSink: one archive file per flush
//   - KafkaSink: one JSON message per quote, keyed by symbol
//
// A failed flush is logged and counted; its rows are not re-queued.
package writer
