// Package wire implements a cursor over protobuf-style encoded bytes.
//
// The Reader understands the five wire types used by the quote feed:
//   - 0: varint
//   - 1: 64-bit little-endian
//   - 2: length-delimited (text and nested payloads)
//   - 3/4: start/end group (skipped only)
//   - 5: 32-bit little-endian
//
// Every read advances the cursor and fails with ErrOutOfRange instead of
// reading past the end of the buffer.
package wire
