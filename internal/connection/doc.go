// Package connection implements the streaming session.
//
// A Session:
//   - Owns one WebSocket connection per run (Client)
//   - Keeps the desired subscription set and sends only the diff
//   - Resubscribes the full set each time the stream opens
//   - Decodes every frame and hands the quote to the caller, in order
//   - Never reconnects by itself; restart policy belongs to the caller
package connection
