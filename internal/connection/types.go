package connection

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/quote-stream/internal/quote"
)

// DefaultURL is the public quote streamer endpoint.
const DefaultURL = "wss://streamer.finance.yahoo.com/"

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
	ErrAlreadyStarted  = errors.New("session already started")
)

// TransportError is a failure of the underlying connection. It ends the
// session; the session never retries on its own.
type TransportError struct {
	Op  string // "connect", "read" or "send"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// ControlFrame is an outbound subscription command. Exactly one of the
// fields is set: {"subscribe":[...]} or {"unsubscribe":[...]}.
type ControlFrame struct {
	Subscribe   []string `json:"subscribe,omitempty"`
	Unsubscribe []string `json:"unsubscribe,omitempty"`
}

// State is the lifecycle state of a Session.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // WebSocket URL (default DefaultURL)
	HandshakeTimeout time.Duration // Dial handshake deadline
	PingInterval     time.Duration // How often we ping the server
	PingTimeout      time.Duration // Max time without ping/pong before considering connection stale
	WriteTimeout     time.Duration // Write deadline for sends
	BufferSize       int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		URL:              DefaultURL,
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		PingTimeout:      90 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       1024,
	}
}

// SessionConfig configures a Session.
type SessionConfig struct {
	Client  ClientConfig
	Symbols []string // Initial subscription set

	// NewClient builds the transport for each run. Nil uses NewClient.
	NewClient func(ClientConfig, *slog.Logger) Client
}

// Handlers are the user callbacks of a Session. All are optional. They run
// on the session's read loop, one at a time, in arrival order.
type Handlers struct {
	OnConnect func()
	OnQuote   func(quote.Quote)
	OnError   func(error)
	OnClose   func()

	// OnDrop observes frames that could not be decoded.
	OnDrop func(frame []byte, err error)
}
