package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rickgao/quote-stream/internal/metrics"
	"github.com/rickgao/quote-stream/internal/quote"
)

// Session owns one streaming connection at a time and the desired
// subscription set. It does not reconnect: when a run ends, the caller
// decides whether to Start again.
type Session struct {
	cfg       SessionConfig
	handlers  Handlers
	metrics   *metrics.Metrics
	logger    *slog.Logger
	newClient func(ClientConfig, *slog.Logger) Client

	// mu orders subscription changes, sends and state transitions.
	mu     sync.Mutex
	state  State
	subs   *SubscriptionSet
	client Client
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession creates a disconnected session seeded with cfg.Symbols.
// m may be nil.
func NewSession(cfg SessionConfig, h Handlers, m *metrics.Metrics, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Client.URL == "" {
		cfg.Client.URL = DefaultURL
	}
	newClient := cfg.NewClient
	if newClient == nil {
		newClient = NewClient
	}

	return &Session{
		cfg:       cfg,
		handlers:  h,
		metrics:   m,
		logger:    logger,
		newClient: newClient,
		subs:      NewSubscriptionSet(cfg.Symbols...),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribed returns the desired subscription set, sorted.
func (s *Session) Subscribed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs.List()
}

// Start connects in a background goroutine and returns immediately.
// Failures are reported through OnError. Only valid while Disconnected.
func (s *Session) Start(ctx context.Context) error {
	runCtx, client, done, err := s.begin(ctx)
	if err != nil {
		return err
	}

	go s.run(runCtx, client, done)
	return nil
}

// Run connects and processes frames on the calling goroutine until the
// stream ends, ctx is cancelled or Stop is called. It returns the
// *TransportError that ended the run, or nil for an orderly end.
func (s *Session) Run(ctx context.Context) error {
	runCtx, client, done, err := s.begin(ctx)
	if err != nil {
		return err
	}
	return s.run(runCtx, client, done)
}

// Stop closes the connection and waits for the run to exit or ctx to
// expire. Stop on a disconnected session is a no-op. A handler that
// calls Stop blocks until ctx expires, since the run cannot finish while
// the handler is still executing. For the same reason a handler cannot
// Start the session again; restarts belong to the caller.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateDisconnected {
		s.mu.Unlock()
		return nil
	}
	s.setStateLocked(StateClosing)
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("session stop: %w", ctx.Err())
	}
}

// Subscribe adds ids to the set. When the session is open, the ids that
// were not already subscribed are sent in one control frame. The set
// keeps the ids even if the send fails.
func (s *Session) Subscribe(ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := s.subs.Add(ids...)
	if len(added) == 0 || s.state != StateOpen {
		return nil
	}
	return s.sendLocked(ControlFrame{Subscribe: added}, "subscribe")
}

// Unsubscribe removes ids from the set. When the session is open, the ids
// that were actually subscribed are sent in one control frame.
func (s *Session) Unsubscribe(ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.subs.Remove(ids...)
	if len(removed) == 0 || s.state != StateOpen {
		return nil
	}
	return s.sendLocked(ControlFrame{Unsubscribe: removed}, "unsubscribe")
}

func (s *Session) begin(ctx context.Context) (context.Context, Client, chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateDisconnected {
		return nil, nil, nil, ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.client = s.newClient(s.cfg.Client, s.logger)
	s.setStateLocked(StateConnecting)
	s.metrics.SessionStarted()

	return runCtx, s.client, s.done, nil
}

func (s *Session) run(ctx context.Context, client Client, done chan struct{}) error {
	s.logger.Info("connecting to quote stream", "url", s.cfg.Client.URL)

	if err := client.Connect(ctx); err != nil {
		if ctx.Err() != nil {
			// Stopped while dialing.
			return s.finish(client, done, nil)
		}
		return s.finish(client, done, &TransportError{Op: "connect", Err: err})
	}

	opened, err := s.open(client)
	if err != nil {
		return s.finish(client, done, err)
	}
	if !opened {
		return s.finish(client, done, nil)
	}

	if s.handlers.OnConnect != nil {
		s.safeCall("on_connect", s.handlers.OnConnect)
	}

	return s.finish(client, done, s.consume(ctx, client))
}

// open moves Connecting to Open and sends the whole set, as one atomic step
// relative to Subscribe and Unsubscribe. It reports false when Stop won
// the race.
func (s *Session) open(client Client) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnecting {
		return false, nil
	}
	s.setStateLocked(StateOpen)
	s.logger.Info("quote stream open", "subscriptions", s.subs.Len())

	if s.subs.Len() == 0 {
		return true, nil
	}
	return true, s.sendLocked(ControlFrame{Subscribe: s.subs.List()}, "subscribe")
}

// consume delivers frames until the client's read loop exits.
func (s *Session) consume(ctx context.Context, client Client) error {
	stop := ctx.Done()
	stopping := false

	for {
		select {
		case <-stop:
			stop = nil
			stopping = true
			client.Close()

		case msg, ok := <-client.Messages():
			if !ok {
				if stopping {
					return nil
				}
				return s.cause(client)
			}
			if stopping {
				continue
			}
			s.handleFrame(msg)
		}
	}
}

// cause classifies why the read loop ended. A clean close from the server
// is not an error.
func (s *Session) cause(client Client) error {
	select {
	case err := <-client.Errors():
		if isRemoteClose(err) {
			s.logger.Info("quote stream closed by server", "reason", err)
			return nil
		}
		return &TransportError{Op: "read", Err: err}
	default:
		return nil
	}
}

func (s *Session) handleFrame(msg TimestampedMessage) {
	s.metrics.FrameReceived()

	q, err := quote.Decode(msg.Data)
	if err != nil {
		s.metrics.FrameDropped("malformed")
		s.logger.Debug("dropping frame", "error", err, "size", len(msg.Data))
		if s.handlers.OnDrop != nil {
			s.safeCall("on_drop", func() { s.handlers.OnDrop(msg.Data, err) })
		}
		return
	}

	s.metrics.QuoteDelivered()
	if s.handlers.OnQuote != nil {
		s.safeCall("on_quote", func() { s.handlers.OnQuote(q) })
	}
}

// finish tears the run down. OnError and then OnClose run while the
// session is still Closing. The move to Disconnected and the close of done
// happen under one lock, so Stop and Start never observe a finished state
// while the worker is still running handlers.
func (s *Session) finish(client Client, done chan struct{}, err error) error {
	s.mu.Lock()
	s.setStateLocked(StateClosing)
	cancel := s.cancel
	s.mu.Unlock()

	if err != nil {
		s.metrics.TransportError()
		s.logger.Error("quote stream failed", "error", err)
		if s.handlers.OnError != nil {
			s.safeCall("on_error", func() { s.handlers.OnError(err) })
		}
	}

	if cerr := client.Close(); cerr != nil {
		s.logger.Debug("close transport", "error", cerr)
	}
	cancel()

	s.logger.Info("quote stream disconnected")
	if s.handlers.OnClose != nil {
		s.safeCall("on_close", s.handlers.OnClose)
	}

	s.mu.Lock()
	s.setStateLocked(StateDisconnected)
	s.client = nil
	close(done)
	s.mu.Unlock()
	return err
}

// sendLocked writes a control frame. Caller holds s.mu.
func (s *Session) sendLocked(frame ControlFrame, action string) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", action, err)
	}
	if err := s.client.Send(data); err != nil {
		return &TransportError{Op: "send", Err: err}
	}

	s.metrics.ControlFrameSent(action)
	s.logger.Debug("control frame sent", "action", action, "ids", len(frame.Subscribe)+len(frame.Unsubscribe))
	return nil
}

func (s *Session) setStateLocked(state State) {
	s.state = state
	s.metrics.SetSessionState(int(state))
}

// safeCall runs a handler, recovering and counting a panic.
func (s *Session) safeCall(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.CallbackFailed(name)
			s.logger.Error("handler panicked", "handler", name, "panic", r)
		}
	}()
	fn()
}
