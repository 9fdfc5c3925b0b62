package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quotestream"

// Metrics holds the collectors for one process. Build it with New.
type Metrics struct {
	framesReceived   prometheus.Counter
	framesDropped    *prometheus.CounterVec
	quotesDelivered  prometheus.Counter
	callbackFailures *prometheus.CounterVec
	controlFrames    *prometheus.CounterVec
	transportErrors  prometheus.Counter
	sessionsStarted  prometheus.Counter
	sessionState     prometheus.Gauge
	routerDropped    *prometheus.CounterVec
	writerRows       *prometheus.CounterVec
	writerErrors     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		framesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "session", Name: "frames_received_total",
			Help: "Total frames received from the stream",
		}),
		framesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "session", Name: "frames_dropped_total",
			Help: "Frames dropped before delivery",
		}, []string{"reason"}),
		quotesDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "session", Name: "quotes_delivered_total",
			Help: "Decoded quotes handed to the quote handler",
		}),
		callbackFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "session", Name: "callback_failures_total",
			Help: "Handler invocations that panicked",
		}, []string{"callback"}),
		controlFrames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "session", Name: "control_frames_total",
			Help: "Subscribe and unsubscribe frames sent",
		}, []string{"action"}),
		transportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "session", Name: "transport_errors_total",
			Help: "Sessions ended by a transport error",
		}),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "session", Name: "started_total",
			Help: "Session runs started",
		}),
		sessionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "session", Name: "state",
			Help: "Session state (0 disconnected, 1 connecting, 2 open, 3 closing)",
		}),
		routerDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "router", Name: "dropped_total",
			Help: "Ticks the router could not hand to a sink buffer",
		}, []string{"sink"}),
		writerRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "writer", Name: "rows_total",
			Help: "Rows flushed to a sink",
		}, []string{"sink"}),
		writerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "writer", Name: "errors_total",
			Help: "Failed flushes per sink",
		}, []string{"sink"}),
	}

	collectors := []prometheus.Collector{
		m.framesReceived, m.framesDropped, m.quotesDelivered, m.callbackFailures,
		m.controlFrames, m.transportErrors, m.sessionsStarted, m.sessionState,
		m.routerDropped, m.writerRows, m.writerErrors,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) FrameReceived() {
	if m != nil {
		m.framesReceived.Inc()
	}
}

func (m *Metrics) FrameDropped(reason string) {
	if m != nil {
		m.framesDropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) QuoteDelivered() {
	if m != nil {
		m.quotesDelivered.Inc()
	}
}

func (m *Metrics) CallbackFailed(callback string) {
	if m != nil {
		m.callbackFailures.WithLabelValues(callback).Inc()
	}
}

func (m *Metrics) ControlFrameSent(action string) {
	if m != nil {
		m.controlFrames.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) TransportError() {
	if m != nil {
		m.transportErrors.Inc()
	}
}

func (m *Metrics) SessionStarted() {
	if m != nil {
		m.sessionsStarted.Inc()
	}
}

// SetSessionState records the numeric session state.
func (m *Metrics) SetSessionState(state int) {
	if m != nil {
		m.sessionState.Set(float64(state))
	}
}

func (m *Metrics) RouterDropped(sink string) {
	if m != nil {
		m.routerDropped.WithLabelValues(sink).Inc()
	}
}

// WriterFlushed adds rows written to sink.
func (m *Metrics) WriterFlushed(sink string, rows int) {
	if m != nil {
		m.writerRows.WithLabelValues(sink).Add(float64(rows))
	}
}

func (m *Metrics) WriterFailed(sink string) {
	if m != nil {
		m.writerErrors.WithLabelValues(sink).Inc()
	}
}
