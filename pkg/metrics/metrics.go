// Package metrics exposes Prometheus instrumentation for controller
// connections.
//
// A nil *Metrics is valid and records nothing, so components take an
// optional *Metrics in their config.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collectors.
type Config struct {
	// Namespace prefixes every metric name (default "rnet").
	Namespace string

	// ConstLabels are added to every metric.
	ConstLabels prometheus.Labels

	// Buckets are the request duration histogram buckets.
	Buckets []float64

	// Registry receives the collectors (default prometheus.DefaultRegisterer).
	Registry prometheus.Registerer
}

// Option configures Config.
type Option func(*Config)

// WithNamespace sets the metric namespace.
func WithNamespace(ns string) Option {
	return func(c *Config) {
		c.Namespace = ns
	}
}

// WithConstLabels sets labels added to every metric.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the request duration buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the registry the collectors are registered with.
func WithRegistry(r prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = r
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "rnet",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Request results recorded by ObserveRequest.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultTimeout = "timeout"
)

// Metrics holds the collectors. Methods are safe on a nil receiver.
type Metrics struct {
	frames          *prometheus.CounterVec
	frameBytes      *prometheus.CounterVec
	messages        *prometheus.CounterVec
	lines           *prometheus.CounterVec
	decodeErrors    *prometheus.CounterVec
	checksumErrors  prometheus.Counter
	connected       prometheus.Gauge
	stateChanges    *prometheus.CounterVec
	reconnects      prometheus.Counter
	requests        *prometheus.CounterVec
	requestDuration prometheus.Histogram
}

// New creates and registers the collectors. Registering twice with the same
// registry panics.
func New(opts ...Option) *Metrics {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	f := promauto.With(cfg.Registry)

	counterVec := func(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
		return f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: cfg.ConstLabels,
		}, labels)
	}

	return &Metrics{
		frames:       counterVec("transport", "frames_total", "RNET frames by direction.", "direction"),
		frameBytes:   counterVec("transport", "bytes_total", "Bytes transferred by direction.", "direction"),
		messages:     counterVec("codec", "messages_total", "Decoded RNET messages by kind.", "kind"),
		lines:        counterVec("transport", "lines_total", "RIO lines by direction and tag.", "direction", "tag"),
		decodeErrors: counterVec("codec", "decode_errors_total", "Frames or lines that failed to decode.", "protocol"),
		checksumErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   "codec",
			Name:        "checksum_errors_total",
			Help:        "RNET frames with a checksum mismatch.",
			ConstLabels: cfg.ConstLabels,
		}),
		connected: f.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   "connection",
			Name:        "connected",
			Help:        "1 while the controller connection is up.",
			ConstLabels: cfg.ConstLabels,
		}),
		stateChanges: counterVec("connection", "state_changes_total", "Connection state transitions by new state.", "state"),
		reconnects: f.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   "connection",
			Name:        "reconnects_total",
			Help:        "Successful reconnects after connection loss.",
			ConstLabels: cfg.ConstLabels,
		}),
		requests: counterVec("rio", "requests_total", "Synchronous RIO requests by result.", "result"),
		requestDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   "rio",
			Name:        "request_duration_seconds",
			Help:        "Time from sending a GET until its response.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),
	}
}

// ObserveFrame counts a frame of size bytes. direction is "in" or "out".
func (m *Metrics) ObserveFrame(direction string, size int) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(direction).Inc()
	m.frameBytes.WithLabelValues(direction).Add(float64(size))
}

// ObserveMessage counts a decoded message.
func (m *Metrics) ObserveMessage(kind string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(kind).Inc()
}

// ObserveLine counts a RIO line of size bytes.
func (m *Metrics) ObserveLine(direction, tag string, size int) {
	if m == nil {
		return
	}
	m.lines.WithLabelValues(direction, tag).Inc()
	m.frameBytes.WithLabelValues(direction).Add(float64(size))
}

// ObserveDecodeError counts input that could not be decoded.
func (m *Metrics) ObserveDecodeError(protocol string) {
	if m == nil {
		return
	}
	m.decodeErrors.WithLabelValues(protocol).Inc()
}

// ObserveChecksumError counts a checksum mismatch.
func (m *Metrics) ObserveChecksumError() {
	if m == nil {
		return
	}
	m.checksumErrors.Inc()
}

// ObserveState records a connection state transition.
func (m *Metrics) ObserveState(state string, connected bool) {
	if m == nil {
		return
	}
	m.stateChanges.WithLabelValues(state).Inc()
	if connected {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}
}

// ObserveReconnect counts a successful reconnect.
func (m *Metrics) ObserveReconnect() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

// ObserveRequest records a finished request.
func (m *Metrics) ObserveRequest(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(result).Inc()
	m.requestDuration.Observe(d.Seconds())
}
