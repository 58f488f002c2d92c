package httpclient

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// clientOptions configures a Client, following the functional-options
// pattern the rest of the retrieved pack uses for this kind of
// configuration (e.g. framer.Option in hayabusa-cloud-framer/options.go).
type clientOptions struct {
	name                string
	readBufferSize      int
	connectTimeout      time.Duration
	sendToSocketTimeout time.Duration
	readTimeout         time.Duration
	requestTimeout      time.Duration
	metrics             Metrics
	logger              *logrus.Entry
	clock               clockwork.Clock
}

var defaultClientOptions = clientOptions{
	readBufferSize:      DefaultReadBufferSize,
	connectTimeout:      10 * time.Second,
	sendToSocketTimeout: 30 * time.Second,
	readTimeout:         120 * time.Second,
	requestTimeout:      30 * time.Second,
	metrics:             noopMetrics{},
}

// Option configures a Client at construction time.
type Option func(*clientOptions)

// WithName sets the client's name, used in metrics labels and log fields.
func WithName(name string) Option {
	return func(o *clientOptions) { o.name = name }
}

// WithReadBufferSize overrides ReadBuffer's fixed capacity (spec.md §3,
// default DefaultReadBufferSize).
func WithReadBufferSize(n int) Option {
	return func(o *clientOptions) { o.readBufferSize = n }
}

// WithConnectTimeout bounds a single connect() attempt (spec.md §4.9).
func WithConnectTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.connectTimeout = d }
}

// WithSendTimeout bounds each WriteTask flush attempt (spec.md §4.7
// send_to_socket_timeout). Distinct from WithReadTimeout, which bounds
// reads.
func WithSendTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.sendToSocketTimeout = d }
}

// WithRequestTimeout bounds how long DoRequest waits for a response
// before returning RequestTimeout (spec.md §4.9).
func WithRequestTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.requestTimeout = d }
}

// WithReadTimeout bounds each blocking read ReadTask performs while
// parsing headers or draining a body (spec.md §4.8, matching the Rust
// original's read_from_stream_timeout). Distinct from WithSendTimeout,
// which bounds writes.
func WithReadTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.readTimeout = d }
}

// WithMetrics wires a concrete named-counter sink (spec.md §6).
func WithMetrics(m Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithLogger sets the base logrus entry debug tracing is written through.
func WithLogger(log *logrus.Entry) Option {
	return func(o *clientOptions) { o.logger = log }
}

// WithClock overrides the clock used for every elapsed-time budget;
// tests inject a clockwork.FakeClock here.
func WithClock(c clockwork.Clock) Option {
	return func(o *clientOptions) { o.clock = c }
}
