package httpclient

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the optional "named counter" capability (spec.md §6). A
// no-op implementation is used when WithMetrics isn't supplied.
type Metrics interface {
	InstanceCreated(clientName string)
	InstanceDisposed(clientName string)
	TCPConnect(clientName string)
	TCPDisconnect(clientName string)
	ReadThreadStart(clientName string)
	ReadThreadStop(clientName string)
	WriteThreadStart(clientName string)
	WriteThreadStop(clientName string)
	UpgradedToWebSocket(clientName string)
	WebSocketDisconnected(clientName string)
}

type noopMetrics struct{}

func (noopMetrics) InstanceCreated(string)        {}
func (noopMetrics) InstanceDisposed(string)        {}
func (noopMetrics) TCPConnect(string)              {}
func (noopMetrics) TCPDisconnect(string)           {}
func (noopMetrics) ReadThreadStart(string)         {}
func (noopMetrics) ReadThreadStop(string)          {}
func (noopMetrics) WriteThreadStart(string)        {}
func (noopMetrics) WriteThreadStop(string)         {}
func (noopMetrics) UpgradedToWebSocket(string)     {}
func (noopMetrics) WebSocketDisconnected(string)   {}

// PrometheusMetrics implements Metrics with a single CounterVec labeled
// by client name and event, the concrete sink for the named-counter
// capability spec.md §6 leaves abstract.
type PrometheusMetrics struct {
	counter *prometheus.CounterVec
}

// NewPrometheusMetrics registers (or reuses, if already registered) a
// my_http_client_events_total counter vector on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "my_http_client_events_total",
		Help: "Count of my-http-client lifecycle events by client name and event kind.",
	}, []string{"client_name", "event"})

	if reg != nil {
		if err := reg.Register(cv); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				cv = are.ExistingCollector.(*prometheus.CounterVec)
			}
		}
	}
	return &PrometheusMetrics{counter: cv}
}

func (m *PrometheusMetrics) inc(clientName, event string) {
	m.counter.WithLabelValues(clientName, event).Inc()
}

func (m *PrometheusMetrics) InstanceCreated(n string)      { m.inc(n, "instance_created") }
func (m *PrometheusMetrics) InstanceDisposed(n string)      { m.inc(n, "instance_disposed") }
func (m *PrometheusMetrics) TCPConnect(n string)            { m.inc(n, "tcp_connect") }
func (m *PrometheusMetrics) TCPDisconnect(n string)         { m.inc(n, "tcp_disconnect") }
func (m *PrometheusMetrics) ReadThreadStart(n string)       { m.inc(n, "read_thread_start") }
func (m *PrometheusMetrics) ReadThreadStop(n string)        { m.inc(n, "read_thread_stop") }
func (m *PrometheusMetrics) WriteThreadStart(n string)      { m.inc(n, "write_thread_start") }
func (m *PrometheusMetrics) WriteThreadStop(n string)       { m.inc(n, "write_thread_stop") }
func (m *PrometheusMetrics) UpgradedToWebSocket(n string)   { m.inc(n, "upgraded_to_websocket") }
func (m *PrometheusMetrics) WebSocketDisconnected(n string) { m.inc(n, "websocket_is_disconnected") }
