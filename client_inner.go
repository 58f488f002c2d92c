package httpclient

import (
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
)

// writeEvent is what the WriteTask's signal channel carries (spec.md
// §4.7).
type writeEvent struct {
	flushConnID int64
	close       bool
}

// clientInner is the shared mutable state of a Client, guarded by a
// single asynchronous mutual-exclusion lock (spec.md §3, §5, §9). It is
// created once per Client and disposed exactly once.
type clientInner struct {
	opts clientOptions

	connector Connector
	tracer    *debugTracer

	nextConnID int64 // per-client monotonic counter (spec.md §9 allows this scoping)

	mu          sync.Mutex
	state       connState
	writeSignal chan writeEvent // nil until the first connect spawns WriteTask
}

func newClientInner(connector Connector, opts clientOptions, tracer *debugTracer) *clientInner {
	return &clientInner{
		connector: connector,
		opts:      opts,
		tracer:    tracer,
		state:     connState{kind: stateDisconnected},
	}
}

func (ci *clientInner) allocConnectionID() int64 {
	return atomic.AddInt64(&ci.nextConnID, 1)
}

// getState returns a snapshot of the current state under the lock.
func (ci *clientInner) getState() connState {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	return ci.state
}

// transition atomically swaps the state, as every lifecycle edge must
// (spec.md §9).
func (ci *clientInner) transition(next connState) {
	ci.mu.Lock()
	ci.state = next
	ci.mu.Unlock()
}

// signalWrite enqueues bytes onto the connected context and wakes
// WriteTask. Ordering guarantee (spec.md §4.7): bytes are appended under
// the lock before the signal is sent, so any wakeup observes at least
// the bytes that caused it.
func (ci *clientInner) signalWrite(ctx *connectionContext, data []byte) {
	ctx.mu.Lock()
	ctx.queueToDeliver = append(ctx.queueToDeliver, data...)
	ctx.mu.Unlock()

	ci.mu.Lock()
	ch := ci.writeSignal
	ci.mu.Unlock()
	if ch != nil {
		ch <- writeEvent{flushConnID: ctx.connectionID}
	}
}

// dispose transitions to Disposed exactly once, closes the WriteTask
// signal channel, and drains whatever request queue is live; later calls
// return nil without doing anything. The error from closing the write
// half is collected with multierror; draining the queue reports no error.
func (ci *clientInner) dispose() error {
	ci.mu.Lock()
	prev := ci.state
	if prev.kind == stateDisposed {
		ci.mu.Unlock()
		return nil
	}
	ci.state = connState{kind: stateDisposed}
	ch := ci.writeSignal
	ci.writeSignal = nil
	ci.mu.Unlock()

	var result *multierror.Error

	if prev.kind == stateConnected && prev.ctx != nil {
		prev.ctx.requestQueue.notifyDisposed()
		if prev.ctx.writeHalf != nil {
			if err := closeHalf(prev.ctx.writeHalf); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}

	if ch != nil {
		ch <- writeEvent{close: true}
	}

	ci.opts.metrics.InstanceDisposed(ci.opts.name)
	return result.ErrorOrNil()
}

// abortConnection forces the connection identified by connID to
// Disconnected, if it is still current. Used when request_timeout fires:
// spec.md §5 notes the write has already been committed to the wire, so
// the connection must be torn down rather than reused (the next
// iteration's connect() starts fresh).
func (ci *clientInner) abortConnection(connID int64) {
	ci.mu.Lock()
	cur := ci.state.kind == stateConnected && ci.state.ctx != nil && ci.state.ctx.connectionID == connID
	var ctx *connectionContext
	if cur {
		ctx = ci.state.ctx
		ci.state = connState{kind: stateDisconnected}
	}
	ci.mu.Unlock()

	if cur {
		ctx.requestQueue.notifyConnectionLost()
		ci.opts.metrics.TCPDisconnect(ci.opts.name)
		_ = closeHalf(ctx.writeHalf)
	}
}

func closeHalf(w WriteHalf) error {
	if c, ok := w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
