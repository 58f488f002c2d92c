package httpclient

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// Client is the public facade: connect-on-demand, send+await, retry on
// transport loss, WebSocket handoff (spec.md §4.9).
type Client struct {
	inner        *clientInner
	connectGroup singleflight.Group
}

// New constructs a client in the Disconnected state. No tasks are
// started until the first DoRequest call triggers a connect.
func New(connector Connector, opts ...Option) *Client {
	o := defaultClientOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = clockwork.NewRealClock()
	}
	tracer := newDebugTracer(o.logger, o.name, connector.IsDebug())
	inner := newClientInner(connector, o, tracer)
	inner.opts.metrics.InstanceCreated(o.name)
	return &Client{inner: inner}
}

// DoRequest sends req and waits for its response, reconnecting and
// resubmitting for as long as the failure observed is retirable (spec.md
// §4.9's algorithm: an unconditional retry-on-retirable-error loop — only
// Disconnected is retirable, so this terminates as soon as a connect
// attempt itself fails or a non-transport error surfaces). requestTimeout
// overrides the client's configured default when non-zero.
//
// Exactly one of the returned *Response / *WebSocketUpgrade is non-nil
// when err is nil.
func (c *Client) DoRequest(ctx context.Context, req *Request, requestTimeout time.Duration) (*Response, *WebSocketUpgrade, error) {
	if requestTimeout <= 0 {
		requestTimeout = c.inner.opts.requestTimeout
	}

	for {
		a, connID, err := c.send(req)
		if err != nil {
			if retirable(err) {
				if cerr := c.connect(ctx); cerr != nil {
					return nil, nil, cerr
				}
				continue
			}
			return nil, nil, err
		}

		c.inner.tracer.requestQueued(connID, req.Method, req.Target)

		timer := c.inner.opts.clock.NewTimer(requestTimeout)
		select {
		case res := <-a.ch:
			timer.Stop()
			if res.err != nil {
				if retirable(res.err) {
					if cerr := c.connect(ctx); cerr != nil {
						return nil, nil, cerr
					}
					continue
				}
				return nil, nil, res.err
			}
			if res.upgrade != nil {
				return c.completeUpgrade(connID, res.upgrade)
			}
			return res.response, nil, nil

		case <-timer.Chan():
			c.inner.abortConnection(connID)
			return nil, nil, ErrRequestTimeout(requestTimeout)

		case <-ctx.Done():
			timer.Stop()
			return nil, nil, ctx.Err()
		}
	}
}

func retirable(err error) bool {
	ce, ok := AsClientError(err)
	return ok && ce.Retirable()
}

// send enqueues the serialized request and returns an awaiter, or a
// retirable Disconnected error if there is no live connection to queue
// it on (which drives DoRequest's connect-on-demand loop).
func (c *Client) send(req *Request) (*awaiter, int64, error) {
	ci := c.inner

	ci.mu.Lock()
	switch ci.state.kind {
	case stateDisposed:
		ci.mu.Unlock()
		return nil, 0, ErrDisposed
	case stateUpgradedToWebSocket:
		ci.mu.Unlock()
		return nil, 0, ErrUpgraded
	case stateDisconnected:
		ci.mu.Unlock()
		return nil, 0, ErrDisconnected
	}
	ctx := ci.state.ctx
	a := newAwaiter()
	ctx.requestQueue.push(a)
	ci.mu.Unlock()

	ci.signalWrite(ctx, serialize(req))
	return a, ctx.connectionID, nil
}

// connect establishes a new physical connection, spawning WriteTask (once
// per client) and a fresh ReadTask (spec.md §4.9's connect() algorithm).
// Concurrent callers collapse onto a single in-flight dial via
// singleflight, so N callers that all observe Disconnected at once don't
// race N dials against the same remote host.
func (c *Client) connect(ctx context.Context) error {
	_, err, _ := c.connectGroup.Do("connect", func() (interface{}, error) {
		return nil, c.connectOnce(ctx)
	})
	return err
}

func (c *Client) connectOnce(parentCtx context.Context) error {
	ci := c.inner
	ci.tracer.connecting(ci.connector.RemoteHost())

	connCtx, cancel := context.WithTimeout(parentCtx, ci.opts.connectTimeout)
	defer cancel()

	stream, err := ci.connector.Connect(connCtx)
	if err != nil {
		return ErrCanNotConnect(ci.connector.RemoteHost(), err)
	}

	connID := ci.allocConnectionID()
	cctx := newConnectionContext(connID, stream, ci.opts.sendToSocketTimeout, ci.opts.readTimeout)

	ci.mu.Lock()
	ci.state = connState{kind: stateConnected, ctx: cctx}
	needsWriteTask := ci.writeSignal == nil
	if needsWriteTask {
		ci.writeSignal = make(chan writeEvent, 64)
	}
	signal := ci.writeSignal
	ci.mu.Unlock()

	if needsWriteTask {
		go writeTask(ci, signal)
	}

	ci.opts.metrics.TCPConnect(ci.opts.name)
	ci.tracer.connected(connID)

	go readTask(ci, connID, cctx, ci.opts.readBufferSize)
	return nil
}

// completeUpgrade surrenders the write half and hands back the reunited
// duplex stream (spec.md §4.9's WebSocketUpgrade branch).
func (c *Client) completeUpgrade(connID int64, up *websocketUpgrade) (*Response, *WebSocketUpgrade, error) {
	ci := c.inner

	ci.mu.Lock()
	if ci.state.kind != stateConnected || ci.state.ctx == nil || ci.state.ctx.connectionID != connID {
		ci.mu.Unlock()
		return nil, nil, ErrDisconnected
	}
	wh := ci.state.ctx.writeHalf
	ci.state.ctx.writeHalf = nil
	ci.state = connState{kind: stateUpgradedToWebSocket}
	ci.mu.Unlock()

	stream := ci.connector.Reunite(up.readHalf, wh)
	return nil, &WebSocketUpgrade{
		Stream:     stream,
		Response:   up.response,
		Disconnect: &disconnectHandle{ci: ci, connID: connID},
	}, nil
}

// Dispose schedules teardown: transitions to Disposed and closes the
// WriteTask signal channel. Safe to call more than once.
func (c *Client) Dispose() error {
	return c.inner.dispose()
}

// disconnectHandle implements DisconnectHandle, fenced to the connection
// id it was minted for (spec.md §6).
type disconnectHandle struct {
	ci     *clientInner
	connID int64
}

func (h *disconnectHandle) Disconnect() {
	h.ci.abortConnection(h.connID)
}

func (h *disconnectHandle) WebSocketDisconnect() {
	ci := h.ci
	ci.mu.Lock()
	cur := ci.state.kind == stateUpgradedToWebSocket
	if cur {
		ci.state = connState{kind: stateDisconnected}
	}
	ci.mu.Unlock()
	if cur {
		ci.opts.metrics.WebSocketDisconnected(ci.opts.name)
	}
}
