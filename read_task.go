package httpclient

// readTask is the one-per-physical-connection task that owns the read
// half and a private ReadBuffer, driving HeaderParser -> BodyReader ->
// delivery -> back to HeaderParser (spec.md §4.8). It mirrors the shape
// of the teacher's persistConn.readLoop goroutine: a single goroutine
// that loops until the connection it was spawned for is no longer
// current, popping the head of the request queue exactly once per
// response.
func readTask(ci *clientInner, connID int64, ctx *connectionContext, bufSize int) {
	ci.opts.metrics.ReadThreadStart(ci.opts.name)
	defer ci.opts.metrics.ReadThreadStop(ci.opts.name)

	defer func() {
		if r := recover(); r != nil {
			if a := ctx.requestQueue.pop(); a != nil {
				a.complete(awaiterResult{err: ErrCanNotExecuteRequest("Request is panicked")})
			}
			teardownConnection(ci, ctx, connID)
		}
	}()

	buf := NewReadBuffer(bufSize)
	tio := newTimedIO(ci.opts.clock)

	for isCurrentConnection(ci, ctx, connID) {
		resp, framing, err := parseHeaders(tio, ctx.readHalf, buf, ctx.readTimeout)
		if err != nil {
			failHeadAndTeardown(ci, ctx, connID, err)
			return
		}

		switch framing.Kind {
		case FramingLengthBased:
			body, err := readFullBody(tio, ctx.readHalf, buf, framing.Size, ctx.readTimeout)
			if err != nil {
				failHeadAndTeardown(ci, ctx, connID, err)
				return
			}
			deliverResponse(ci, ctx, connID, resp, body)

		case FramingChunked:
			mode, cb := newChunkedBody()
			deliverResponse(ci, ctx, connID, resp, mode)
			if err := driveChunkedBody(tio, ctx.readHalf, buf, ctx.readTimeout, cb); err != nil {
				teardownConnection(ci, ctx, connID)
				return
			}

		case FramingWebSocketUpgrade:
			response := &Response{Status: resp.Status, Version: resp.Version, Headers: resp.Headers, Body: BodyMode{Kind: BodyUpgraded}}
			a := ctx.requestQueue.pop()
			if a != nil {
				a.complete(awaiterResult{upgrade: &websocketUpgrade{response: response, readHalf: ctx.readHalf}})
			}
			ctx.mu.Lock()
			ctx.waitingUpgrade = true
			ctx.mu.Unlock()
			ci.opts.metrics.UpgradedToWebSocket(ci.opts.name)
			ci.tracer.upgraded(connID)
			return
		}
	}
}

func isCurrentConnection(ci *clientInner, ctx *connectionContext, connID int64) bool {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	return ci.state.kind == stateConnected && ci.state.ctx == ctx && ctx.connectionID == connID
}

// deliverResponse pops the head awaiter and completes it with a decoded
// response. For chunked bodies this happens before the body has finished
// arriving (spec.md §4.6).
func deliverResponse(ci *clientInner, ctx *connectionContext, connID int64, partial *PartialResponse, body BodyMode) {
	response := &Response{Status: partial.Status, Version: partial.Version, Headers: partial.Headers, Body: body}
	if a := ctx.requestQueue.pop(); a != nil {
		a.complete(awaiterResult{response: response})
	}
	ci.tracer.responseDelivered(connID, partial.Status)
}

// failHeadAndTeardown converts an InvalidHttpPayload parse error into a
// CanNotExecuteRequest failure for the head-of-queue awaiter before
// disconnecting (spec.md §4.8 step 5); any other error leaves the head
// awaiter to be failed generically by teardownConnection's
// notifyConnectionLost with Disconnected.
func failHeadAndTeardown(ci *clientInner, ctx *connectionContext, connID int64, err error) {
	if ip, ok := err.(errInvalidHTTPPayload); ok {
		if a := ctx.requestQueue.pop(); a != nil {
			a.complete(awaiterResult{err: ErrCanNotExecuteRequest(ip.msg)})
		}
	}
	teardownConnection(ci, ctx, connID)
}

// teardownConnection transitions the client to Disconnected if ctx/connID
// is still the current connection, draining the request queue.
// waitingUpgrade suppresses this bookkeeping once a handoff has already
// moved the connection to UpgradedToWebSocket (spec.md §3).
func teardownConnection(ci *clientInner, ctx *connectionContext, connID int64) {
	ctx.mu.Lock()
	waiting := ctx.waitingUpgrade
	ctx.mu.Unlock()
	if waiting {
		return
	}

	ci.mu.Lock()
	current := ci.state.kind == stateConnected && ci.state.ctx == ctx && ctx.connectionID == connID
	if current {
		ci.state = connState{kind: stateDisconnected}
	}
	ci.mu.Unlock()

	if current {
		ctx.requestQueue.notifyConnectionLost()
		ci.opts.metrics.TCPDisconnect(ci.opts.name)
		ci.tracer.disconnected(connID, nil)
		_ = closeHalf(ctx.writeHalf)
	}
}
