package httpclient

import "time"

const writeChunkSize = 1 << 20 // 1 MiB, spec.md §4.7

// writeTask is the single long-lived task per Client instance (not per
// connection) that drains queueToDeliver to the wire on demand, mirroring
// the teacher's persistConn.writeLoop goroutine shape — a single
// goroutine blocking on a channel of work items until told to close.
func writeTask(ci *clientInner, signal <-chan writeEvent) {
	ci.opts.metrics.WriteThreadStart(ci.opts.name)
	defer ci.opts.metrics.WriteThreadStop(ci.opts.name)

	for ev := range signal {
		if ev.close {
			return
		}
		flushOnce(ci, ev.flushConnID)
	}
}

// flushOnce implements spec.md §4.7's Flush(cid) steps: the state lock is
// held for the whole operation, including the socket write, since at most
// one request is ever in flight per connection.
func flushOnce(ci *clientInner, connID int64) {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	if ci.state.kind != stateConnected || ci.state.ctx == nil || ci.state.ctx.connectionID != connID {
		return
	}
	ctx := ci.state.ctx

	ctx.mu.Lock()
	data := ctx.queueToDeliver
	ctx.queueToDeliver = nil
	ctx.mu.Unlock()

	tio := newTimedIO(ci.opts.clock)
	for len(data) > 0 {
		n := len(data)
		if n > writeChunkSize {
			n = writeChunkSize
		}
		if err := writeAllTimed(tio, ctx.writeHalf, data[:n], ctx.sendTimeout); err != nil {
			ci.tracer.disconnected(connID, err)
			ctx.requestQueue.notifyConnectionLost()
			ci.state = connState{kind: stateDisconnected}
			ci.opts.metrics.TCPDisconnect(ci.opts.name)
			_ = closeHalf(ctx.writeHalf)
			return
		}
		data = data[n:]
	}
}

// writeAllTimed writes all of data, each attempt bounded by budget.
func writeAllTimed(tio *timedIO, w WriteHalf, data []byte, budget time.Duration) error {
	if budget > 0 {
		defer w.SetWriteDeadline(time.Time{})
	}
	written := 0
	for written < len(data) {
		if budget > 0 {
			_ = w.SetWriteDeadline(tio.clock.Now().Add(budget))
		}
		n, err := w.Write(data[written:])
		if err != nil {
			if isTimeoutErr(err) {
				return errWritingTimeout{d: budget}
			}
			return ErrDisconnected
		}
		written += n
	}
	return nil
}
