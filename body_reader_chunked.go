package httpclient

import "time"

// chunkFrameCapacity bounds the body-frame channel per spec.md §4.4.
const chunkFrameCapacity = 1024

// chunkedBody is the internal handle ReadTask keeps for a streaming
// response: frames is handed to the caller (via BodyMode.Frames), done is
// closed by Cancel to make driveChunkedBody give up. BodyMode exposes only
// Frames, so a caller holding a Response has no way to call Cancel.
type chunkedBody struct {
	frames chan []byte
	done   chan struct{}
}

// newChunkedBody constructs a BodyMode with an empty, not-yet-driven
// frame channel. The caller's awaiter is completed with this Response
// immediately — before any chunk has arrived — per spec.md §4.4.
func newChunkedBody() (BodyMode, *chunkedBody) {
	cb := &chunkedBody{
		frames: make(chan []byte, chunkFrameCapacity),
		done:   make(chan struct{}),
	}
	mode := BodyMode{Kind: BodyChunked, Frames: cb.frames}
	return mode, cb
}

// Cancel closes done. driveChunkedBody observes it on its next send
// attempt and returns a Disconnected error, after which ReadTask tears
// the connection down.
func (cb *chunkedBody) Cancel() {
	select {
	case <-cb.done:
	default:
		close(cb.done)
	}
}

// driveChunkedBody reads chunk frames off buf/r one at a time, pushing
// each onto cb.frames, until the zero-size terminator chunk is consumed.
// Trailer header lines, if any, are read and discarded up to the empty
// line that ends the chunked body; they are never surfaced to the
// caller.
func driveChunkedBody(tio *timedIO, r ReadHalf, buf *ReadBuffer, budget time.Duration, cb *chunkedBody) error {
	defer close(cb.frames)
	for {
		size, err := readUntilCRLF(tio, r, buf, budget, parseChunkSizeLine)
		if err != nil {
			return err
		}
		if size == 0 {
			return drainTrailer(tio, r, buf, budget)
		}

		frame := make([]byte, size)
		filled := 0
		if chunk, ok := buf.TakeUpTo(int(size)); ok {
			filled = copy(frame, chunk)
		}
		if filled < len(frame) {
			if err := tio.readExactTimed(r, buf, frame[filled:], budget); err != nil {
				return err
			}
		}

		select {
		case cb.frames <- frame:
		case <-cb.done:
			return newErr(KindDisconnected, "sending response chunk")
		}

		if err := tio.skipExactly(r, buf, len(crlf), budget); err != nil {
			return err
		}
	}
}

// drainTrailer reads and discards trailer header lines after the
// zero-size chunk, stopping at the empty line that terminates the body.
func drainTrailer(tio *timedIO, r ReadHalf, buf *ReadBuffer, budget time.Duration) error {
	for {
		line, err := readUntilCRLF(tio, r, buf, budget, func(b []byte) ([]byte, error) { return b, nil })
		if err != nil {
			return err
		}
		if len(line) == 0 {
			return nil
		}
	}
}
