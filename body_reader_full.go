package httpclient

import "time"

// readFullBody consumes exactly size bytes of a length-delimited body:
// best-effort drain from buf first, then readExact for the remainder.
// size == 0 delivers BodyEmpty without touching the socket at all.
func readFullBody(tio *timedIO, r ReadHalf, buf *ReadBuffer, size int64, budget time.Duration) (BodyMode, error) {
	if size == 0 {
		return BodyMode{Kind: BodyEmpty}, nil
	}

	out := make([]byte, size)
	filled := 0
	if chunk, ok := buf.TakeUpTo(int(size)); ok {
		filled = copy(out, chunk)
	}
	if filled < len(out) {
		if err := tio.readExactTimed(r, buf, out[filled:], budget); err != nil {
			return BodyMode{}, err
		}
	}
	return BodyMode{Kind: BodyFull, Full: out}, nil
}
