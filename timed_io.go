package httpclient

import (
	"errors"
	"net"
	"time"

	"github.com/jonboulle/clockwork"
)

// ReadHalf is the read side of a duplex stream a Connector hands the
// client. It mirrors the subset of net.Conn the read path needs; any
// transport (TCP, TLS, Unix, an in-memory pipe) satisfies it.
type ReadHalf interface {
	Read(p []byte) (int, error)
	SetReadDeadline(t time.Time) error
}

// WriteHalf is the write side of a duplex stream.
type WriteHalf interface {
	Write(p []byte) (int, error)
	SetWriteDeadline(t time.Time) error
}

// DuplexStream is a full byte-oriented duplex stream as produced by a
// Connector. net.Conn satisfies it.
type DuplexStream interface {
	ReadHalf
	WriteHalf
	Close() error
}

// timedIO wraps elapsed-time budgets around a ReadHalf using a SetReadDeadline
// call per attempt, the same technique the teacher's connReader uses
// around netConIface.SetReadDeadline — generalized here to an injectable
// clock. The clock only supplies the start time of each deadline; the
// stream itself enforces the deadline in real time.
type timedIO struct {
	clock clockwork.Clock
}

func newTimedIO(clock clockwork.Clock) *timedIO {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &timedIO{clock: clock}
}

func isTimeoutErr(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}

// readIntoBuffer obtains a write region from buf, performs one Read call
// bounded by budget, and commits the bytes read.
func (t *timedIO) readIntoBuffer(r ReadHalf, buf *ReadBuffer, budget time.Duration) error {
	region, err := buf.GetWriteRegion()
	if err != nil {
		return invalidPayload("buffer exhausted")
	}
	if budget > 0 {
		_ = r.SetReadDeadline(t.clock.Now().Add(budget))
		defer r.SetReadDeadline(time.Time{})
	}
	n, err := r.Read(region)
	if err != nil {
		if isTimeoutErr(err) {
			return errReadingTimeout{d: budget}
		}
		return ErrDisconnected
	}
	if n == 0 {
		return ErrDisconnected
	}
	buf.CommitRead(n)
	return nil
}

// readExact loops readIntoBuffer/TakeUpTo until dst is fully populated.
func (t *timedIO) readExact(r ReadHalf, buf *ReadBuffer, dst []byte) error {
	filled := 0
	for filled < len(dst) {
		chunk, ok := buf.TakeUpTo(len(dst) - filled)
		if ok {
			filled += copy(dst[filled:], chunk)
			continue
		}
		if err := t.readIntoBuffer(r, buf, 0); err != nil {
			return err
		}
	}
	return nil
}

// readExactTimed is readExact with a per-attempt time budget applied to
// every underlying refill, used once the caller cares about the budget
// (e.g. draining the remainder of a length-delimited body).
func (t *timedIO) readExactTimed(r ReadHalf, buf *ReadBuffer, dst []byte, budget time.Duration) error {
	filled := 0
	for filled < len(dst) {
		chunk, ok := buf.TakeUpTo(len(dst) - filled)
		if ok {
			filled += copy(dst[filled:], chunk)
			continue
		}
		if err := t.readIntoBuffer(r, buf, budget); err != nil {
			return err
		}
	}
	return nil
}

// skipExactly loops buf.SkipExactly, refilling on NeedsMore.
func (t *timedIO) skipExactly(r ReadHalf, buf *ReadBuffer, k int, budget time.Duration) error {
	for !buf.SkipExactly(k) {
		if err := t.readIntoBuffer(r, buf, budget); err != nil {
			return err
		}
	}
	return nil
}

// readUntilCRLF loops buf.ReadUntilCRLF, refilling on NeedsMore, and
// applies convert to the completed line.
func readUntilCRLF[T any](t *timedIO, r ReadHalf, buf *ReadBuffer, budget time.Duration, convert func([]byte) (T, error)) (T, error) {
	for {
		line, ok := buf.ReadUntilCRLF()
		if ok {
			return convert(line)
		}
		var zero T
		if err := t.readIntoBuffer(r, buf, budget); err != nil {
			return zero, err
		}
	}
}
