package httpclient

import "bytes"

// DefaultReadBufferSize is the recommended fixed capacity for a
// ReadBuffer: large enough for status line + headers of almost any real
// server, small enough to bound memory per connection.
const DefaultReadBufferSize = 65535

// ReadBuffer is a fixed-capacity, compacting byte buffer. Live data spans
// [consumedPos, readPos) of buf; data before consumedPos has already been
// handed to the caller and may be overwritten by compaction.
//
// ReadBuffer is task-local: it is owned by exactly one ReadTask and is
// never shared.
type ReadBuffer struct {
	buf         []byte
	readPos     int
	consumedPos int
}

// NewReadBuffer allocates a ReadBuffer with the given fixed capacity.
func NewReadBuffer(capacity int) *ReadBuffer {
	return &ReadBuffer{buf: make([]byte, capacity)}
}

func (b *ReadBuffer) compact() {
	if b.consumedPos == 0 {
		return
	}
	n := copy(b.buf, b.buf[b.consumedPos:b.readPos])
	b.readPos = n
	b.consumedPos = 0
}

// GetWriteRegion returns the tail region available for a fresh Read call,
// compacting first if necessary. Returns errNoRoom if no forward progress
// is possible (consumedPos == 0 and the buffer is already full).
func (b *ReadBuffer) GetWriteRegion() ([]byte, error) {
	if b.readPos == len(b.buf) {
		b.compact()
		if b.readPos == len(b.buf) {
			return nil, errNoRoom
		}
	}
	return b.buf[b.readPos:], nil
}

// CommitRead advances readPos by k bytes just written into the region
// returned by GetWriteRegion.
func (b *ReadBuffer) CommitRead(k int) {
	if b.readPos+k > len(b.buf) {
		panic("httpclient: CommitRead overruns buffer capacity")
	}
	b.readPos += k
}

// ReadUntilCRLF scans the live region for the first "\r\n" and, on a hit,
// returns the slice before it (excluding the CRLF) and advances
// consumedPos past it. On a miss it returns (nil, false) without mutating
// anything, so the caller can refill and retry.
func (b *ReadBuffer) ReadUntilCRLF() ([]byte, bool) {
	live := b.buf[b.consumedPos:b.readPos]
	idx := bytes.Index(live, crlf)
	if idx < 0 {
		return nil, false
	}
	line := live[:idx]
	b.consumedPos += idx + len(crlf)
	return line, true
}

// SkipExactly advances consumedPos by k bytes without returning them,
// reporting false if fewer than k bytes are currently buffered.
func (b *ReadBuffer) SkipExactly(k int) bool {
	if b.consumedPos+k > b.readPos {
		return false
	}
	b.consumedPos += k
	return true
}

// TakeUpTo returns min(k, buffered) bytes starting at consumedPos and
// advances consumedPos by that amount. The returned slice aliases the
// buffer and is only valid until the next mutating call. ok is false iff
// no bytes are currently buffered.
func (b *ReadBuffer) TakeUpTo(k int) (data []byte, ok bool) {
	avail := b.readPos - b.consumedPos
	if avail <= 0 {
		return nil, false
	}
	if k < avail {
		avail = k
	}
	data = b.buf[b.consumedPos : b.consumedPos+avail]
	b.consumedPos += avail
	return data, true
}

// IsEmpty reports whether the live region is empty.
func (b *ReadBuffer) IsEmpty() bool { return b.readPos == b.consumedPos }

var crlf = []byte("\r\n")
