package httpclient

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeReadHalf adapts a net.Conn half to ReadHalf for tests that need a
// real blocking Read (unlike staticReadHalf in header_parser_test.go).
type pipeReadHalf struct{ net.Conn }

func TestReadFullBodyFromBufferOnly(t *testing.T) {
	buf := NewReadBuffer(64)
	region, err := buf.GetWriteRegion()
	require.NoError(t, err)
	buf.CommitRead(copy(region, "hello"))

	tio := newTimedIO(nil)
	mode, err := readFullBody(tio, pipeReadHalf{}, buf, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, BodyFull, mode.Kind)
	assert.Equal(t, "hello", string(mode.Full))
}

func TestReadFullBodyEmpty(t *testing.T) {
	buf := NewReadBuffer(64)
	tio := newTimedIO(nil)
	mode, err := readFullBody(tio, pipeReadHalf{}, buf, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, BodyEmpty, mode.Kind)
}

func TestReadFullBodySpansSocket(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	buf := NewReadBuffer(64)
	region, err := buf.GetWriteRegion()
	require.NoError(t, err)
	buf.CommitRead(copy(region, "hel")) // first 3 bytes pre-buffered

	go func() {
		_, _ = server.Write([]byte("lo")) // remaining 2 arrive over the wire
	}()

	tio := newTimedIO(nil)
	mode, err := readFullBody(tio, client, buf, 5, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(mode.Full))
}

func TestDriveChunkedBodyDeliversFramesThenCloses(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	buf := NewReadBuffer(256)
	tio := newTimedIO(nil)
	mode, cb := newChunkedBody()

	go func() {
		_, _ = server.Write([]byte("5\r\nhello\r\n5\r\nworld\r\n0\r\n\r\n"))
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- driveChunkedBody(tio, client, buf, time.Second, cb) }()

	var got []byte
	for frame := range mode.Frames {
		got = append(got, frame...)
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, "helloworld", string(got))
}

func TestDriveChunkedBodyDiscardsTrailer(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	buf := NewReadBuffer(256)
	tio := newTimedIO(nil)
	mode, cb := newChunkedBody()

	go func() {
		_, _ = server.Write([]byte("5\r\nhello\r\n0\r\nX-Checksum: abc\r\n\r\n"))
		_, _ = server.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nhi"))
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- driveChunkedBody(tio, client, buf, time.Second, cb) }()

	var got []byte
	for frame := range mode.Frames {
		got = append(got, frame...)
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, "hello", string(got))

	resp, framing, err := parseHeaders(tio, client, buf, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, FramingLengthBased, framing.Kind)
	assert.EqualValues(t, 2, framing.Size)
}

func TestDriveChunkedBodyCancelStopsEarly(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	buf := NewReadBuffer(256)
	tio := newTimedIO(nil)

	// A full frames channel and an already-closed done channel make the
	// cb.done branch of driveChunkedBody's select deterministically the
	// only ready one.
	cb := &chunkedBody{frames: make(chan []byte, 1), done: make(chan struct{})}
	cb.frames <- []byte("already queued")
	cb.Cancel()

	go func() {
		_, _ = server.Write([]byte("5\r\nhello\r\n0\r\n\r\n"))
	}()

	err := driveChunkedBody(tio, client, buf, time.Second, cb)
	require.Error(t, err)
	ce, ok := AsClientError(err)
	require.True(t, ok)
	assert.Equal(t, KindDisconnected, ce.Kind())
}
