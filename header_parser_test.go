package httpclient

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseHeaders(t *testing.T, raw string) (*PartialResponse, Framing) {
	t.Helper()
	buf := NewReadBuffer(4096)
	region, err := buf.GetWriteRegion()
	require.NoError(t, err)
	buf.CommitRead(copy(region, raw))

	tio := newTimedIO(nil)
	resp, framing, err := parseHeaders(tio, &staticReadHalf{}, buf, 0)
	require.NoError(t, err)
	return resp, framing
}

func TestParseHeadersContentLength(t *testing.T) {
	resp, framing := mustParseHeaders(t, "HTTP/1.1 200 OK\r\nContent-Length: 13\r\nServer: x\r\n\r\n")
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "HTTP/1.1", resp.Version)
	assert.Equal(t, FramingLengthBased, framing.Kind)
	assert.EqualValues(t, 13, framing.Size)
}

func TestParseHeadersChunked(t *testing.T) {
	_, framing := mustParseHeaders(t, "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n")
	assert.Equal(t, FramingChunked, framing.Kind)
}

func TestParseHeadersUpgrade(t *testing.T) {
	_, framing := mustParseHeaders(t, "HTTP/1.1 101 Switching Protocols\r\nUpgrade: websocket\r\nConnection: Upgrade\r\n\r\n")
	assert.Equal(t, FramingWebSocketUpgrade, framing.Kind)
}

func TestParseHeadersLastFramingHeaderWins(t *testing.T) {
	_, framing := mustParseHeaders(t, "HTTP/1.1 200 OK\r\nContent-Length: 10\r\nTransfer-Encoding: chunked\r\n\r\n")
	assert.Equal(t, FramingChunked, framing.Kind)
}

func TestParseHeadersRejectsBadContentLength(t *testing.T) {
	buf := NewReadBuffer(4096)
	region, _ := buf.GetWriteRegion()
	buf.CommitRead(copy(region, "HTTP/1.1 200 OK\r\nContent-Length: notanumber\r\n\r\n"))

	tio := newTimedIO(nil)
	_, _, err := parseHeaders(tio, &staticReadHalf{}, buf, 0)
	require.Error(t, err)
	var ip errInvalidHTTPPayload
	assert.ErrorAs(t, err, &ip)
}

func TestResponseHeaderValueCaseInsensitive(t *testing.T) {
	r := &Response{Headers: []Header{{Name: "Content-Type", Value: "text/plain"}}}
	v, ok := r.HeaderValue("content-type")
	require.True(t, ok)
	assert.Equal(t, "text/plain", v)

	_, ok = r.HeaderValue("missing")
	assert.False(t, ok)
}

// staticReadHalf is only ever consulted if the test's pre-filled buffer
// runs dry, which a correctly scoped test never does.
type staticReadHalf struct{}

func (staticReadHalf) Read(p []byte) (int, error)       { return 0, errUnexpectedRead }
func (staticReadHalf) SetReadDeadline(t time.Time) error { return nil }

var errUnexpectedRead = errors.New("unexpected read: test buffer should have been sufficient")
