package httpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBufferReadUntilCRLFAcrossFills(t *testing.T) {
	buf := NewReadBuffer(64)

	region, err := buf.GetWriteRegion()
	require.NoError(t, err)
	n := copy(region, "GET /x HTTP")
	buf.CommitRead(n)

	_, ok := buf.ReadUntilCRLF()
	assert.False(t, ok, "no CRLF yet")

	region, err = buf.GetWriteRegion()
	require.NoError(t, err)
	n = copy(region, "/1.1\r\nHost: x\r\n")
	buf.CommitRead(n)

	line, ok := buf.ReadUntilCRLF()
	require.True(t, ok)
	assert.Equal(t, "GET /x HTTP/1.1", string(line))

	line, ok = buf.ReadUntilCRLF()
	require.True(t, ok)
	assert.Equal(t, "Host: x", string(line))
}

func TestReadBufferTakeUpTo(t *testing.T) {
	buf := NewReadBuffer(32)
	region, err := buf.GetWriteRegion()
	require.NoError(t, err)
	n := copy(region, "hello world")
	buf.CommitRead(n)

	chunk, ok := buf.TakeUpTo(5)
	require.True(t, ok)
	assert.Equal(t, "hello", string(chunk))

	// fewer bytes remain than requested: TakeUpTo returns what's there.
	chunk, ok = buf.TakeUpTo(100)
	require.True(t, ok)
	assert.Equal(t, " world", string(chunk))

	_, ok = buf.TakeUpTo(1)
	assert.False(t, ok, "nothing left to take")
}

func TestReadBufferCompactsOnRefill(t *testing.T) {
	buf := NewReadBuffer(16)
	region, err := buf.GetWriteRegion()
	require.NoError(t, err)
	n := copy(region, "0123456789123456") // fills all 16 bytes
	buf.CommitRead(n)

	_, ok := buf.TakeUpTo(14)
	require.True(t, ok)

	// Only 2 bytes of unread data remain; compaction on the next
	// GetWriteRegion call should free up most of the 16-byte capacity
	// again even though readPos had reached the end.
	region, err = buf.GetWriteRegion()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(region), 12)
}

func TestReadBufferExhaustedReturnsNoRoom(t *testing.T) {
	buf := NewReadBuffer(8)
	region, err := buf.GetWriteRegion()
	require.NoError(t, err)
	buf.CommitRead(len(region))

	_, err = buf.GetWriteRegion()
	assert.ErrorIs(t, err, errNoRoom)
}

func TestReadBufferIsEmpty(t *testing.T) {
	buf := NewReadBuffer(8)
	assert.True(t, buf.IsEmpty())

	region, err := buf.GetWriteRegion()
	require.NoError(t, err)
	buf.CommitRead(copy(region, "x"))
	assert.False(t, buf.IsEmpty())
}
