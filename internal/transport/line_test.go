package transport

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineConnReadRecords(t *testing.T) {
	in := strings.NewReader("host\r\njoin ABC123\n\x01..#\n")
	lc := NewLineConn(in, io.Discard)
	ctx := context.Background()

	for _, want := range []string{"host", "join ABC123", "\x01..#"} {
		got, err := lc.ReadRecord(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
	_, err := lc.ReadRecord(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineConnTruncatedRecord(t *testing.T) {
	lc := NewLineConn(strings.NewReader("code ABC"), io.Discard)
	_, err := lc.ReadRecord(context.Background())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestLineConnLongRecord(t *testing.T) {
	long := bytes.Repeat([]byte{1}, 10000)
	lc := NewLineConn(bytes.NewReader(append(long, '\n')), io.Discard)
	got, err := lc.ReadRecord(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 10000)

	tooLong := bytes.Repeat([]byte{1}, MaxRecordSize+10)
	lc = NewLineConn(bytes.NewReader(append(tooLong, '\n')), io.Discard)
	_, err = lc.ReadRecord(context.Background())
	assert.ErrorIs(t, err, ErrRecordTooLarge)
}

func TestLineConnWriteRecord(t *testing.T) {
	var out bytes.Buffer
	lc := NewLineConn(strings.NewReader(""), &out)
	ctx := context.Background()

	require.NoError(t, lc.WriteRecord(ctx, []byte("paired host brave-otter")))
	require.NoError(t, lc.WriteRecord(ctx, []byte{2, 1, 1}))
	assert.Equal(t, "paired host brave-otter\n\x02\x01\x01\n", out.String())

	err := lc.WriteRecord(ctx, []byte("two\nlines"))
	assert.ErrorIs(t, err, ErrProtocol)
	assert.NoError(t, lc.Close(), "bytes.Buffer is not a closer")
}

func TestLineConnCancelledContext(t *testing.T) {
	lc := NewLineConn(strings.NewReader("host\n"), io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := lc.ReadRecord(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, lc.WriteRecord(ctx, []byte("host")), context.Canceled)
}

func TestIsControl(t *testing.T) {
	assert.True(t, IsControl([]byte("left host left")))
	assert.False(t, IsControl([]byte{1, 'a'}))
	assert.False(t, IsControl([]byte{2}))
	assert.False(t, IsControl(nil))
	assert.False(t, IsControl([]byte("Host")))
}
