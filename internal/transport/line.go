package transport

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// LineConn carries records as newline-terminated lines over any byte
// stream: a TCP connection, a pipe, or stdin/stdout.
//
// Reads block until a full line arrives; the context is only checked
// before the read starts. Close the underlying stream to unblock a reader.
type LineConn struct {
	r *bufio.Reader
	w io.Writer
	c io.Closer

	mu sync.Mutex // serializes writes
}

// NewLineConn wraps a reader and writer. If w also implements io.Closer
// it is closed by Close.
func NewLineConn(r io.Reader, w io.Writer) *LineConn {
	lc := &LineConn{
		r: bufio.NewReaderSize(r, 4096),
		w: w,
	}
	if c, ok := w.(io.Closer); ok {
		lc.c = c
	}
	return lc
}

// ReadRecord returns the next line without its terminator.
func (l *LineConn) ReadRecord(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var line []byte
	for {
		chunk, err := l.r.ReadSlice('\n')
		line = append(line, chunk...)
		if len(line) > MaxRecordSize+1 {
			return nil, ErrRecordTooLarge
		}
		if err == nil {
			return bytes.TrimSuffix(line[:len(line)-1], []byte{'\r'}), nil
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF && len(line) > 0 {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
}

// WriteRecord writes rec followed by a newline.
func (l *LineConn) WriteRecord(ctx context.Context, rec []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if bytes.IndexByte(rec, '\n') >= 0 {
		return fmt.Errorf("%w: record contains a newline", ErrProtocol)
	}
	if len(rec) > MaxRecordSize {
		return ErrRecordTooLarge
	}

	buf := make([]byte, 0, len(rec)+1)
	buf = append(buf, rec...)
	buf = append(buf, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.w.Write(buf)
	return err
}

// Close closes the writer side if it can be closed.
func (l *LineConn) Close() error {
	if l.c == nil {
		return nil
	}
	return l.c.Close()
}
