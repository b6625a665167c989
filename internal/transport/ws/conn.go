// Package ws carries relay records over websocket messages, one record per
// message: frames as binary messages, control lines as text.
package ws

import (
	"context"
	"net/http"

	"nhooyr.io/websocket"

	"github.com/vovakirdan/tui-tetris/internal/transport"
)

// Conn adapts a websocket connection to transport.Records.
type Conn struct {
	c *websocket.Conn
}

var _ transport.Records = (*Conn)(nil)

func newConn(c *websocket.Conn) *Conn {
	c.SetReadLimit(transport.MaxRecordSize + 1)
	return &Conn{c: c}
}

// Dial connects to a relay endpoint such as ws://host:8080/relay.
func Dial(ctx context.Context, url string) (*Conn, error) {
	c, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: http.Header{"User-Agent": []string{"tui-tetris"}},
	})
	if err != nil {
		return nil, err
	}
	return newConn(c), nil
}

// Dialer returns a transport.Dialer for a websocket relay endpoint.
func Dialer(url string) transport.Dialer {
	return func(ctx context.Context) (transport.Records, error) {
		c, err := Dial(ctx, url)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// ReadRecord returns the next message. A trailing newline is stripped so
// line-oriented clients may send frames as they would over a pipe.
func (c *Conn) ReadRecord(ctx context.Context) ([]byte, error) {
	_, data, err := c.c.Read(ctx)
	if err != nil {
		return nil, err
	}
	if n := len(data); n > 0 && data[n-1] == '\n' {
		data = data[:n-1]
	}
	return data, nil
}

// WriteRecord sends rec as one message.
func (c *Conn) WriteRecord(ctx context.Context, rec []byte) error {
	typ := websocket.MessageBinary
	if transport.IsControl(rec) {
		typ = websocket.MessageText
	}
	return c.c.Write(ctx, typ, rec)
}

// Close performs a normal closing handshake.
func (c *Conn) Close() error {
	return c.c.Close(websocket.StatusNormalClosure, "bye")
}
