package transport

import (
	"context"
	"io"
	"net"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-tetris/internal/multiplayer"
)

// Dialer opens a record stream to a relay.
type Dialer func(ctx context.Context) (Records, error)

// PipeDialer returns a Dialer that serves each connection in-process on
// hub over a synchronous pipe. The SSH server uses it so its players share
// lobbies with remote relay clients.
func PipeDialer(ctx context.Context, hub *multiplayer.Hub, logger *log.Logger) Dialer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return func(dctx context.Context) (Records, error) {
		if err := dctx.Err(); err != nil {
			return nil, err
		}
		client, server := net.Pipe()
		go func() {
			if err := Serve(ctx, NewLineConn(server, server), hub, logger); err != nil {
				logger.Debug("pipe session ended", "err", err)
			}
		}()
		return NewLineConn(client, client), nil
	}
}

// TCPDialer returns a Dialer for a relay's line-record port.
func TCPDialer(addr string) Dialer {
	return func(ctx context.Context) (Records, error) {
		c, err := DialTCP(ctx, addr)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}
