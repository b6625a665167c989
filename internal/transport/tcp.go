package transport

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-tetris/internal/multiplayer"
)

// ServeTCP accepts line-record connections on ln and relays them through
// the hub until ctx is cancelled.
func ServeTCP(ctx context.Context, ln net.Listener, hub *multiplayer.Hub, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go func() {
			if err := Serve(ctx, NewLineConn(conn, conn), hub, logger); err != nil {
				logger.Debug("tcp session ended", "remote", conn.RemoteAddr(), "err", err)
			}
		}()
	}
}

// DialTCP connects to a relay's line-record port.
func DialTCP(ctx context.Context, addr string) (*LineConn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewLineConn(conn, conn), nil
}
