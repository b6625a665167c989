package transport

import (
	"context"
	"fmt"
	"strings"

	"github.com/vovakirdan/tui-tetris/internal/multiplayer"
)

// Client is a versus player's session with the relay.
type Client struct {
	rec      Records
	code     string
	role     multiplayer.Role
	peer     string
	paired   bool
	peerGone bool
}

var _ Conn = (*Client)(nil)

// Host asks the relay for a new lobby and returns once the code is known.
// Call WaitPeer before starting the game.
func Host(ctx context.Context, rec Records) (*Client, error) {
	if err := rec.WriteRecord(ctx, control("host")); err != nil {
		return nil, fmt.Errorf("sending host request: %w", err)
	}
	c := &Client{rec: rec, role: multiplayer.RoleHost}
	for c.code == "" {
		if _, err := c.next(ctx); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Join enters an existing lobby and returns once the relay has paired it.
func Join(ctx context.Context, rec Records, code string) (*Client, error) {
	if err := rec.WriteRecord(ctx, control("join", code)); err != nil {
		return nil, fmt.Errorf("sending join request: %w", err)
	}
	c := &Client{rec: rec, code: code, role: multiplayer.RoleJoiner}
	if err := c.WaitPeer(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// WaitPeer blocks until both players are in the lobby.
func (c *Client) WaitPeer(ctx context.Context) error {
	for !c.paired {
		frame, err := c.next(ctx)
		if err != nil {
			return err
		}
		if frame != nil {
			return fmt.Errorf("%w: frame before pairing", ErrProtocol)
		}
	}
	return nil
}

// Send writes one frame.
func (c *Client) Send(ctx context.Context, frame []byte) error {
	if IsControl(frame) {
		return fmt.Errorf("%w: frame starts with %q", ErrProtocol, frame[0])
	}
	return c.rec.WriteRecord(ctx, frame)
}

// Recv returns the next frame, handling control lines in between.
func (c *Client) Recv(ctx context.Context) ([]byte, error) {
	for {
		frame, err := c.next(ctx)
		if err != nil {
			return nil, err
		}
		if frame != nil {
			return frame, nil
		}
	}
}

// next reads one record. Frames are returned; control lines update state
// and return nil.
func (c *Client) next(ctx context.Context) ([]byte, error) {
	if c.peerGone {
		return nil, ErrPeerGone
	}
	rec, err := c.rec.ReadRecord(ctx)
	if err != nil {
		return nil, err
	}
	if !IsControl(rec) {
		return rec, nil
	}

	verb, arg := parseControl(rec)
	switch verb {
	case "code":
		c.code = arg
	case "paired":
		role, name, _ := strings.Cut(arg, " ")
		if role != multiplayer.RoleHost.String() && role != multiplayer.RoleJoiner.String() {
			return nil, fmt.Errorf("%w: paired as %q", ErrProtocol, role)
		}
		c.paired = true
		c.peer = name
	case "left":
		c.peerGone = true
		return nil, fmt.Errorf("%w: %s", ErrPeerGone, arg)
	case "error":
		return nil, fmt.Errorf("%w: %s", ErrRelay, arg)
	}
	return nil, nil
}

// Code returns the lobby code.
func (c *Client) Code() string { return c.code }

// Role returns this player's side.
func (c *Client) Role() multiplayer.Role { return c.role }

// Peer returns the opponent's display name once paired.
func (c *Client) Peer() string { return c.peer }

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.rec.Close()
}
