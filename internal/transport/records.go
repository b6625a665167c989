// Package transport carries relay records between a versus player and the
// relay hub. A record is either a sync frame (first byte below 0x20) or a
// control line of lowercase words:
//
//	host             client asks for a new lobby
//	join CODE        client joins an existing lobby
//	code CODE        relay: lobby created
//	paired ROLE NAME relay: both players present; ROLE is host or joiner, NAME the peer
//	left REASON      relay: the peer is gone
//	error MESSAGE    relay: the request failed
//
// The same records flow over websocket messages and over newline-delimited
// byte streams.
package transport

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrPeerGone is returned by Recv once the relay reports the peer left.
	ErrPeerGone = errors.New("transport: peer left")

	// ErrRelay wraps an error line sent by the relay.
	ErrRelay = errors.New("transport: relay error")

	// ErrProtocol reports a record that does not fit the handshake.
	ErrProtocol = errors.New("transport: protocol violation")

	// ErrRecordTooLarge reports a record longer than MaxRecordSize.
	ErrRecordTooLarge = errors.New("transport: record too large")
)

// MaxRecordSize bounds a single record. It fits a 255x255 board frame.
const MaxRecordSize = 1 << 16

// Records is a bidirectional stream of discrete records.
type Records interface {
	ReadRecord(ctx context.Context) ([]byte, error)
	WriteRecord(ctx context.Context, rec []byte) error
	Close() error
}

// Conn is the frame-level view a versus game needs from its link to the peer.
type Conn interface {
	Send(ctx context.Context, frame []byte) error
	Recv(ctx context.Context) ([]byte, error)
	Close() error
}

// IsControl reports whether a record is a control line rather than a frame.
func IsControl(rec []byte) bool {
	return len(rec) > 0 && rec[0] >= 'a' && rec[0] <= 'z'
}

func control(words ...string) []byte {
	return []byte(strings.Join(words, " "))
}

// parseControl splits a control line into its verb and the rest.
func parseControl(rec []byte) (verb, arg string) {
	verb, arg, _ = strings.Cut(string(rec), " ")
	return verb, arg
}
