// Package multiplayer pairs two versus players in a lobby and relays their
// sync frames to each other. The hub never decodes a frame beyond its
// ownership byte; it only forwards bytes and keeps per-lobby counters.
package multiplayer

import "github.com/google/uuid"

// SessionID uniquely identifies a connected player.
type SessionID string

// NewSessionID returns a random session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// Role is a player's side of a lobby.
type Role int

const (
	// RoleHost created the lobby and starts as master.
	RoleHost Role = iota

	// RoleJoiner joined with the code and starts as slave.
	RoleJoiner
)

// String returns a human-readable name for the role.
func (r Role) String() string {
	switch r {
	case RoleHost:
		return "host"
	case RoleJoiner:
		return "joiner"
	default:
		return "unknown"
	}
}

// Master reports whether this side owns the first piece.
func (r Role) Master() bool {
	return r == RoleHost
}
