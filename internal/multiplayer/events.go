package multiplayer

// SessionEvent represents an event sent from the hub to a session.
type SessionEvent interface {
	sessionEvent()
}

// LobbyCreatedEvent is sent to the host when its lobby exists.
type LobbyCreatedEvent struct {
	Code string
}

func (LobbyCreatedEvent) sessionEvent() {}

// PeerJoinedEvent is sent to both sides when the lobby is complete.
type PeerJoinedEvent struct {
	Code     string
	Role     Role // Which side this session plays
	PeerID   SessionID
	PeerName string
}

func (PeerJoinedEvent) sessionEvent() {}

// FrameEvent carries one sync frame from the peer.
type FrameEvent struct {
	From SessionID
	Data []byte
}

func (FrameEvent) sessionEvent() {}

// PeerLeftEvent is sent when the other side is gone. The session should close.
type PeerLeftEvent struct {
	Code   string
	Reason EndReason
}

func (PeerLeftEvent) sessionEvent() {}

// EndReason describes why a lobby closed.
type EndReason int

const (
	EndReasonHostLeft   EndReason = iota // Host disconnected
	EndReasonJoinerLeft                  // Joiner disconnected
	EndReasonExpired                     // Nobody joined in time
	EndReasonShutdown                    // Hub stopped
)

func (r EndReason) String() string {
	switch r {
	case EndReasonHostLeft:
		return "host left"
	case EndReasonJoinerLeft:
		return "opponent left"
	case EndReasonExpired:
		return "lobby expired"
	case EndReasonShutdown:
		return "relay shutting down"
	default:
		return "unknown"
	}
}
