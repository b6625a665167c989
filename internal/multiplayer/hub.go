package multiplayer

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	petname "github.com/dustinkirkland/golang-petname"
)

var (
	ErrAlreadyInLobby = errors.New("multiplayer: session already in a lobby")
	ErrLobbyNotFound  = errors.New("multiplayer: lobby not found")
	ErrLobbyFull      = errors.New("multiplayer: lobby is full")
	ErrOwnLobby       = errors.New("multiplayer: cannot join your own lobby")
	ErrNotPaired      = errors.New("multiplayer: no peer to forward to")
	ErrUnknownSession = errors.New("multiplayer: unknown session")
)

// Lobby is a pair of sessions sharing one board.
type Lobby struct {
	Code      string
	Host      SessionHandle
	Joiner    SessionHandle
	CreatedAt time.Time
	PairedAt  time.Time

	Frames   int // Frames forwarded in either direction
	Handoffs int // Frames whose ownership byte passed the piece
}

// peer returns the other side of the lobby, or nil.
func (l *Lobby) peer(id SessionID) SessionHandle {
	switch {
	case l.Host != nil && l.Host.ID() == id:
		return l.Joiner
	case l.Joiner != nil && l.Joiner.ID() == id:
		return l.Host
	default:
		return nil
	}
}

// HubConfig holds configuration for the hub.
type HubConfig struct {
	LobbyTimeout  time.Duration // How long before an unjoined lobby expires
	CleanupPeriod time.Duration // How often to clean up expired lobbies
}

// DefaultHubConfig returns sensible defaults.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		LobbyTimeout:  10 * time.Minute,
		CleanupPeriod: 30 * time.Second,
	}
}

// ResultSaver persists finished versus sessions.
// It keeps the hub independent of the storage package.
type ResultSaver interface {
	SaveVersusResult(result VersusResult) error
}

// VersusResult summarizes a closed lobby.
type VersusResult struct {
	Code          string
	HostSession   string
	JoinerSession string
	Frames        int
	Handoffs      int
	EndReason     string
	DurationSecs  int
}

// Hub manages lobbies and relays frames between paired sessions.
type Hub struct {
	config      HubConfig
	logger      *log.Logger
	sessions    *SessionRegistry
	resultSaver ResultSaver // Optional, can be nil

	mu           sync.Mutex
	lobbies      map[string]*Lobby    // code -> lobby
	sessionLobby map[SessionID]string // sessionID -> lobby code
	names        map[SessionID]string // sessionID -> display name

	done     chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// NewHub creates a hub. A nil logger discards output.
func NewHub(cfg HubConfig, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Hub{
		config:       cfg,
		logger:       logger.WithPrefix("hub"),
		sessions:     NewSessionRegistry(),
		lobbies:      make(map[string]*Lobby),
		sessionLobby: make(map[SessionID]string),
		names:        make(map[SessionID]string),
		done:         make(chan struct{}),
		now:          time.Now,
	}
}

// SetResultSaver sets the optional result saver.
func (h *Hub) SetResultSaver(saver ResultSaver) {
	h.resultSaver = saver
}

// Start begins expiring unjoined lobbies in the background.
func (h *Hub) Start() {
	go h.cleanupLoop()
}

// Stop closes every lobby and stops background work.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		defer h.mu.Unlock()
		for code, lobby := range h.lobbies {
			h.closeLobby(code, lobby, EndReasonShutdown, nil)
		}
	})
}

// Host registers the session and opens a lobby for it.
func (h *Hub) Host(session SessionHandle) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, inLobby := h.sessionLobby[session.ID()]; inLobby {
		return "", ErrAlreadyInLobby
	}

	code := h.generateUniqueCode()
	h.lobbies[code] = &Lobby{
		Code:      code,
		Host:      session,
		CreatedAt: h.now(),
	}
	h.register(session, code)

	session.Send(LobbyCreatedEvent{Code: code})
	h.logger.Info("lobby created", "code", code, "session", session.ID())
	return code, nil
}

// Join registers the session as the second player of a lobby.
// Both sides receive PeerJoinedEvent.
func (h *Hub) Join(session SessionHandle, code string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, inLobby := h.sessionLobby[session.ID()]; inLobby {
		return ErrAlreadyInLobby
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	lobby, exists := h.lobbies[code]
	if !exists {
		return fmt.Errorf("%w: %q", ErrLobbyNotFound, code)
	}
	if lobby.Joiner != nil {
		return ErrLobbyFull
	}
	if lobby.Host.ID() == session.ID() {
		return ErrOwnLobby
	}

	lobby.Joiner = session
	lobby.PairedAt = h.now()
	h.register(session, code)

	hostID := lobby.Host.ID()
	lobby.Host.Send(PeerJoinedEvent{Code: code, Role: RoleHost, PeerID: session.ID(), PeerName: h.names[session.ID()]})
	session.Send(PeerJoinedEvent{Code: code, Role: RoleJoiner, PeerID: hostID, PeerName: h.names[hostID]})
	h.logger.Info("lobby paired", "code", code, "host", lobby.Host.ID(), "joiner", session.ID())
	return nil
}

// register must be called with the lock held.
func (h *Hub) register(session SessionHandle, code string) {
	h.sessionLobby[session.ID()] = code
	h.names[session.ID()] = petname.Generate(2, "-")
	h.sessions.Register(session)
}

// Name returns the display name given to a session.
func (h *Hub) Name(id SessionID) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.names[id]
}

// Forward relays a frame from one side of a lobby to the other.
func (h *Hub) Forward(from SessionID, frame []byte) error {
	h.mu.Lock()
	code, ok := h.sessionLobby[from]
	if !ok {
		h.mu.Unlock()
		return ErrUnknownSession
	}
	lobby := h.lobbies[code]
	to := lobby.peer(from)
	if to == nil {
		h.mu.Unlock()
		return ErrNotPaired
	}
	lobby.Frames++
	if len(frame) > 0 && frame[0] == 2 {
		lobby.Handoffs++
	}
	h.mu.Unlock()

	data := make([]byte, len(frame))
	copy(data, frame)
	if !to.Send(FrameEvent{From: from, Data: data}) {
		h.logger.Debug("frame not delivered", "code", code, "to", to.ID())
	}
	return nil
}

// Leave removes the session. Its lobby closes and the peer is told why.
func (h *Hub) Leave(id SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	code, ok := h.sessionLobby[id]
	if !ok {
		return
	}
	lobby := h.lobbies[code]
	reason := EndReasonJoinerLeft
	if lobby.Host.ID() == id {
		reason = EndReasonHostLeft
	}
	h.closeLobby(code, lobby, reason, &id)
}

// closeLobby must be called with the lock held. The leaving session, if
// any, is not notified.
func (h *Hub) closeLobby(code string, lobby *Lobby, reason EndReason, leaving *SessionID) {
	for _, s := range []SessionHandle{lobby.Host, lobby.Joiner} {
		if s == nil {
			continue
		}
		if leaving == nil || s.ID() != *leaving {
			s.Send(PeerLeftEvent{Code: code, Reason: reason})
		}
		delete(h.sessionLobby, s.ID())
		delete(h.names, s.ID())
		h.sessions.Unregister(s.ID())
	}
	delete(h.lobbies, code)
	h.logger.Info("lobby closed", "code", code, "reason", reason, "frames", lobby.Frames)

	if h.resultSaver == nil || lobby.Joiner == nil {
		return
	}
	result := VersusResult{
		Code:          code,
		HostSession:   string(lobby.Host.ID()),
		JoinerSession: string(lobby.Joiner.ID()),
		Frames:        lobby.Frames,
		Handoffs:      lobby.Handoffs,
		EndReason:     reason.String(),
		DurationSecs:  int(h.now().Sub(lobby.PairedAt) / time.Second),
	}
	// Best effort save, don't block the hub on the database.
	go func() {
		if err := h.resultSaver.SaveVersusResult(result); err != nil {
			h.logger.Warn("saving versus result", "code", code, "err", err)
		}
	}()
}

func (h *Hub) cleanupLoop() {
	ticker := time.NewTicker(h.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.cleanupExpiredLobbies()
		case <-h.done:
			return
		}
	}
}

func (h *Hub) cleanupExpiredLobbies() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	for code, lobby := range h.lobbies {
		// Only expire lobbies without joiners
		if lobby.Joiner == nil && now.Sub(lobby.CreatedAt) > h.config.LobbyTimeout {
			h.closeLobby(code, lobby, EndReasonExpired, nil)
		}
	}
}

func (h *Hub) generateUniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := h.lobbies[code]; !exists {
			return code
		}
	}
}

// generateJoinCode creates a 6-character uppercase alphanumeric code.
func generateJoinCode() string {
	b := make([]byte, 4) // 4 bytes = 32 bits, base32 encodes to 8 chars, we take 6
	_, err := rand.Read(b)
	if err != nil {
		// Fallback to timestamp-based
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	// Use base32 encoding (A-Z, 2-7), take first 6 chars
	return base32.StdEncoding.EncodeToString(b)[:6]
}

// GetLobby returns a copy of a lobby's state by code (for testing/debug).
func (h *Hub) GetLobby(code string) (Lobby, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.lobbies[strings.ToUpper(code)]
	if !ok {
		return Lobby{}, false
	}
	return *l, true
}

// LobbyCount returns the number of open lobbies.
func (h *Hub) LobbyCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.lobbies)
}

// SessionCount returns the number of sessions in lobbies.
func (h *Hub) SessionCount() int {
	return h.sessions.Count()
}
