package multiplayer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savedResults struct {
	ch chan VersusResult
}

func (s savedResults) SaveVersusResult(r VersusResult) error {
	s.ch <- r
	return nil
}

func newSession() *ChannelSession {
	return NewChannelSession(NewSessionID(), 8)
}

// next returns the next queued event or fails.
func next(t *testing.T, s *ChannelSession) SessionEvent {
	t.Helper()
	select {
	case evt := <-s.Events():
		return evt
	case <-time.After(time.Second):
		t.Fatal("no event")
		return nil
	}
}

func pair(t *testing.T, h *Hub) (host, joiner *ChannelSession, code string) {
	t.Helper()
	host, joiner = newSession(), newSession()
	code, err := h.Host(host)
	require.NoError(t, err)
	require.IsType(t, LobbyCreatedEvent{}, next(t, host))
	require.NoError(t, h.Join(joiner, code))
	require.IsType(t, PeerJoinedEvent{}, next(t, host))
	require.IsType(t, PeerJoinedEvent{}, next(t, joiner))
	return host, joiner, code
}

func TestHostCreatesLobby(t *testing.T) {
	h := NewHub(DefaultHubConfig(), nil)
	host := newSession()

	code, err := h.Host(host)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Equal(t, LobbyCreatedEvent{Code: code}, next(t, host))
	assert.Equal(t, 1, h.LobbyCount())

	_, err = h.Host(host)
	assert.ErrorIs(t, err, ErrAlreadyInLobby)
}

func TestJoinPairsRoles(t *testing.T) {
	h := NewHub(DefaultHubConfig(), nil)
	host, joiner := newSession(), newSession()
	code, err := h.Host(host)
	require.NoError(t, err)
	next(t, host)

	// Codes are case-insensitive.
	require.NoError(t, h.Join(joiner, " "+code+" "))

	hostEvt := next(t, host).(PeerJoinedEvent)
	joinEvt := next(t, joiner).(PeerJoinedEvent)
	assert.Equal(t, RoleHost, hostEvt.Role)
	assert.True(t, hostEvt.Role.Master())
	assert.Equal(t, joiner.ID(), hostEvt.PeerID)
	assert.Equal(t, h.Name(joiner.ID()), hostEvt.PeerName)
	assert.NotEmpty(t, joinEvt.PeerName)
	assert.Equal(t, RoleJoiner, joinEvt.Role)
	assert.False(t, joinEvt.Role.Master())
	assert.Equal(t, 2, h.SessionCount())
}

func TestJoinErrors(t *testing.T) {
	h := NewHub(DefaultHubConfig(), nil)
	_, joiner, code := pair(t, h)

	assert.ErrorIs(t, h.Join(newSession(), "NOPE42"), ErrLobbyNotFound)
	assert.ErrorIs(t, h.Join(newSession(), code), ErrLobbyFull)
	assert.ErrorIs(t, h.Join(joiner, code), ErrAlreadyInLobby)

	solo := newSession()
	soloCode, err := h.Host(solo)
	require.NoError(t, err)
	h.mu.Lock()
	delete(h.sessionLobby, solo.ID()) // pretend the host lost track of its lobby
	h.mu.Unlock()
	assert.ErrorIs(t, h.Join(solo, soloCode), ErrOwnLobby)
}

func TestForwardRelaysBothWays(t *testing.T) {
	h := NewHub(DefaultHubConfig(), nil)
	host, joiner, code := pair(t, h)

	frame := []byte{1, 1, 1, 30}
	require.NoError(t, h.Forward(host.ID(), frame))
	frame[3] = 99 // the hub must have copied the bytes

	evt := next(t, joiner).(FrameEvent)
	assert.Equal(t, []byte{1, 1, 1, 30}, evt.Data)
	assert.Equal(t, host.ID(), evt.From)

	require.NoError(t, h.Forward(joiner.ID(), []byte{2, 1, 1, 1}))
	assert.Equal(t, []byte{2, 1, 1, 1}, next(t, host).(FrameEvent).Data)

	lobby, ok := h.GetLobby(code)
	require.True(t, ok)
	assert.Equal(t, 2, lobby.Frames)
	assert.Equal(t, 1, lobby.Handoffs)
}

func TestForwardErrors(t *testing.T) {
	h := NewHub(DefaultHubConfig(), nil)
	assert.ErrorIs(t, h.Forward("ghost", []byte{1}), ErrUnknownSession)

	host := newSession()
	_, err := h.Host(host)
	require.NoError(t, err)
	assert.ErrorIs(t, h.Forward(host.ID(), []byte{1}), ErrNotPaired)
}

func TestLeaveNotifiesPeerAndSavesResult(t *testing.T) {
	h := NewHub(DefaultHubConfig(), nil)
	results := savedResults{ch: make(chan VersusResult, 1)}
	h.SetResultSaver(results)

	host, joiner, code := pair(t, h)
	require.NoError(t, h.Forward(host.ID(), []byte{2}))
	next(t, joiner)

	h.Leave(joiner.ID())
	assert.Equal(t, PeerLeftEvent{Code: code, Reason: EndReasonJoinerLeft}, next(t, host))
	assert.Equal(t, 0, h.LobbyCount())
	assert.Equal(t, 0, h.SessionCount())

	select {
	case r := <-results.ch:
		assert.Equal(t, code, r.Code)
		assert.Equal(t, string(host.ID()), r.HostSession)
		assert.Equal(t, 1, r.Frames)
		assert.Equal(t, 1, r.Handoffs)
		assert.Equal(t, "opponent left", r.EndReason)
	case <-time.After(time.Second):
		t.Fatal("result not saved")
	}

	// Leaving twice is harmless.
	h.Leave(joiner.ID())
	h.Leave(host.ID())
}

func TestExpiredLobbyCloses(t *testing.T) {
	cfg := DefaultHubConfig()
	cfg.LobbyTimeout = time.Minute
	h := NewHub(cfg, nil)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return clock }

	host := newSession()
	code, err := h.Host(host)
	require.NoError(t, err)
	next(t, host)
	_, _, pairedCode := pair(t, h)

	clock = clock.Add(2 * time.Minute)
	h.cleanupExpiredLobbies()

	assert.Equal(t, PeerLeftEvent{Code: code, Reason: EndReasonExpired}, next(t, host))
	_, ok := h.GetLobby(code)
	assert.False(t, ok)
	_, ok = h.GetLobby(pairedCode)
	assert.True(t, ok, "paired lobbies never expire")
}

func TestStopClosesLobbies(t *testing.T) {
	h := NewHub(DefaultHubConfig(), nil)
	h.Start()
	host, joiner, _ := pair(t, h)

	h.Stop()
	h.Stop()
	assert.IsType(t, PeerLeftEvent{}, next(t, host))
	assert.IsType(t, PeerLeftEvent{}, next(t, joiner))
	assert.Equal(t, 0, h.LobbyCount())
}

func TestChannelSessionDropsOldest(t *testing.T) {
	s := NewChannelSession("s", 2)
	for i := range 3 {
		assert.True(t, s.Send(FrameEvent{Data: []byte{byte(i)}}))
	}
	assert.Equal(t, []byte{1}, next(t, s).(FrameEvent).Data)
	assert.Equal(t, []byte{2}, next(t, s).(FrameEvent).Data)

	s.Close()
	s.Close()
	assert.False(t, s.Send(FrameEvent{}))
}

func TestGenerateJoinCode(t *testing.T) {
	for range 100 {
		code := generateJoinCode()
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, (r >= 'A' && r <= 'Z') || (r >= '2' && r <= '7'), "unexpected rune %q in %s", r, code)
		}
	}
}
