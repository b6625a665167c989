package transport

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/tui-tetris/internal/multiplayer"
)

// sessionBuffer is how many events may queue for a slow client before the
// oldest are dropped.
const sessionBuffer = 256

// Serve runs one relay session on rec: it reads the hello line, enters a
// lobby, then pumps frames between the connection and the hub until either
// side goes away. rec is closed on return.
func Serve(ctx context.Context, rec Records, hub *multiplayer.Hub, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	defer rec.Close()

	hello, err := rec.ReadRecord(ctx)
	if err != nil {
		return fmt.Errorf("reading hello: %w", err)
	}

	session := multiplayer.NewChannelSession(multiplayer.NewSessionID(), sessionBuffer)
	defer session.Close()
	logger = logger.With("session", session.ID())

	verb, arg := parseControl(hello)
	switch {
	case !IsControl(hello):
		err = fmt.Errorf("%w: expected hello, got a frame", ErrProtocol)
	case verb == "host":
		_, err = hub.Host(session)
	case verb == "join":
		err = hub.Join(session, arg)
	default:
		err = fmt.Errorf("%w: unknown hello %q", ErrProtocol, verb)
	}
	if err != nil {
		logger.Warn("rejecting session", "hello", verb, "err", err)
		_ = rec.WriteRecord(ctx, control("error", err.Error()))
		return err
	}
	defer hub.Leave(session.ID())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writeEvents(ctx, rec, session)
	})
	g.Go(func() error {
		return readFrames(ctx, rec, hub, session.ID(), logger)
	})
	go func() {
		// Unblock a reader stuck in ReadRecord once the writer is done.
		<-ctx.Done()
		rec.Close()
	}()

	err = g.Wait()
	if errors.Is(err, ErrPeerGone) || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func writeEvents(ctx context.Context, rec Records, session *multiplayer.ChannelSession) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt := <-session.Events():
			var out []byte
			switch e := evt.(type) {
			case multiplayer.LobbyCreatedEvent:
				out = control("code", e.Code)
			case multiplayer.PeerJoinedEvent:
				out = control("paired", e.Role.String(), e.PeerName)
			case multiplayer.FrameEvent:
				out = e.Data
			case multiplayer.PeerLeftEvent:
				_ = rec.WriteRecord(ctx, control("left", e.Reason.String()))
				return ErrPeerGone
			default:
				continue
			}
			if err := rec.WriteRecord(ctx, out); err != nil {
				return err
			}
		}
	}
}

func readFrames(ctx context.Context, rec Records, hub *multiplayer.Hub, id multiplayer.SessionID, logger *log.Logger) error {
	for {
		data, err := rec.ReadRecord(ctx)
		if err != nil {
			return err
		}
		if IsControl(data) {
			logger.Debug("ignoring control line", "line", string(data))
			continue
		}
		if err := hub.Forward(id, data); err != nil {
			logger.Debug("frame dropped", "err", err)
		}
	}
}
