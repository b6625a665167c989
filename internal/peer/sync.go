package peer

import (
	"bytes"
	"io"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// Sync keeps an engine's board mirrored with a remote peer.
//
// It is driven from the same goroutine as the engine: Outgoing after each
// tick, Apply for each received frame. Frames are last-writer-wins state;
// there is no acknowledgment or retry.
type Sync struct {
	engine *tetris.Engine
	logger *log.Logger

	last    []byte // cell bytes of the last frame sent or applied
	sent    int
	applied int
	dropped int
}

// NewSync wraps an engine. A nil logger discards output.
func NewSync(e *tetris.Engine, logger *log.Logger) *Sync {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Sync{
		engine: e,
		logger: logger.WithPrefix("sync"),
	}
}

// Outgoing returns the frame to send after the latest tick, if any.
//
// Only the master mirrors its board, and only when it changed. A pending
// handoff is always sent, with ownership byte 2, once the engine releases it.
func (s *Sync) Outgoing() ([]byte, bool) {
	handoff := s.engine.TakeHandoff()
	if !handoff && !s.engine.IsMaster() {
		return nil, false
	}

	frame := EncodeFrame(s.engine.Board(), handoff)
	if !handoff && bytes.Equal(frame[1:], s.last) {
		return nil, false
	}
	s.last = append(s.last[:0], frame[1:]...)
	s.sent++
	if handoff {
		s.logger.Debug("handing off piece", "frame", s.sent)
	}
	return frame, true
}

// Apply installs a received frame. Malformed frames are logged and dropped
// without touching the engine; the error is returned for the caller's metrics.
func (s *Sync) Apply(frame []byte) error {
	rows, cols := s.engine.Dims()
	f, err := DecodeFrame(frame, rows, cols)
	if err != nil {
		s.dropped++
		s.logger.Warn("dropping frame", "err", err, "len", len(frame), "dropped", s.dropped)
		return err
	}
	if err := f.Board.Validate(); err != nil {
		s.logger.Warn("peer board breaks invariant", "err", err)
	}
	if s.engine.IsMaster() && !f.Handoff {
		s.logger.Debug("frame received while master", "applied", s.applied)
	}

	if err := s.engine.ReplaceBoard(f.Board); err != nil {
		s.dropped++
		return err
	}
	s.last = append(s.last[:0], EncodeFrame(f.Board, false)[1:]...)
	s.applied++
	if f.Handoff {
		s.engine.SetMaster(true)
		s.logger.Debug("took ownership")
	}
	return nil
}

// Stats returns how many frames were sent, applied and dropped.
func (s *Sync) Stats() (sent, applied, dropped int) {
	return s.sent, s.applied, s.dropped
}
