package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/multiplayer"
	"github.com/vovakirdan/tui-tetris/internal/storage"
	"github.com/vovakirdan/tui-tetris/internal/transport"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.tetris/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Game is the board geometry and timing every session plays with.
	Game core.RuntimeConfig
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		Game:        core.DefaultConfig(),
	}
}

// SSHServer serves the game over SSH with Wish. Every session shares one
// store and one relay hub, so SSH players can pair with each other and with
// remote relay clients of the same hub.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	hub    *multiplayer.Hub
	dial   transport.Dialer
	cancel context.CancelFunc
	logger *log.Logger
}

// NewSSHServer creates a new SSH server. store and hub may be nil: without a
// store nothing is saved, without a hub the versus entries are hidden.
func NewSSHServer(cfg SSHServerConfig, store *storage.Store, hub *multiplayer.Hub, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ctx, cancel := context.WithCancel(context.Background())
	srv := &SSHServer{
		config: cfg,
		store:  store,
		hub:    hub,
		cancel: cancel,
		logger: logger.WithPrefix("ssh"),
	}
	if hub != nil {
		srv.dial = transport.PipeDialer(ctx, hub, logger)
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			cancel()
			return nil, fmt.Errorf("cannot get home directory: %w", err)
		}
		hostKeyPath = filepath.Join(home, ".tetris", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		cancel()
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}
	srv.server = server
	return srv, nil
}

// teaHandler creates the session flow for each SSH connection.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		wish.Fatalln(sess, "tetris needs a terminal: connect with ssh -t")
		return nil, nil
	}

	cfg := s.config.Game
	cfg.ScreenW = pty.Window.Width
	cfg.ScreenH = pty.Window.Height
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	model := NewAppModel(AppOptions{
		Config:   cfg,
		Store:    s.store,
		SaveSlot: "ssh:" + sess.User(),
		Player:   sess.User(),
		Dial:     s.dial,
		Logger:   s.logger.With("user", sess.User()),
	})
	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		start := time.Now()
		s.logger.Info("session started", "user", sess.User(), "remote", sess.RemoteAddr().String())
		next(sess)
		s.logger.Info("session ended", "user", sess.User(), "remote", sess.RemoteAddr().String(),
			"duration", time.Since(start).Round(time.Second))
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.cancel()
		return err
	case <-ctx.Done():
	}
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
