package ws

import (
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"nhooyr.io/websocket"

	"github.com/vovakirdan/tui-tetris/internal/multiplayer"
	"github.com/vovakirdan/tui-tetris/internal/transport"
)

// Config tunes the websocket endpoint.
type Config struct {
	// OriginPatterns lists extra origins allowed to connect from browsers.
	OriginPatterns []string
}

// Server is an HTTP handler that upgrades to websocket and relays the
// connection through a hub.
type Server struct {
	cfg    Config
	hub    *multiplayer.Hub
	logger *log.Logger
}

// NewServer creates a relay endpoint. A nil logger discards output.
func NewServer(cfg Config, hub *multiplayer.Hub, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{cfg: cfg, hub: hub, logger: logger.WithPrefix("ws")}
}

// ServeHTTP upgrades the request and serves one relay session.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.OriginPatterns,
	})
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	s.logger.Debug("client connected", "remote", r.RemoteAddr)
	if err := transport.Serve(r.Context(), newConn(c), s.hub, s.logger); err != nil &&
		websocket.CloseStatus(err) != websocket.StatusNormalClosure {
		s.logger.Debug("session ended", "remote", r.RemoteAddr, "err", err)
	}
}

// Mux returns a handler serving the relay at /relay and a health check at /healthz.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/relay", s)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok\n")
	})
	return mux
}
