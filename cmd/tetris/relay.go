package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/multiplayer"
	"github.com/vovakirdan/tui-tetris/internal/storage"
	"github.com/vovakirdan/tui-tetris/internal/transport"
	"github.com/vovakirdan/tui-tetris/internal/transport/ws"
)

var (
	flagRelayAddr    string
	flagRelayTCPAddr string
	flagOrigins      []string
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run a versus relay",
	Long: `Run the relay that pairs versus players and forwards their frames.

The relay serves websockets on /relay and, with --tcp, newline-delimited
records on a plain TCP port. Finished matches are recorded in the
database.

Examples:
  tetris relay
  tetris relay --addr :9000 --tcp :9001`,
	Args: cobra.NoArgs,
	RunE: runRelay,
}

func init() {
	relayCmd.Flags().StringVar(&flagRelayAddr, "addr", "", "Websocket listen address (default from config)")
	relayCmd.Flags().StringVar(&flagRelayTCPAddr, "tcp", "", "TCP line-record listen address (default from config, empty disables)")
	relayCmd.Flags().StringSliceVar(&flagOrigins, "origin", nil, "Allowed browser origin patterns")
}

// newHub builds the relay hub shared by every transport of a process.
func newHub(cfg config.TetrisConfig, store *storage.Store, logger *log.Logger) (*multiplayer.Hub, error) {
	ttl, err := cfg.LobbyTTL()
	if err != nil {
		return nil, err
	}
	hubCfg := multiplayer.DefaultHubConfig()
	hubCfg.LobbyTimeout = ttl
	hub := multiplayer.NewHub(hubCfg, logger)
	if store != nil {
		hub.SetResultSaver(store)
	}
	return hub, nil
}

func runRelay(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	addr := cfg.Versus.ListenAddr
	if flagRelayAddr != "" {
		addr = flagRelayAddr
	}
	tcpAddr := cfg.Versus.TCPAddr
	if flagRelayTCPAddr != "" {
		tcpAddr = flagRelayTCPAddr
	}

	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}
	hub, err := newHub(cfg, store, logger)
	if err != nil {
		return err
	}
	hub.Start()
	defer hub.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           ws.NewServer(ws.Config{OriginPatterns: flagOrigins}, hub, logger).Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		logger.Info("relay listening", "addr", addr, "path", "/relay")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if tcpAddr != "" {
		ln, err := net.Listen("tcp", tcpAddr)
		if err != nil {
			stop()
			_ = g.Wait()
			return err
		}
		g.Go(func() error {
			logger.Info("relay listening", "tcp", ln.Addr().String())
			return transport.ServeTCP(ctx, ln, hub, logger)
		})
	}

	err = g.Wait()
	logger.Info("relay stopped")
	return err
}
