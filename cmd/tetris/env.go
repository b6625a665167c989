package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/platform/tui"
	"github.com/vovakirdan/tui-tetris/internal/storage"
	"github.com/vovakirdan/tui-tetris/internal/transport"
	"github.com/vovakirdan/tui-tetris/internal/transport/ws"
)

// loadConfig reads the YAML config and applies the global flag overrides.
func loadConfig() (config.TetrisConfig, error) {
	cfg, err := config.LoadTetris(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagFPS > 0 {
		cfg.Timing.TickRate = flagFPS
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	return cfg, cfg.Validate()
}

// runtimeConfig turns the file config into what a game session needs.
func runtimeConfig(cfg config.TetrisConfig) core.RuntimeConfig {
	rc := core.DefaultConfig()
	rc.TickRate = cfg.Timing.TickRate
	rc.AnimateClears = cfg.Timing.AnimateClears
	rc.BoardRows = cfg.Board.Rows
	rc.BoardCols = cfg.Board.Cols
	rc.Seed = flagSeed
	if rc.Seed == 0 {
		rc.Seed = time.Now().UnixNano()
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		rc.ScreenW = w
		rc.ScreenH = h
	}
	return rc
}

// newLogger builds the process logger. Interactive commands pass
// interactive=true so nothing is written over the game screen unless --log
// names a file.
func newLogger(interactive bool) (*log.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closer := func() {}
	switch {
	case flagLogPath != "":
		f, err := os.OpenFile(flagLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closer = func() { f.Close() }
	case interactive:
		w = io.Discard
	}

	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("invalid --log-level %q", flagLogLevel)
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
		Prefix:          "tetris",
	})
	return logger, closer, nil
}

// openStore opens the database. Interactive play still works without one.
func openStore(cfg config.TetrisConfig, logger *log.Logger) *storage.Store {
	store, err := storage.Open(cfg.DBPath())
	if err != nil {
		logger.Warn("scores and saves disabled", "db", cfg.DBPath(), "err", err)
		return nil
	}
	return store
}

func playerName() string {
	if flagPlayer != "" {
		return flagPlayer
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "player"
}

var errRelayScheme = errors.New("relay address must be ws://, wss:// or tcp://")

// dialerFor picks the relay transport from the address scheme.
func dialerFor(relay string) (transport.Dialer, error) {
	u, err := url.Parse(relay)
	if err != nil {
		return nil, fmt.Errorf("relay address %q: %w", relay, err)
	}
	switch u.Scheme {
	case "ws", "wss":
		return ws.Dialer(relay), nil
	case "tcp":
		if u.Host == "" {
			return nil, fmt.Errorf("relay address %q has no host", relay)
		}
		return transport.TCPDialer(u.Host), nil
	default:
		return nil, fmt.Errorf("%q: %w", relay, errRelayScheme)
	}
}

// runApp starts the interactive session flow at the given screen.
// relay may be empty to hide versus play.
func runApp(start tui.MenuChoice, relay, joinCode string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(true)
	if err != nil {
		return err
	}
	defer closeLog()

	opts := tui.AppOptions{
		Config:   runtimeConfig(cfg),
		SaveSlot: cfg.Storage.SaveSlot,
		Player:   playerName(),
		Logger:   logger,
		Start:    start,
		JoinCode: joinCode,
	}
	if relay != "" {
		dial, err := dialerFor(relay)
		if err != nil {
			return err
		}
		opts.Dial = dial
	}
	if store := openStore(cfg, logger); store != nil {
		defer store.Close()
		opts.Store = store
	}

	logger.Info("session starting", "start", start, "relay", relay, "seed", opts.Config.Seed)
	return tui.RunApp(opts)
}
