package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start SSH server for remote play",
	Long: `Start an SSH server that runs the game for each connecting user.

Each SSH user gets their own save slot. Versus lobbies opened over SSH are
relayed in process, so two SSH players can play each other.

Examples:
  tetris serve
  tetris serve --ssh :2222 --host-key ./host_key`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (default from config, auto-generated if missing)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	sshCfg := tui.DefaultSSHServerConfig()
	sshCfg.Address = cfg.Server.Addr
	sshCfg.HostKeyPath = cfg.Server.HostKey
	if flagSSHAddr != "" {
		sshCfg.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		sshCfg.HostKeyPath = flagHostKey
	}
	sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	sshCfg.Game = runtimeConfig(cfg)
	// Zero gives every session its own seed.
	sshCfg.Game.Seed = flagSeed

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

	server, err := tui.NewSSHServer(sshCfg, store, hub, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Printf("Starting tetris SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.ListenAndServe(ctx)
}
