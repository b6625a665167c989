package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/platform/tui"
)

var flagVersusRelay string

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Host a versus game",
	Long: `Open a lobby on a relay and wait for a second player.

The lobby code is shown on screen; give it to your opponent. The host
starts with the falling piece.

Examples:
  tetris host
  tetris host --relay wss://tetris.example.com/relay
  tetris host --relay tcp://localhost:8081`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runVersus(tui.ChoiceHost, "")
	},
}

var joinCmd = &cobra.Command{
	Use:   "join [code]",
	Short: "Join a versus game",
	Long: `Join a lobby by its code. Without a code you are asked for one.

Examples:
  tetris join K7QX2M
  tetris join --relay tcp://localhost:8081`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		code := ""
		if len(args) == 1 {
			code = args[0]
		}
		return runVersus(tui.ChoiceJoin, code)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{hostCmd, joinCmd} {
		cmd.Flags().StringVar(&flagVersusRelay, "relay", "", "Relay address (ws://, wss:// or tcp://; default from config)")
	}
}

func runVersus(start tui.MenuChoice, code string) error {
	relay := flagVersusRelay
	if relay == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		relay = cfg.Versus.RelayURL
	}
	return runApp(start, relay, code)
}
