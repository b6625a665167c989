package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/platform/tui"
)

var (
	flagContinue bool
	flagRelay    string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a solo game",
	Long: `Start a solo game directly, skipping the menu.

The game is saved to the configured slot when you quit and every time a
new piece spawns. Use --continue to resume it.

Examples:
  tetris play
  tetris play --continue
  tetris play --seed 42 --fps 30`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVarP(&flagContinue, "continue", "c", false, "Resume the saved game")
	rootCmd.Flags().StringVar(&flagRelay, "relay", "", "Relay address for versus play (ws://, wss:// or tcp://)")
}

func runPlay(_ *cobra.Command, _ []string) error {
	start := tui.ChoicePlay
	if flagContinue {
		start = tui.ChoiceContinue
	}
	return runApp(start, "", "")
}

// runMenu opens the menu. Versus entries use the configured relay.
func runMenu(_ *cobra.Command, _ []string) error {
	relay := flagRelay
	if relay == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		relay = cfg.Versus.RelayURL
	}
	return runApp(tui.ChoiceNone, relay, "")
}
