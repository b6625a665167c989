// tetris is a falling-block puzzle game for the terminal, with shared-board
// versus play over a relay.
//
// Usage:
//
//	tetris                   - Open the menu
//	tetris play              - Start a solo game
//	tetris host              - Host a versus lobby on a relay
//	tetris join <code>       - Join a versus lobby
//	tetris relay             - Run a versus relay
//	tetris serve             - Start SSH server for remote play
//	tetris scores            - Show high scores and recent versus matches
//
// Global flags:
//
//	--config <path> - Read configuration from this YAML file
//	--fps <rate>    - Override the tick rate
//	--seed <value>  - Set RNG seed for reproducible gameplay
//	--db <path>     - Override the database path
//	--log <path>    - Append logs to this file
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig   string
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogPath  string
	flagLogLevel string
	flagPlayer   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tetris",
	Short: "Terminal tetris with shared-board versus play",
	Long: `A falling-block puzzle game for the terminal.

Running tetris without a command opens the menu. Versus games pair two
players through a relay; both play the same board and pass the falling
piece back and forth.

Examples:
  tetris
  tetris play --seed 42
  tetris relay --addr :8080 --tcp :8081
  tetris host --relay ws://localhost:8080/relay
  tetris join K7QX2M
  tetris serve --ssh :2222`,
	SilenceUsage: true,
	RunE:         runMenu,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a tetris.yaml config file")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Tick rate (0 = from config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to the database (empty = from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogPath, "log", "", "Append logs to this file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "name", "", "Player name stored with scores (default $USER)")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(relayCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
}
