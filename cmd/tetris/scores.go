package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/storage"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

var (
	flagScoresLimit int
	flagScoresClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show high scores, saved games and recent versus matches",
	Long: `Display the top solo scores, the saved game slots and the most recent
versus matches recorded by a relay using the same database.

Examples:
  tetris scores
  tetris scores --limit 20
  tetris scores --clear`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVarP(&flagScoresLimit, "limit", "n", 10, "Number of entries to show")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete all solo scores")
}

func runScores(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := storage.Open(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	mode := tetris.ModeSolo.String()
	if flagScoresClear {
		if err := store.ClearScores(mode); err != nil {
			return err
		}
		fmt.Println("Scores cleared.")
		return nil
	}

	scores, err := store.TopScores(mode, flagScoresLimit)
	if err != nil {
		return fmt.Errorf("retrieving scores: %w", err)
	}

	fmt.Println("High Scores")
	fmt.Println()
	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'tetris play' to set the first high score!")
	} else {
		fmt.Printf("  %-4s  %-16s  %-10s  %-5s  %-5s  %s\n", "Rank", "Name", "Score", "Lines", "Level", "Date")
		fmt.Printf("  %-4s  %-16s  %-10s  %-5s  %-5s  %s\n", "----", "----", "-----", "-----", "-----", "----")
		for i, e := range scores {
			fmt.Printf("  %-4d  %-16s  %-10d  %-5d  %-5d  %s\n",
				i+1, e.Name, e.Points, e.Lines, e.Level, e.CreatedAt.Format("2006-01-02 15:04"))
		}
		if stats, err := store.ModeStats(mode); err == nil {
			fmt.Println()
			fmt.Printf("Games: %d  Best: %d  Average: %.0f  Lines: %d\n",
				stats.GamesCount, stats.HighScore, stats.AvgScore, stats.TotalLines)
		}
	}

	saves, err := store.Saves()
	if err != nil {
		return fmt.Errorf("listing saves: %w", err)
	}
	if len(saves) > 0 {
		fmt.Println()
		fmt.Println("Saved Games")
		fmt.Println()
		for _, s := range saves {
			fmt.Printf("  %-20s  %dx%d  %-10d  %s\n",
				s.Slot, s.Rows, s.Cols, s.Points, s.UpdatedAt.Format("2006-01-02 15:04"))
		}
	}

	matches, err := store.RecentVersusMatches(flagScoresLimit)
	if err != nil {
		return fmt.Errorf("retrieving versus matches: %w", err)
	}
	if len(matches) > 0 {
		fmt.Println()
		fmt.Println("Recent Versus Matches")
		fmt.Println()
		fmt.Printf("  %-8s  %-8s  %-8s  %-12s  %s\n", "Code", "Frames", "Handoffs", "Ended", "Duration")
		for _, m := range matches {
			fmt.Printf("  %-8s  %-8d  %-8d  %-12s  %s\n",
				m.Code, m.Frames, m.Handoffs, m.EndReason, time.Duration(m.Duration)*time.Second)
		}
	}
	return nil
}
