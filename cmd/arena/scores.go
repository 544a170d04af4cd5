package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tetra-arena/internal/platform/tui"
	"github.com/vovakirdan/tetra-arena/internal/registry"
	"github.com/vovakirdan/tetra-arena/internal/storage"
)

var (
	flagScoresMode  string
	flagScoresLimit int
	flagScoresTUI   bool
	flagScoresName  string
	flagScoresAll   bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the leaderboard",
	Long: `Display the best final scores of finished matches.

Examples:
  arena scores
  arena scores --mode dynamic --limit 20
  arena scores --player alice
  arena scores --players
  arena scores --tui`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().StringVar(&flagScoresMode, "mode", "", "Only show scores of this mode")
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of rows to show")
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Show an interactive table")
	scoresCmd.Flags().StringVar(&flagScoresName, "player", "", "Show one player's history and totals")
	scoresCmd.Flags().BoolVar(&flagScoresAll, "players", false, "Show totals for every player")
}

func runScores(_ *cobra.Command, _ []string) error {
	if flagScoresMode != "" && !registry.Exists(flagScoresMode) {
		return fmt.Errorf("unknown mode %q, run 'arena modes' to list them", flagScoresMode)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening match database: %w", err)
	}
	defer store.Close()

	if flagScoresTUI {
		width, height := 80, 24
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width, height = w, h
		}
		return tui.RunScoreboard(store, width, height)
	}

	if flagScoresName != "" {
		return printPlayer(store, flagScoresName)
	}
	if flagScoresAll {
		return printAllPlayers(store)
	}

	scores, err := store.TopScores(flagScoresMode, flagScoresLimit)
	if err != nil {
		return fmt.Errorf("retrieving scores: %w", err)
	}

	title := "all modes"
	if flagScoresMode != "" {
		title = flagScoresMode
	}
	fmt.Printf("High Scores - %s\n", title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No matches recorded yet.")
		return nil
	}

	fmt.Printf("  %-4s  %-16s  %-8s  %-8s  %-5s  %s\n", "Rank", "Player", "Mode", "Score", "Lines", "Date")
	fmt.Printf("  %-4s  %-16s  %-8s  %-8s  %-5s  %s\n", "----", "------", "----", "-----", "-----", "----")
	for i, e := range scores {
		fmt.Printf("  %-4d  %-16s  %-8s  %-8d  %-5d  %s\n",
			i+1, e.Name, e.Mode, e.Score, e.Lines, e.CreatedAt.Format("2006-01-02 15:04"))
	}

	if best, err := store.HighScore(flagScoresMode); err == nil {
		fmt.Println()
		fmt.Printf("Best: %d\n", best)
	}
	return nil
}

func printPlayer(store *storage.Store, name string) error {
	stats, err := store.GetPlayerStats(name)
	if err != nil {
		return fmt.Errorf("retrieving stats: %w", err)
	}
	if stats.Matches == 0 {
		fmt.Printf("No matches recorded for %s.\n", name)
		return nil
	}

	fmt.Printf("%s: %d matches, %d losses, best %d, average %.0f, %d lines total\n",
		stats.Name, stats.Matches, stats.Losses, stats.HighScore, stats.AvgScore, stats.TotalLines)
	fmt.Println()

	history, err := store.PlayerHistory(name, flagScoresLimit)
	if err != nil {
		return fmt.Errorf("retrieving history: %w", err)
	}
	for _, e := range history {
		fmt.Printf("  %s  %-8s  %-8d  %d lines\n", e.CreatedAt.Format("2006-01-02 15:04"), e.Mode, e.Score, e.Lines)
	}
	return nil
}

func printAllPlayers(store *storage.Store) error {
	all, err := store.GetAllPlayerStats()
	if err != nil {
		return fmt.Errorf("retrieving stats: %w", err)
	}
	if len(all) == 0 {
		fmt.Println("No matches recorded yet.")
		return nil
	}

	fmt.Printf("  %-16s  %-7s  %-6s  %-8s  %-6s  %s\n", "Player", "Matches", "Losses", "Best", "Lines", "Last played")
	fmt.Printf("  %-16s  %-7s  %-6s  %-8s  %-6s  %s\n", "------", "-------", "------", "----", "-----", "-----------")
	for _, ps := range all {
		fmt.Printf("  %-16s  %-7d  %-6d  %-8d  %-6d  %s\n",
			ps.Name, ps.Matches, ps.Losses, ps.HighScore, ps.TotalLines, ps.LastPlayed.Format("2006-01-02 15:04"))
	}
	return nil
}
