// arena is a multiplayer falling-block puzzle server.
//
// Usage:
//
//	arena serve              - Run the WebSocket game server (and optional SSH spectator)
//	arena scores             - Show the leaderboard
//	arena modes              - List gravity modes
//	arena config             - Print the effective configuration
//
// Global flags:
//
//	--config <path>  - Config file (default: ~/.arena/arena.yaml, then ./configs/arena.yaml)
//	--db <path>      - Override the database path
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tetra-arena/internal/config"
)

var (
	// Global flags
	flagConfig string
	flagDBPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Tetra Arena - multiplayer falling-block puzzle server",
	Long: `Tetra Arena runs rooms of falling-block puzzle games. Every player of a
room gets the same pieces in the same order, and clearing several lines at
once pushes penalty rows onto the opponents' boards.

Available commands:
  serve    - Start the game server
  scores   - View the leaderboard
  modes    - List gravity modes
  config   - Print the effective configuration

Examples:
  arena serve --http :8080 --ssh :23234
  arena scores --mode dynamic
  arena scores --tui`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to match database (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig loads the configuration and applies global flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	return cfg, nil
}
