package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tetra-arena/internal/games/tetris"
	"github.com/vovakirdan/tetra-arena/internal/registry"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List gravity modes",
	Long:  `Shows every registered gravity mode with its interval under the current configuration.`,
	RunE:  runModes,
}

func runModes(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	modes := registry.List()
	if len(modes) == 0 {
		fmt.Println("No modes available.")
		return nil
	}

	maxIDLen := 2 // "ID" header
	for _, m := range modes {
		maxIDLen = max(maxIDLen, len(m.ID))
	}

	fmt.Printf("  %-*s  %-20s  %s\n", maxIDLen, "ID", "Title", "Gravity")
	fmt.Printf("  %-*s  %-20s  %s\n", maxIDLen, "--", "-----", "-------")
	for _, info := range modes {
		mode, err := registry.Create(info.ID, cfg.Game.Gravity)
		if err != nil {
			return err
		}
		gravity := mode.GravityInterval(0).String()
		if mode.Dynamic() {
			gravity = fmt.Sprintf("%s, %s faster per average line, floor %s",
				gravity, cfg.Game.Gravity.DynamicStep, cfg.Game.Gravity.DynamicFloor)
		}
		fmt.Printf("  %-*s  %-20s  %s\n", maxIDLen, info.ID, info.Title, gravity)
	}

	fmt.Println()
	fmt.Printf("Rooms that ask for an unknown mode play %q.\n", tetris.ModeNormal)
	return nil
}
