// Package tui is the terminal side of the arena: a read-only spectator
// served over SSH and the leaderboard table.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RefreshInterval is how often the room list is re-read.
const RefreshInterval = time.Second

// refreshMsg asks the spectator to reload the room list.
type refreshMsg time.Time

func refreshCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}
