// Package registry provides a global registry for game mode factories.
// Modes register themselves in init() functions, allowing the coordinator
// to resolve a mode by name without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vovakirdan/tetra-arena/internal/config"
)

// Mode decides how fast gravity runs in a room.
type Mode interface {
	// ID returns a unique identifier for this mode (e.g., "normal", "dynamic").
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// GravityInterval returns the gravity period given the average number of
	// lines cleared per player.
	GravityInterval(avgLines float64) time.Duration

	// Dynamic reports whether the period must be recomputed after every gravity tick.
	Dynamic() bool
}

// ModeInfo contains metadata about a registered mode.
type ModeInfo struct {
	ID    string
	Title string
}

// Factory creates a mode from the gravity settings.
type Factory func(cfg config.GravityConfig) Mode

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a mode factory to the registry.
// Typically called from an init() function.
// Panics if a mode with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: mode %q already registered", id))
	}

	factories[id] = f
	titles[id] = f(config.Default().Game.Gravity).Title()
}

// List returns information about all registered modes, sorted by ID.
func List() []ModeInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]ModeInfo, 0, len(factories))
	for id := range factories {
		result = append(result, ModeInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a mode by its ID.
// Returns an error if the mode ID is not registered.
func Create(id string, cfg config.GravityConfig) (Mode, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown mode %q", id)
	}

	return f(cfg), nil
}

// Exists checks if a mode with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
