package tetris

import (
	"time"

	"github.com/vovakirdan/tetra-arena/internal/config"
	"github.com/vovakirdan/tetra-arena/internal/registry"
)

// Mode identifiers accepted by the coordinator.
const (
	ModeNormal  = "normal"
	ModeDynamic = "dynamic"
)

func init() {
	registry.Register(ModeNormal, func(cfg config.GravityConfig) registry.Mode {
		return normalMode{interval: cfg.NormalInterval}
	})
	registry.Register(ModeDynamic, func(cfg config.GravityConfig) registry.Mode {
		return dynamicMode{curve: config.NewGravityCurve(cfg)}
	})
}

// normalMode runs gravity at a fixed period.
type normalMode struct {
	interval time.Duration
}

func (normalMode) ID() string    { return ModeNormal }
func (normalMode) Title() string { return "Normal" }
func (normalMode) Dynamic() bool { return false }

func (m normalMode) GravityInterval(float64) time.Duration {
	return m.interval
}

// dynamicMode speeds gravity up as the room clears lines.
type dynamicMode struct {
	curve config.GravityCurve
}

func (dynamicMode) ID() string    { return ModeDynamic }
func (dynamicMode) Title() string { return "Dynamic" }
func (dynamicMode) Dynamic() bool { return true }

func (m dynamicMode) GravityInterval(avgLines float64) time.Duration {
	return m.curve.Interval(avgLines)
}
