package config

import (
	"math"
	"time"

	"github.com/vovakirdan/tetra-arena/internal/core"
)

// GravityCurve calculates the gravity period from the average number of
// lines cleared by the players of a room.
type GravityCurve struct {
	base  time.Duration
	step  time.Duration
	floor time.Duration
}

// NewGravityCurve creates a curve from the dynamic gravity settings.
func NewGravityCurve(cfg GravityConfig) GravityCurve {
	return GravityCurve{
		base:  cfg.DynamicBase,
		step:  cfg.DynamicStep,
		floor: cfg.DynamicFloor,
	}
}

// Interval returns base - step*avgLines, never below the floor.
func (c GravityCurve) Interval(avgLines float64) time.Duration {
	avgLines = math.Max(0, avgLines)
	d := c.base - time.Duration(avgLines*float64(c.step))
	return core.ClampDuration(d, c.floor, max(c.base, c.floor))
}

// Floor returns the fastest period the curve can produce.
func (c GravityCurve) Floor() time.Duration {
	return c.floor
}
