package tetris

import (
	"testing"
	"time"

	"github.com/vovakirdan/tetra-arena/internal/config"
	"github.com/vovakirdan/tetra-arena/internal/registry"
)

func TestModesRegistered(t *testing.T) {
	for _, id := range []string{ModeNormal, ModeDynamic} {
		if !registry.Exists(id) {
			t.Errorf("mode %q not registered", id)
		}
	}
}

func TestNormalMode(t *testing.T) {
	m, err := registry.Create(ModeNormal, config.Default().Game.Gravity)
	if err != nil {
		t.Fatalf("Create(normal) failed: %v", err)
	}
	if m.Dynamic() {
		t.Error("normal mode should not be dynamic")
	}
	for _, avg := range []float64{0, 5, 1000} {
		if got := m.GravityInterval(avg); got != 500*time.Millisecond {
			t.Errorf("GravityInterval(%v) = %v, expected 500ms", avg, got)
		}
	}
}

func TestDynamicMode(t *testing.T) {
	m, err := registry.Create(ModeDynamic, config.Default().Game.Gravity)
	if err != nil {
		t.Fatalf("Create(dynamic) failed: %v", err)
	}
	if !m.Dynamic() {
		t.Error("dynamic mode should be dynamic")
	}

	tests := []struct {
		avg      float64
		expected time.Duration
	}{
		{0, 500 * time.Millisecond},
		{4, 400 * time.Millisecond},
		{16, 100 * time.Millisecond},
		{100, 100 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := m.GravityInterval(tt.avg); got != tt.expected {
			t.Errorf("GravityInterval(%v) = %v, expected %v", tt.avg, got, tt.expected)
		}
	}
}
