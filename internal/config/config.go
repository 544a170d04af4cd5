// Package config provides YAML-based server configuration loading for the
// arena, with embedded defaults.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the full arena configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Game    GameConfig    `yaml:"game"`
}

// ServerConfig configures the network listeners.
type ServerConfig struct {
	HTTPAddr    string        `yaml:"http_addr"`
	SSHAddr     string        `yaml:"ssh_addr"` // Empty disables the SSH spectator
	HostKeyPath string        `yaml:"host_key_path"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	ReadLimit   int64         `yaml:"read_limit"`  // Max inbound WebSocket message size
	SendBuffer  int           `yaml:"send_buffer"` // Outbound frames queued per connection
}

// StorageConfig configures match persistence.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// LoggingConfig configures the logger and its optional rotating file sink.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// GameConfig contains simulation timing and rule parameters.
type GameConfig struct {
	InputTick    time.Duration  `yaml:"input_tick"`
	LobbyTimeout time.Duration  `yaml:"lobby_timeout"`
	Gravity      GravityConfig  `yaml:"gravity"`
	Lock         LockConfig     `yaml:"lock"`
	Sequence     SequenceConfig `yaml:"sequence"`
}

// GravityConfig defines gravity periods for each mode.
type GravityConfig struct {
	NormalInterval time.Duration `yaml:"normal_interval"`
	DynamicBase    time.Duration `yaml:"dynamic_base"`
	DynamicStep    time.Duration `yaml:"dynamic_step"`  // Subtracted per average line cleared
	DynamicFloor   time.Duration `yaml:"dynamic_floor"` // Fastest allowed gravity period
}

// LockConfig defines lock-delay behavior.
type LockConfig struct {
	DelayTicks         int `yaml:"delay_ticks"`
	MaxMoveResets      int `yaml:"max_move_resets"`
	ResetLockThreshold int `yaml:"reset_lock_threshold"`
}

// SequenceConfig defines the shared piece sequence sizes.
type SequenceConfig struct {
	Initial         int `yaml:"initial"`
	RefillThreshold int `yaml:"refill_threshold"`
	RefillChunk     int `yaml:"refill_chunk"`
}

// Validate reports every invalid setting, joined into one error.
func (c Config) Validate() error {
	var errs []error

	if c.Game.InputTick <= 0 {
		errs = append(errs, fmt.Errorf("game.input_tick must be positive, got %s", c.Game.InputTick))
	}
	g := c.Game.Gravity
	if g.NormalInterval <= 0 {
		errs = append(errs, fmt.Errorf("game.gravity.normal_interval must be positive, got %s", g.NormalInterval))
	}
	if g.DynamicFloor <= 0 {
		errs = append(errs, fmt.Errorf("game.gravity.dynamic_floor must be positive, got %s", g.DynamicFloor))
	}
	if g.DynamicBase < g.DynamicFloor {
		errs = append(errs, fmt.Errorf("game.gravity.dynamic_base %s is below dynamic_floor %s", g.DynamicBase, g.DynamicFloor))
	}
	if g.DynamicStep < 0 {
		errs = append(errs, fmt.Errorf("game.gravity.dynamic_step must not be negative, got %s", g.DynamicStep))
	}
	l := c.Game.Lock
	if l.DelayTicks < 1 || l.ResetLockThreshold < 1 || l.MaxMoveResets < 0 {
		errs = append(errs, errors.New("game.lock thresholds must be positive"))
	}
	s := c.Game.Sequence
	if s.Initial <= s.RefillThreshold || s.RefillChunk <= 0 {
		errs = append(errs, errors.New("game.sequence.initial must exceed refill_threshold and refill_chunk must be positive"))
	}

	return errors.Join(errs...)
}
