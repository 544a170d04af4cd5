package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/arena.yaml
var defaultArenaYAML []byte

// Default returns the hardcoded default configuration.
// It matches defaults/arena.yaml and is used when the embedded file cannot be parsed.
func Default() Config {
	return Config{
		Server: ServerConfig{
			HTTPAddr:    ":8080",
			IdleTimeout: 30 * time.Minute,
			ReadLimit:   4096,
			SendBuffer:  64,
		},
		Storage: StorageConfig{
			DBPath: "~/.arena/arena.db",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Game: GameConfig{
			InputTick:    50 * time.Millisecond,
			LobbyTimeout: 10 * time.Minute,
			Gravity: GravityConfig{
				NormalInterval: 500 * time.Millisecond,
				DynamicBase:    500 * time.Millisecond,
				DynamicStep:    25 * time.Millisecond,
				DynamicFloor:   100 * time.Millisecond,
			},
			Lock: LockConfig{
				DelayTicks:         1,
				MaxMoveResets:      15,
				ResetLockThreshold: 3,
			},
			Sequence: SequenceConfig{
				Initial:         1000,
				RefillThreshold: 20,
				RefillChunk:     100,
			},
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultArenaYAML
}
