package config

import (
	_ "embed"
)

//go:embed defaults/tetris.yaml
var defaultTetrisYAML []byte

// DefaultTetrisConfig returns the hardcoded configuration.
// It matches defaults/tetris.yaml and is used when the embedded file is unusable.
func DefaultTetrisConfig() TetrisConfig {
	return TetrisConfig{
		Board: BoardConfig{
			Rows: 20,
			Cols: 10,
		},
		Timing: TimingConfig{
			TickRate:      50,
			AnimateClears: true,
		},
		Versus: VersusConfig{
			RelayURL:   "ws://localhost:8080/relay",
			ListenAddr: ":8080",
			LobbyTTL:   "10m",
		},
		Storage: StorageConfig{
			SaveSlot: "last",
		},
		Server: ServerConfig{
			Addr:    ":23234",
			HostKey: ".ssh/tetris_ed25519",
		},
	}
}

// GetDefaultYAML returns the embedded default YAML.
func GetDefaultYAML() []byte {
	return defaultTetrisYAML
}
