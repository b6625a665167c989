package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid reports a configuration value the game cannot run with.
var ErrInvalid = errors.New("config: invalid value")

// LoadTetris loads the tetris configuration.
// Search order: customPath -> ~/.tetris/configs/tetris.yaml -> ./configs/tetris.yaml -> embedded default
//
// Files are decoded over the defaults, so a partial file only overrides the
// keys it names.
func LoadTetris(customPath string) (TetrisConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return TetrisConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parse(data)
		if err != nil {
			return TetrisConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	// Try user config directory
	if userCfgPath := userConfigPath("tetris.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parse(data); err == nil && cfg.Validate() == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "tetris.yaml")); err == nil {
		if cfg, err := parse(data); err == nil && cfg.Validate() == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg := DefaultTetrisConfig()
	if err := yaml.Unmarshal(defaultTetrisYAML, &cfg); err != nil {
		return DefaultTetrisConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

func parse(data []byte) (TetrisConfig, error) {
	cfg := DefaultTetrisConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return TetrisConfig{}, err
	}
	return cfg, nil
}

// Validate checks the values the engine depends on.
func (c TetrisConfig) Validate() error {
	if c.Board.Rows < 4 || c.Board.Cols < 4 {
		return fmt.Errorf("%w: board %dx%d, need at least 4x4", ErrInvalid, c.Board.Rows, c.Board.Cols)
	}
	if c.Board.Cols > 255 || c.Board.Rows*c.Board.Cols > 1<<16 {
		return fmt.Errorf("%w: board %dx%d is too large", ErrInvalid, c.Board.Rows, c.Board.Cols)
	}
	if c.Timing.TickRate <= 0 {
		return fmt.Errorf("%w: tick_rate %d", ErrInvalid, c.Timing.TickRate)
	}
	if _, err := c.LobbyTTL(); err != nil {
		return err
	}
	return nil
}

// LobbyTTL parses versus.lobby_ttl. An empty value means ten minutes.
func (c TetrisConfig) LobbyTTL() (time.Duration, error) {
	if c.Versus.LobbyTTL == "" {
		return 10 * time.Minute, nil
	}
	d, err := time.ParseDuration(c.Versus.LobbyTTL)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: lobby_ttl %q", ErrInvalid, c.Versus.LobbyTTL)
	}
	return d, nil
}

// DBPath returns storage.db_path, defaulting to ~/.tetris/tetris.db.
func (c TetrisConfig) DBPath() string {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "tetris.db"
	}
	return filepath.Join(home, ".tetris", "tetris.db")
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tetris", "configs", filename)
}
