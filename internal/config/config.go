// Package config provides YAML-based configuration loading for the tetris
// frontends: board geometry, timing, the versus relay and storage.
package config

// TetrisConfig contains all configuration for a tetris installation.
type TetrisConfig struct {
	Board   BoardConfig   `yaml:"board"`
	Timing  TimingConfig  `yaml:"timing"`
	Versus  VersusConfig  `yaml:"versus"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
}

// BoardConfig defines the playfield geometry.
type BoardConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// TimingConfig defines the simulation clock.
type TimingConfig struct {
	TickRate      int  `yaml:"tick_rate"`      // Ticks per second
	AnimateClears bool `yaml:"animate_clears"` // Wipe cleared rows column by column
}

// VersusConfig defines how two players find each other.
type VersusConfig struct {
	RelayURL   string `yaml:"relay_url"`   // ws:// or wss:// address of a relay
	ListenAddr string `yaml:"listen_addr"` // Websocket address for `tetris relay`
	TCPAddr    string `yaml:"tcp_addr"`    // Line-record address for `tetris relay`, empty disables
	LobbyTTL   string `yaml:"lobby_ttl"`   // Unjoined lobbies expire after this duration
}

// StorageConfig defines where scores and saves live.
type StorageConfig struct {
	DBPath   string `yaml:"db_path"` // Empty means ~/.tetris/tetris.db
	SaveSlot string `yaml:"save_slot"`
}

// ServerConfig defines the SSH server.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	HostKey string `yaml:"host_key"`
}
