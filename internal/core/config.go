package core

// RuntimeConfig contains the settings a frontend passes to a game session.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second (default 50)
	Seed     int64 // RNG seed for deterministic gameplay

	BoardRows     int
	BoardCols     int
	AnimateClears bool
}

// DefaultConfig returns a RuntimeConfig with the reference geometry and timing.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:       80,
		ScreenH:       24,
		TickRate:      50,
		Seed:          0, // 0 means use current time in platform layer
		BoardRows:     20,
		BoardCols:     10,
		AnimateClears: true,
	}
}

// GameState is the status line a frontend shows and records when a game ends.
type GameState struct {
	Score    int
	Lines    int
	Level    int
	GameOver bool
	Paused   bool
	Waiting  bool // Versus: the peer owns the falling piece
}
