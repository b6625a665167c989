package tetris

// framesPerGridcell is the gravity curve: frames per one-row descent by level.
var framesPerGridcell = [...]int{
	36, 32, 29, 25, 22, 18, 15, 11, 7, 5, // 0-9
	4, 4, 4, 3, 3, 3, 2, 2, 2, // 10-18
}

// FramesPerGridcell returns how many ticks pass between gravity steps.
// Levels past the table fall every tick.
func FramesPerGridcell(level int) int {
	if level < 0 {
		level = 0
	}
	if level >= len(framesPerGridcell) {
		return 1
	}
	return framesPerGridcell[level]
}

// lineScores is the base award for clearing n rows at once.
var lineScores = [...]int{0, 40, 100, 300, 1200}

// LineClearScore returns the points for clearing n rows at the given level.
func LineClearScore(n, level int) int {
	if n <= 0 {
		return 0
	}
	n = min(n, len(lineScores)-1)
	return lineScores[n] * (level + 1)
}
