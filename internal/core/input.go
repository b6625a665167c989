package core

// Action represents a semantic game action, abstracted from physical key presses.
type Action int

const (
	ActionNone      Action = iota
	ActionLeft             // Left arrow, A
	ActionRight            // Right arrow, D
	ActionRotateCW         // Up arrow, X
	ActionRotateCCW        // Z
	ActionSoftDrop         // Down arrow, S
	ActionHardDrop         // Space
	ActionPause            // P
	ActionRestart          // R after game over
	ActionQuit             // Q, Ctrl+C
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionRotateCW:
		return "RotateCW"
	case ActionRotateCCW:
		return "RotateCCW"
	case ActionSoftDrop:
		return "SoftDrop"
	case ActionHardDrop:
		return "HardDrop"
	case ActionPause:
		return "Pause"
	case ActionRestart:
		return "Restart"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// InputFrame collects the actions triggered between two simulation ticks.
// Actions are kept in arrival order: a move followed by a rotation is not
// the same as the reverse near a wall.
type InputFrame struct {
	Actions []Action
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{}
}

// Set appends an action to this frame.
func (f *InputFrame) Set(a Action) {
	if a == ActionNone {
		return
	}
	f.Actions = append(f.Actions, a)
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	for _, got := range f.Actions {
		if got == a {
			return true
		}
	}
	return false
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	f.Actions = f.Actions[:0]
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	return InputFrame{Actions: append([]Action(nil), f.Actions...)}
}
