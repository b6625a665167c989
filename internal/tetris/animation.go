package tetris

import "slices"

// LineClearAnimation is the pending wipe of cleared rows.
//
// The engine advances it once per tick. The wipe runs one column per step, so
// it lasts as many ticks as the board is wide; the rows are removed from the
// board when it finishes.
type LineClearAnimation struct {
	rows  []int
	step  int
	steps int
}

func newLineClearAnimation(rows []int, steps int) *LineClearAnimation {
	return &LineClearAnimation{
		rows:  slices.Clone(rows),
		steps: max(1, steps),
	}
}

// Advance moves one step forward and reports whether more steps remain.
func (a *LineClearAnimation) Advance() bool {
	if a.step < a.steps {
		a.step++
	}
	return a.step < a.steps
}

// Rows returns the rows being cleared, top to bottom.
func (a *LineClearAnimation) Rows() []int {
	return slices.Clone(a.rows)
}

// Progress returns how many columns have been wiped so far.
func (a *LineClearAnimation) Progress() int {
	return a.step
}

// Steps returns the total number of steps.
func (a *LineClearAnimation) Steps() int {
	return a.steps
}

// Done reports whether every step has run.
func (a *LineClearAnimation) Done() bool {
	return a.step >= a.steps
}

func (a *LineClearAnimation) clone() *LineClearAnimation {
	c := *a
	c.rows = slices.Clone(a.rows)
	return &c
}
