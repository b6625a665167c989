package tetris

import "math/rand"

// refillThreshold is the buffer length at or below which a new bag is appended.
const refillThreshold = 2

// Generator produces an unbounded sequence of pieces.
//
// The buffer is seeded with one piece drawn from the CanBeFirst subset. Whole
// shuffled bags of the catalog are appended whenever the buffer runs low, so
// every piece appears exactly once per bag.
type Generator struct {
	rng *rand.Rand
	buf []PieceID
}

// NewGenerator creates a generator with a deterministic RNG.
func NewGenerator(seed int64) *Generator {
	g := &Generator{rng: rand.New(rand.NewSource(seed))}

	var first []PieceID
	for _, p := range catalog {
		if p.CanBeFirst {
			first = append(first, p.ID)
		}
	}
	g.buf = append(g.buf, first[g.rng.Intn(len(first))])
	g.refill()
	return g
}

// refill appends one shuffled bag if the buffer is running low.
func (g *Generator) refill() {
	if len(g.buf) > refillThreshold {
		return
	}
	bag := make([]PieceID, PieceCount)
	for i := range bag {
		bag[i] = PieceID(i)
	}
	g.rng.Shuffle(len(bag), func(i, j int) { bag[i], bag[j] = bag[j], bag[i] })
	g.buf = append(g.buf, bag...)
}

// Next returns the head of the sequence and advances it.
func (g *Generator) Next() Piece {
	id := g.buf[0]
	g.buf = g.buf[1:]
	g.refill()
	return catalog[id]
}

// Peek returns the piece Next would return, without advancing.
func (g *Generator) Peek() Piece {
	return catalog[g.buf[0]]
}

// Upcoming returns up to n buffered pieces starting at the head.
func (g *Generator) Upcoming(n int) []Piece {
	n = min(n, len(g.buf))
	out := make([]Piece, 0, n)
	for _, id := range g.buf[:n] {
		out = append(out, catalog[id])
	}
	return out
}
