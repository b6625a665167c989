package tetris

import (
	"slices"
	"testing"
)

func TestCatalogShapes(t *testing.T) {
	for _, p := range Catalog() {
		centers := 0
		for _, off := range p.Cells() {
			if off.Center {
				centers++
			}
		}
		if centers != 1 {
			t.Errorf("%s has %d centers, want 1", p.Name, centers)
		}
		if len(p.Cells()) != 4 {
			t.Errorf("%s has %d cells, want 4", p.Name, len(p.Cells()))
		}
	}

	if i, _ := PieceByID(PieceI); i.PreviewHeight() != 1 || i.Width() != 4 {
		t.Errorf("I preview = %dx%d, want 1x4", i.PreviewHeight(), i.Width())
	}
	if _, ok := PieceByID(PieceCount); ok {
		t.Error("PieceByID accepted an id past the catalog")
	}
}

func TestGeneratorFirstPieceCanBeFirst(t *testing.T) {
	for seed := range int64(200) {
		p := NewGenerator(seed).Next()
		if !p.CanBeFirst {
			t.Fatalf("seed %d: first piece %s is not allowed first", seed, p.Name)
		}
	}
}

func TestGeneratorBags(t *testing.T) {
	g := NewGenerator(7)
	g.Next() // the seeded head is outside the bags

	all := make([]PieceID, PieceCount)
	for i := range all {
		all[i] = PieceID(i)
	}

	for bag := range 5 {
		got := make([]PieceID, 0, PieceCount)
		for range PieceCount {
			got = append(got, g.Next().ID)
		}
		slices.Sort(got)
		if !slices.Equal(got, all) {
			t.Errorf("bag %d is not a permutation of the catalog: %v", bag, got)
		}
	}
}

func TestGeneratorPeekAndUpcoming(t *testing.T) {
	g := NewGenerator(3)
	for range 30 {
		upcoming := g.Upcoming(3)
		if len(upcoming) != 3 {
			t.Fatalf("Upcoming(3) returned %d pieces", len(upcoming))
		}
		if g.Peek() != upcoming[0] {
			t.Fatal("Peek disagrees with Upcoming")
		}
		if next := g.Next(); next != upcoming[0] {
			t.Fatalf("Next() = %s, Upcoming said %s", next.Name, upcoming[0].Name)
		}
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	a, b := NewGenerator(99), NewGenerator(99)
	for i := range 100 {
		if pa, pb := a.Next(), b.Next(); pa.ID != pb.ID {
			t.Fatalf("piece %d differs: %s vs %s", i, pa.Name, pb.Name)
		}
	}
}
