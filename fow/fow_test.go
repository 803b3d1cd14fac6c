package fow

import (
	"testing"

	"github.com/dominionforge/dominion-core/model"
)

func TestGridStartsShrouded(t *testing.T) {
	g := NewGrid(100, 100)
	if g.GetCellVisibility(50, 50) != model.Shrouded {
		t.Fatalf("expected fresh grid to be shrouded")
	}
}

func TestNilGridIsAlwaysClear(t *testing.T) {
	var g *Grid
	if g.GetCellVisibility(10, 10) != model.Clear {
		t.Fatalf("nil grid must report CLEAR")
	}
}

func TestStampVisionThenFogRecovery(t *testing.T) {
	g := NewGrid(100, 100)
	g.BeginFrame()
	g.StampVision(50, 50, 15)
	if g.GetCellVisibility(50, 50) != model.Clear {
		t.Fatalf("expected stamped cell to be CLEAR")
	}

	// Next frame: nothing covers it anymore — must go to FOGGED, not SHROUDED.
	g.BeginFrame()
	if got := g.GetCellVisibility(50, 50); got != model.Fogged {
		t.Fatalf("expected FOGGED after losing coverage, got %v", got)
	}

	// It must never revert straight to SHROUDED on its own.
	g.BeginFrame()
	if got := g.GetCellVisibility(50, 50); got == model.Shrouded {
		t.Fatalf("FOGGED cell must not revert to SHROUDED without ever being stamped")
	}
}

func TestHeightGridBilinear(t *testing.T) {
	cells := []byte{
		0, 10,
		20, 30,
	}
	hg := NewHeightGrid(2, 2, cells)
	if got := hg.ElevationAt(0, 0); got != 0 {
		t.Fatalf("corner elevation: got %v want 0", got)
	}
	if got := hg.ElevationAt(0.5, 0.5); got != 15 {
		t.Fatalf("center elevation: got %v want 15", got)
	}
}

func TestHeightGridNilIsZero(t *testing.T) {
	var hg *HeightGrid
	if hg.ElevationAt(1, 1) != 0 {
		t.Fatalf("nil height grid must report 0 elevation")
	}
}
