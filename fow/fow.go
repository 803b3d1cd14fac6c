package fow

import "github.com/dominionforge/dominion-core/model"

// Grid is the per-side SHROUDED/FOGGED/CLEAR visibility grid (spec.md
// Section 4.C2). Cells start SHROUDED; a covering entity stamps CLEAR; a
// cell that loses coverage transitions to FOGGED, never straight back to
// SHROUDED (spec.md Section 8 testable property).
type Grid struct {
	cols, rows int
	cells      []model.VisibilityState
	originX    float64
	originZ    float64
}

// NewGrid builds a SHROUDED grid covering a mapWidth x mapHeight world-unit
// area, originating at (0,0).
func NewGrid(mapWidth, mapHeight float64) *Grid {
	cols := int(mapWidth/CellSize) + 1
	rows := int(mapHeight/CellSize) + 1
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	cells := make([]model.VisibilityState, cols*rows)
	return &Grid{cols: cols, rows: rows, cells: cells}
}

func (g *Grid) cellIndex(worldX, worldZ float64) (int, int, bool) {
	col := int((worldX - g.originX) / CellSize)
	row := int((worldZ - g.originZ) / CellSize)
	if col < 0 || col >= g.cols || row < 0 || row >= g.rows {
		return 0, 0, false
	}
	return col, row, true
}

func (g *Grid) at(col, row int) model.VisibilityState {
	return g.cells[row*g.cols+col]
}

// GetCellVisibility returns the tri-state at a world position. A nil grid
// (no FoW loaded) always reports CLEAR per spec.md Section 4.C2.
func (g *Grid) GetCellVisibility(x, z float64) model.VisibilityState {
	if g == nil {
		return model.Clear
	}
	col, row, ok := g.cellIndex(x, z)
	if !ok {
		return model.Shrouded
	}
	return g.at(col, row)
}

// IsPositionVisible reports whether a position is at least FOGGED-revealed
// (i.e. not SHROUDED). Callers wanting strictly-live visibility should
// compare GetCellVisibility against model.Clear directly.
func (g *Grid) IsPositionVisible(x, z float64) bool {
	return g.GetCellVisibility(x, z) != model.Shrouded
}

// BeginFrame demotes every currently-CLEAR cell to FOGGED before vision
// stamps are applied for the frame; stamping then re-promotes covered cells
// back to CLEAR, implementing the one-frame FOGGED transition.
func (g *Grid) BeginFrame() {
	if g == nil {
		return
	}
	for i, c := range g.cells {
		if c == model.Clear {
			g.cells[i] = model.Fogged
		}
	}
}

// StampVision marks every cell within radius of (x, z) CLEAR.
func (g *Grid) StampVision(x, z, radius float64) {
	if g == nil || radius <= 0 {
		return
	}
	minCol, minRow, _ := g.cellIndex(x-radius, z-radius)
	maxCol, maxRow, _ := g.cellIndex(x+radius, z+radius)
	if maxCol < minCol {
		maxCol = minCol
	}
	if maxRow < minRow {
		maxRow = minRow
	}
	r2 := radius * radius
	for row := clampInt(minRow, 0, g.rows-1); row <= clampInt(maxRow, 0, g.rows-1); row++ {
		for col := clampInt(minCol, 0, g.cols-1); col <= clampInt(maxCol, 0, g.cols-1); col++ {
			cx := g.originX + (float64(col)+0.5)*CellSize
			cz := g.originZ + (float64(row)+0.5)*CellSize
			dx := cx - x
			dz := cz - z
			if dx*dx+dz*dz <= r2 {
				g.cells[row*g.cols+col] = model.Clear
			}
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
