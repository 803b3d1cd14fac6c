// Package fow implements the HeightGrid elevation sampler and the per-side
// fog-of-war grid (spec.md Section 4.C2). The row-major grid layout and
// bounds-safe accessors are adapted from the teacher's
// model.TerrainGrid (_examples/nstehr-vimy/vimy-core/model/terrain.go),
// generalized from a coarse 32x32 AI-awareness grid to an elevation sampler
// with one heightmap sample per world unit and a separate per-side
// visibility grid on CellSize cells.
package fow

// CellSize is the pathfind/FoW cell size in world units. Not explicitly
// stated in spec.md; inferred from the MovementKernel's "10-unit cells"
// (spec.md Section 4.C5) per Section 9's Open Questions.
const CellSize = 10.0

// HeightGrid samples terrain elevation at an arbitrary world position via
// bilinear interpolation over the raw heightmap bytes.
type HeightGrid struct {
	width, height int
	cells         []byte
}

// NewHeightGrid wraps raw heightmap bytes. Returns nil if the dimensions
// don't match the payload length — callers fall back to elevation 0.
func NewHeightGrid(width, height int, cells []byte) *HeightGrid {
	if width <= 0 || height <= 0 || len(cells) != width*height {
		return nil
	}
	return &HeightGrid{width: width, height: height, cells: cells}
}

func (g *HeightGrid) sample(x, y int) float64 {
	if x < 0 {
		x = 0
	}
	if x >= g.width {
		x = g.width - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= g.height {
		y = g.height - 1
	}
	return float64(g.cells[y*g.width+x])
}

// ElevationAt returns the bilinearly interpolated elevation at world
// position (worldX, worldZ). A nil grid (no heightmap loaded) returns 0.
func (g *HeightGrid) ElevationAt(worldX, worldZ float64) float64 {
	if g == nil {
		return 0
	}
	x0 := int(worldX)
	z0 := int(worldZ)
	fx := worldX - float64(x0)
	fz := worldZ - float64(z0)

	h00 := g.sample(x0, z0)
	h10 := g.sample(x0+1, z0)
	h01 := g.sample(x0, z0+1)
	h11 := g.sample(x0+1, z0+1)

	top := h00*(1-fx) + h10*fx
	bottom := h01*(1-fx) + h11*fx
	return top*(1-fz) + bottom*fz
}
