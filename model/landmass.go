package model

import "math"

// NoLandmass is returned for positions outside the grid. It never matches
// another position, including another out-of-bounds one.
const NoLandmass = -1

// LandmassGrid is the reachability partition sent by the host during the
// hello handshake. Each cell stores the index of the connected landmass it
// belongs to; water cells carry their own indices like any other region.
type LandmassGrid struct {
	Cols  int   // grid columns
	Rows  int   // grid rows
	CellW int   // world units per grid column
	CellH int   // world units per grid row
	Grid  []int // row-major: Grid[row*Cols + col]
}

// At returns the landmass index at grid coordinates (col, row).
// Returns NoLandmass for out-of-bounds coordinates.
func (g *LandmassGrid) At(col, row int) int {
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return NoLandmass
	}
	i := row*g.Cols + col
	if i >= len(g.Grid) {
		return NoLandmass
	}
	return g.Grid[i]
}

// LandmassOf maps a world position onto the grid using its planar axes.
// A nil grid or zero-sized cells collapse the world into a single landmass,
// which is what the host gets when it sends no grid at all.
func (g *LandmassGrid) LandmassOf(pos Position) int {
	if g == nil || g.CellW <= 0 || g.CellH <= 0 {
		return 0
	}
	col := int(math.Floor(pos.X / float64(g.CellW)))
	row := int(math.Floor(pos.Z / float64(g.CellH)))
	return g.At(col, row)
}

// SquaredPlanarDistance lets the grid serve as the full locality adapter.
func (g *LandmassGrid) SquaredPlanarDistance(a, b Position) float64 {
	return SquaredPlanarDistance(a, b)
}

// SameLandmass reports whether both positions resolve to the same known
// landmass.
func (g *LandmassGrid) SameLandmass(a, b Position) bool {
	la := g.LandmassOf(a)
	return la != NoLandmass && la == g.LandmassOf(b)
}

// Landmasses returns the number of distinct landmass indices in the grid.
func (g *LandmassGrid) Landmasses() int {
	if g == nil {
		return 1
	}
	seen := make(map[int]bool)
	for _, v := range g.Grid {
		seen[v] = true
	}
	return len(seen)
}
