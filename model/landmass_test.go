package model

import "testing"

func testGrid() *LandmassGrid {
	return &LandmassGrid{
		Cols:  4,
		Rows:  4,
		CellW: 8,
		CellH: 8,
		Grid: []int{
			0, 0, 1, 1,
			0, 0, 1, 1,
			2, 2, 1, 1,
			2, 0, 0, 1,
		},
	}
}

func TestLandmassGridAt(t *testing.T) {
	grid := testGrid()

	tests := []struct {
		col, row int
		want     int
	}{
		{0, 0, 0},
		{2, 0, 1},
		{0, 2, 2},
		{1, 3, 0},
		{3, 3, 1},
	}
	for _, tc := range tests {
		got := grid.At(tc.col, tc.row)
		if got != tc.want {
			t.Errorf("At(%d, %d) = %d, want %d", tc.col, tc.row, got, tc.want)
		}
	}
}

func TestLandmassGridAtOutOfBounds(t *testing.T) {
	grid := testGrid()

	for _, c := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}} {
		if got := grid.At(c[0], c[1]); got != NoLandmass {
			t.Errorf("At(%d, %d) = %d, want NoLandmass", c[0], c[1], got)
		}
	}
}

func TestLandmassOf(t *testing.T) {
	grid := testGrid()

	tests := []struct {
		pos  Position
		want int
	}{
		{Position{X: 0, Z: 0}, 0},
		{Position{X: 7.9, Y: 50, Z: 7.9}, 0}, // vertical axis ignored
		{Position{X: 16, Z: 0}, 1},
		{Position{X: 8, Z: 16}, 2},
		{Position{X: 31, Z: 31}, 1},
		{Position{X: -0.5, Z: 0}, NoLandmass},
		{Position{X: 32, Z: 0}, NoLandmass},
	}
	for _, tc := range tests {
		got := grid.LandmassOf(tc.pos)
		if got != tc.want {
			t.Errorf("LandmassOf(%+v) = %d, want %d", tc.pos, got, tc.want)
		}
	}
}

func TestLandmassOfNilGrid(t *testing.T) {
	var grid *LandmassGrid
	if got := grid.LandmassOf(Position{X: 1000, Z: -1000}); got != 0 {
		t.Errorf("nil grid LandmassOf = %d, want 0", got)
	}
	if !grid.SameLandmass(Position{}, Position{X: 5000}) {
		t.Error("nil grid should treat the world as one landmass")
	}
}

func TestLandmassOfZeroCells(t *testing.T) {
	grid := &LandmassGrid{Cols: 2, Rows: 2, Grid: []int{3, 3, 3, 3}}
	if got := grid.LandmassOf(Position{X: 5, Z: 5}); got != 0 {
		t.Errorf("zero-sized cells LandmassOf = %d, want 0", got)
	}
}

func TestSameLandmassOutOfBounds(t *testing.T) {
	grid := testGrid()
	if grid.SameLandmass(Position{X: -5}, Position{X: -6}) {
		t.Error("two out-of-bounds positions must not share a landmass")
	}
	if !grid.SameLandmass(Position{X: 1, Z: 1}, Position{X: 12, Z: 28}) {
		t.Error("expected (1,1) and (12,28) on landmass 0")
	}
}

func TestSquaredPlanarDistance(t *testing.T) {
	a := Position{X: 1, Y: 100, Z: 2}
	b := Position{X: 4, Y: -3, Z: 6}
	if got := SquaredPlanarDistance(a, b); got != 25 {
		t.Errorf("SquaredPlanarDistance = %v, want 25", got)
	}
}

func TestLandmasses(t *testing.T) {
	if got := testGrid().Landmasses(); got != 3 {
		t.Errorf("Landmasses() = %d, want 3", got)
	}
}

func TestParseTargetKind(t *testing.T) {
	for _, k := range AllKinds() {
		got, err := ParseTargetKind(k.String())
		if err != nil {
			t.Fatalf("ParseTargetKind(%q) failed: %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseTargetKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if _, err := ParseTargetKind("dragon"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestDestinationIsTarget(t *testing.T) {
	if (Destination{Position: Position{X: 1}}).IsTarget() {
		t.Error("plain position should not be a target destination")
	}
	if !(Destination{Target: 7}).IsTarget() {
		t.Error("entity destination should be a target destination")
	}
}
