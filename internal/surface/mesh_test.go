package surface

import (
	"math"
	"testing"

	"github.com/quellen/calviz/internal/grid"
)

func makeGrid(t *testing.T, field string, values [][]string) *grid.Dense {
	t.Helper()
	g := grid.NewDense(len(values), len(values[0]))
	for r, row := range values {
		for c, v := range row {
			g.SetValue(r, c, field, v)
		}
	}
	return g
}

func TestBuildMeshFullGrid(t *testing.T) {
	g := makeGrid(t, "temp", [][]string{
		{"5", "5", "5"},
		{"5", "5", "5"},
		{"5", "5", "5"},
	})
	m := BuildMesh(g, "temp", 0, 10, nil, grid.Color{R: 48, G: 48, B: 48})

	if len(m.Points) != 9 {
		t.Fatalf("expected 9 base points, got %d", len(m.Points))
	}
	if len(m.Quads) != 4 {
		t.Fatalf("expected 4 quads, got %d", len(m.Quads))
	}
	for _, q := range m.Quads {
		for _, idx := range q {
			if idx >= 9 {
				t.Errorf("full grid should not allocate virtual points, got index %d", idx)
			}
		}
	}

	// heightScale is 3/3 = 1; value 5 in [0, 10] sits at half height.
	for i, p := range m.Points {
		if math.Abs(p.Z-0.5) > 1e-9 {
			t.Errorf("point %d: expected height 0.5, got %g", i, p.Z)
		}
	}
	// No specs, no per-cell colors: every face falls back to background.
	for i, c := range m.Colors {
		if c != (grid.Color{R: 48, G: 48, B: 48}) {
			t.Errorf("face %d: expected background color, got %v", i, c)
		}
	}
}

func TestBuildMeshInvalidBounds(t *testing.T) {
	g := makeGrid(t, "temp", [][]string{
		{"5", "5"},
		{"5", "5"},
	})
	tests := []struct {
		name     string
		min, max float64
	}{
		{"nan min", math.NaN(), 10},
		{"nan max", 0, math.NaN()},
		{"min equals max", 5, 5},
		{"min above max", 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := BuildMesh(g, "temp", tt.min, tt.max, nil, grid.Color{})
			if !m.Empty() {
				t.Errorf("expected empty mesh, got %d quads", len(m.Quads))
			}
			if len(m.Points) != 0 {
				t.Errorf("expected no points, got %d", len(m.Points))
			}
		})
	}
}

func TestBuildMeshHealsInvalidCorner(t *testing.T) {
	// Value 0 equals the minimum, so corner (1,1) carries no data.
	g := makeGrid(t, "temp", [][]string{
		{"2", "4"},
		{"9", "0"},
	})
	m := BuildMesh(g, "temp", 0, 10, nil, grid.Color{})

	if len(m.Quads) != 1 {
		t.Fatalf("expected 1 quad, got %d", len(m.Quads))
	}
	if len(m.Points) != 5 {
		t.Fatalf("expected 4 base points plus 1 virtual, got %d", len(m.Points))
	}

	q := m.Quads[0]
	// Corner order is (r,c), (r,c+1), (r+1,c+1), (r+1,c); the invalid
	// corner (1,1) is the third.
	if q[0] != 0 || q[1] != 1 || q[3] != 2 {
		t.Errorf("valid corners should use base points, got %v", q)
	}
	if q[2] != 4 {
		t.Fatalf("healed corner should use the virtual point, got %v", q)
	}

	// Virtual height is the average of the valid corners: (2+4+9)/3 = 5,
	// half the range, at heightScale 2/3.
	want := 0.5 * (2.0 / 3.0)
	if math.Abs(m.Points[4].Z-want) > 1e-9 {
		t.Errorf("expected virtual height %g, got %g", want, m.Points[4].Z)
	}
	// The virtual point stays at the invalid corner's grid position.
	if m.Points[4].X != 1 || m.Points[4].Y != 0 {
		t.Errorf("virtual point misplaced: %+v", m.Points[4])
	}
}

func TestBuildMeshSkipsSparseQuads(t *testing.T) {
	g := makeGrid(t, "temp", [][]string{
		{"5", "0"},
		{"0", "0"},
	})
	m := BuildMesh(g, "temp", 0, 10, nil, grid.Color{})
	if !m.Empty() {
		t.Errorf("one valid corner should not form a quad, got %d", len(m.Quads))
	}
	if len(m.Points) != 4 {
		t.Errorf("base points are always emitted, got %d", len(m.Points))
	}
}

func TestBuildMeshVirtualPointsNotShared(t *testing.T) {
	// Cell (0,1) is invalid and sits on the seam between both quads. Each
	// quad must heal it with its own virtual point.
	g := makeGrid(t, "temp", [][]string{
		{"5", "0", "5"},
		{"5", "5", "5"},
	})
	m := BuildMesh(g, "temp", 0, 10, nil, grid.Color{})

	if len(m.Quads) != 2 {
		t.Fatalf("expected 2 quads, got %d", len(m.Quads))
	}
	left, right := m.Quads[0], m.Quads[1]
	if left[1] < 6 || right[0] < 6 {
		t.Fatalf("healed corners should be virtual points, got %v and %v", left, right)
	}
	if left[1] == right[0] {
		t.Errorf("adjacent quads must not share virtual points, both use %d", left[1])
	}
}

func TestBuildMeshClampsAndDegrades(t *testing.T) {
	// Unparseable text degrades to the minimum (no data); 999 clamps to
	// the maximum and stays valid.
	g := makeGrid(t, "temp", [][]string{
		{"garbage", "999"},
		{"5", "5"},
	})
	m := BuildMesh(g, "temp", 0, 10, nil, grid.Color{})

	if len(m.Quads) != 1 {
		t.Fatalf("expected 1 quad, got %d", len(m.Quads))
	}
	scale := 2.0 / 3.0
	if math.Abs(m.Points[1].Z-scale) > 1e-9 {
		t.Errorf("clamped value should reach full height %g, got %g", scale, m.Points[1].Z)
	}
	if m.Points[0].Z != 0 {
		t.Errorf("unparseable value should sit at the base, got %g", m.Points[0].Z)
	}
}

func TestBuildMeshRowZeroRendersAtTop(t *testing.T) {
	g := makeGrid(t, "temp", [][]string{
		{"5", "5"},
		{"5", "5"},
		{"5", "5"},
	})
	m := BuildMesh(g, "temp", 0, 10, nil, grid.Color{})
	if m.Points[0].Y != 2 {
		t.Errorf("row 0 should map to Y=2, got %g", m.Points[0].Y)
	}
	if m.Points[4].Y != 0 {
		t.Errorf("last row should map to Y=0, got %g", m.Points[4].Y)
	}
}

func TestBuildMeshFaceColorAverages(t *testing.T) {
	g := makeGrid(t, "temp", [][]string{
		{"5", "5"},
		{"5", "5"},
	})
	g.SetColor(0, 0, grid.Color{R: 10, G: 20, B: 30})
	g.SetColor(0, 1, grid.Color{R: 20, G: 40, B: 60})
	g.SetColor(1, 0, grid.Color{R: 30, G: 60, B: 90})
	g.SetColor(1, 1, grid.Color{R: 40, G: 80, B: 120})

	m := BuildMesh(g, "temp", 0, 10, nil, grid.Color{})
	if len(m.Colors) != 1 {
		t.Fatalf("expected 1 face color, got %d", len(m.Colors))
	}
	want := grid.Color{R: 25, G: 50, B: 75}
	if m.Colors[0] != want {
		t.Errorf("expected averaged color %v, got %v", want, m.Colors[0])
	}
}

func TestBuildMeshNormals(t *testing.T) {
	g := makeGrid(t, "temp", [][]string{
		{"5", "5"},
		{"5", "5"},
	})
	m := BuildMesh(g, "temp", 0, 10, nil, grid.Color{})
	if len(m.Normals) != len(m.Points) {
		t.Fatalf("expected one normal per point, got %d for %d points", len(m.Normals), len(m.Points))
	}
	for i, n := range m.Normals {
		if math.Abs(n.X) > 1e-9 || math.Abs(n.Y) > 1e-9 || math.Abs(n.Z-1) > 1e-9 {
			t.Errorf("normal %d of a flat surface should be +Z, got %+v", i, n)
		}
	}
}

func TestFaceNormalPointsUp(t *testing.T) {
	// A tilted quad wound so its raw cross product faces down still
	// reports an upward normal.
	n := faceNormal(
		Point{X: 0, Y: 0, Z: 0},
		Point{X: 0, Y: 1, Z: 0},
		Point{X: 1, Y: 1, Z: 1},
		Point{X: 1, Y: 0, Z: 1},
	)
	if n.Z <= 0 {
		t.Errorf("expected upward normal, got %+v", n)
	}
	l := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
	if math.Abs(l-1) > 1e-9 {
		t.Errorf("expected unit normal, got length %g", l)
	}
}
