package render

import (
	"math"
	"testing"

	"github.com/quellen/calviz/internal/surface"
)

func quadMesh() *surface.Mesh {
	return &surface.Mesh{
		Points: []surface.Point{
			{X: 0, Y: 0, Z: 0},
			{X: 10, Y: 0, Z: 0},
			{X: 10, Y: 10, Z: 5},
			{X: 0, Y: 10, Z: 5},
		},
		Quads: [][4]int{{0, 1, 2, 3}},
	}
}

func TestMeshWireframe(t *testing.T) {
	w := MeshWireframe(quadMesh())
	if len(w.Edges) != 4 {
		t.Fatalf("one quad has 4 edges, got %d", len(w.Edges))
	}
	// The fit centers the mesh and caps its longest extent at 3 units.
	for i, e := range w.Edges {
		for _, v := range []Vec3{e.Start, e.End} {
			if math.Abs(v.X) > 1.5+1e-9 || math.Abs(v.Y) > 1.5+1e-9 || math.Abs(v.Z) > 1.5+1e-9 {
				t.Errorf("edge %d endpoint %v outside the fitted volume", i, v)
			}
		}
	}
}

func TestMeshWireframeEmpty(t *testing.T) {
	if w := MeshWireframe(nil); len(w.Edges) != 0 {
		t.Errorf("nil mesh should produce no edges, got %d", len(w.Edges))
	}
	if w := MeshWireframe(&surface.Mesh{}); len(w.Edges) != 0 {
		t.Errorf("empty mesh should produce no edges, got %d", len(w.Edges))
	}
}

func TestMeshWireframeHeightIsVertical(t *testing.T) {
	w := MeshWireframe(quadMesh())
	// Mesh height (Z) must land on the camera's vertical axis (world Y).
	sawLift := false
	for _, e := range w.Edges {
		if math.Abs(e.Start.Y-e.End.Y) > 1e-9 {
			sawLift = true
		}
	}
	if !sawLift {
		t.Error("a sloped mesh should produce vertically separated edges")
	}
}

func TestPolylineWireframe(t *testing.T) {
	m := quadMesh()
	polylines := [][]surface.Point{
		{{X: 0, Y: 0, Z: 0}, {X: 5, Y: 5, Z: 2}, {X: 10, Y: 10, Z: 5}},
	}
	w := PolylineWireframe(m, polylines)
	if len(w.Edges) != 2 {
		t.Errorf("a 3-point polyline has 2 edges, got %d", len(w.Edges))
	}
	if w2 := PolylineWireframe(nil, polylines); len(w2.Edges) != 0 {
		t.Errorf("no mesh, no fit, no edges; got %d", len(w2.Edges))
	}
}
