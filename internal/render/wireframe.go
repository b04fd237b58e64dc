package render

import (
	"math"

	"github.com/quellen/calviz/internal/surface"
)

// MeshWireframe converts a reconstructed quad mesh into wireframe edges,
// centered at the origin and scaled to roughly fill the camera's view.
func MeshWireframe(m *surface.Mesh) *Wireframe {
	w := &Wireframe{}
	if m == nil || m.Empty() {
		return w
	}
	fit := fitTransform(m.Points)
	for _, q := range m.Quads {
		for i := 0; i < 4; i++ {
			a := fit(m.Points[q[i]])
			b := fit(m.Points[q[(i+1)%4]])
			w.AddEdge(a, b)
		}
	}
	return w
}

// PolylineWireframe converts sampled surface polylines into edges using the
// same fit as the mesh they overlay.
func PolylineWireframe(m *surface.Mesh, polylines [][]surface.Point) *Wireframe {
	w := &Wireframe{}
	if m == nil || len(m.Points) == 0 {
		return w
	}
	fit := fitTransform(m.Points)
	for _, line := range polylines {
		for i := 0; i+1 < len(line); i++ {
			w.AddEdge(fit(line[i]), fit(line[i+1]))
		}
	}
	return w
}

// fitTransform centers the point cloud and scales its longest extent to
// about three world units, the sweet spot for the camera's projection.
func fitTransform(points []surface.Point) func(surface.Point) Vec3 {
	minP := surface.Point{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	maxP := surface.Point{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range points {
		minP.X = math.Min(minP.X, p.X)
		minP.Y = math.Min(minP.Y, p.Y)
		minP.Z = math.Min(minP.Z, p.Z)
		maxP.X = math.Max(maxP.X, p.X)
		maxP.Y = math.Max(maxP.Y, p.Y)
		maxP.Z = math.Max(maxP.Z, p.Z)
	}
	extent := math.Max(maxP.X-minP.X, math.Max(maxP.Y-minP.Y, maxP.Z-minP.Z))
	if extent <= 0 {
		extent = 1
	}
	scale := 3.0 / extent
	cx := (minP.X + maxP.X) / 2
	cy := (minP.Y + maxP.Y) / 2
	cz := (minP.Z + maxP.Z) / 2
	return func(p surface.Point) Vec3 {
		// Surface height maps onto the camera's vertical axis.
		return Vec3{
			X: (p.X - cx) * scale,
			Y: (p.Z - cz) * scale,
			Z: (p.Y - cy) * scale,
		}
	}
}
