package render

import (
	"math"
	"testing"
)

func TestCameraProjectCenter(t *testing.T) {
	cam := NewCamera()
	x, y, _, ok := cam.Project(Vec3{}, 100, 100)
	if !ok {
		t.Fatal("the origin should be visible")
	}
	if x != 50 || y != 50 {
		t.Errorf("expected the screen center, got (%d, %d)", x, y)
	}
}

func TestCameraProjectOffscreen(t *testing.T) {
	cam := NewCamera()
	if _, _, _, ok := cam.Project(Vec3{X: 1000}, 100, 100); ok {
		t.Error("a far-off point must fall outside the canvas")
	}
}

func TestCameraProjectBehind(t *testing.T) {
	cam := NewCamera()
	if _, _, _, ok := cam.Project(Vec3{Z: cam.Distance}, 100, 100); ok {
		t.Error("points at or beyond the camera plane are not drawable")
	}
}

func TestCameraZoomClamps(t *testing.T) {
	cam := NewCamera()
	for i := 0; i < 100; i++ {
		cam.ZoomIn()
	}
	if cam.Zoom > 10 {
		t.Errorf("zoom exceeded the cap: %g", cam.Zoom)
	}
	for i := 0; i < 200; i++ {
		cam.ZoomOut()
	}
	if cam.Zoom < 0.1 {
		t.Errorf("zoom fell below the floor: %g", cam.Zoom)
	}
}

func TestCameraRotationPreservesLength(t *testing.T) {
	cam := NewCamera()
	cam.RotateX(0.7)
	cam.RotateY(-1.3)
	cam.RotateZ(2.1)

	p := Vec3{X: 1, Y: 2, Z: 3}
	r := cam.rotate(p)
	before := math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
	after := math.Sqrt(r.X*r.X + r.Y*r.Y + r.Z*r.Z)
	if math.Abs(before-after) > 1e-9 {
		t.Errorf("rotation changed vector length from %g to %g", before, after)
	}
}

func TestVec3Ops(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: 5, Z: 6}
	if got := a.Add(b); got != (Vec3{X: 5, Y: 7, Z: 9}) {
		t.Errorf("unexpected sum %v", got)
	}
	if got := b.Sub(a); got != (Vec3{X: 3, Y: 3, Z: 3}) {
		t.Errorf("unexpected difference %v", got)
	}
	if got := a.Scale(2); got != (Vec3{X: 2, Y: 4, Z: 6}) {
		t.Errorf("unexpected scale %v", got)
	}
}

func TestDrawWireframe(t *testing.T) {
	c := NewCanvas(20, 10)
	w := &Wireframe{}
	w.AddEdge(Vec3{X: -1, Y: 0, Z: 0}, Vec3{X: 1, Y: 0, Z: 0})
	Draw(c, w, NewCamera())

	lit := 0
	for _, r := range c.String() {
		if r != 0x2800 && r != '\n' {
			lit++
		}
	}
	if lit == 0 {
		t.Error("expected the edge to rasterize onto the canvas")
	}
}

func TestDrawNilSafe(t *testing.T) {
	Draw(nil, &Wireframe{}, NewCamera())
	Draw(NewCanvas(2, 2), nil, NewCamera())
	Draw(NewCanvas(2, 2), &Wireframe{}, nil)
}
