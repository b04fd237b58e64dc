package surface

import (
	"math"
	"strconv"
	"strings"

	"github.com/quellen/calviz/internal/grid"
)

// validEps separates real data from the base plane: values within this
// margin of the minimum are treated as "no data" so the surface stays
// suspended instead of dropping flat walls to zero.
const validEps = 1e-9

// Point is a position in mesh space. X grows with the column index, Y is
// the row index flipped so row 0 renders at the top, Z is the height.
type Point struct {
	X, Y, Z float64
}

// Mesh is the reconstructed quad surface. Quads index into Points; Colors
// holds one face color per quad; Normals holds one unit vector per point.
// A mesh is rebuilt in full on every call and never cached.
type Mesh struct {
	Points  []Point
	Quads   [][4]int
	Colors  []grid.Color
	Normals []Point
}

// Empty reports whether the mesh has no faces.
func (m *Mesh) Empty() bool { return len(m.Quads) == 0 }

// BuildMesh reconstructs a continuous quad surface from the named substate
// field. Every 2x2 neighborhood with at least two valid corners becomes a
// face; invalid corners are healed with a virtual point at the average
// value of the quad's valid corners. Virtual points are private to their
// quad, so adjacent healed quads do not assume continuity. Face color is
// the average of the valid corners' display colors. Invalid bounds (NaN or
// min >= max) yield an empty mesh.
func BuildMesh(g grid.Grid, field string, minValue, maxValue float64, colorSpecs []*FieldSpec, background grid.Color) *Mesh {
	mesh := &Mesh{}
	if math.IsNaN(minValue) || math.IsNaN(maxValue) || minValue >= maxValue {
		return mesh
	}

	nRows, nCols := g.Rows(), g.Cols()
	valueRange := math.Max(1e-12, maxValue-minValue)
	heightScale := float64(max(nRows, nCols)) / 3.0

	toHeight := func(v float64) float64 {
		normalized := (v - minValue) / valueRange
		return math.Min(1, math.Max(0, normalized)) * heightScale
	}
	valid := func(v float64) bool {
		return !math.IsNaN(v) && v-minValue > validEps && v <= maxValue
	}

	// One base point per grid location; healed corners get extra points.
	values := make([]float64, nRows*nCols)
	for row := 0; row < nRows; row++ {
		for col := 0; col < nCols; col++ {
			v := clampedValue(g, row, col, field, minValue, maxValue)
			values[row*nCols+col] = v
			mesh.Points = append(mesh.Points, Point{
				X: float64(col),
				Y: float64(nRows - 1 - row),
				Z: toHeight(v),
			})
		}
	}

	virtual := func(row, col int, v float64) int {
		mesh.Points = append(mesh.Points, Point{
			X: float64(col),
			Y: float64(nRows - 1 - row),
			Z: toHeight(v),
		})
		return len(mesh.Points) - 1
	}

	for row := 0; row+1 < nRows; row++ {
		for col := 0; col+1 < nCols; col++ {
			corners := [4][2]int{
				{row, col},
				{row, col + 1},
				{row + 1, col + 1},
				{row + 1, col},
			}

			var sum float64
			validCount := 0
			var isValid [4]bool
			for i, rc := range corners {
				v := values[rc[0]*nCols+rc[1]]
				if valid(v) {
					isValid[i] = true
					validCount++
					sum += v
				}
			}
			if validCount < 2 {
				continue
			}
			avg := sum / float64(validCount)

			var quad [4]int
			for i, rc := range corners {
				if isValid[i] {
					quad[i] = rc[0]*nCols + rc[1]
				} else {
					quad[i] = virtual(rc[0], rc[1], avg)
				}
			}
			mesh.Quads = append(mesh.Quads, quad)

			var rSum, gSum, bSum int
			for i, rc := range corners {
				if !isValid[i] {
					continue
				}
				c := CellColor(rc[0], rc[1], g, colorSpecs, background)
				rSum += int(c.R)
				gSum += int(c.G)
				bSum += int(c.B)
			}
			mesh.Colors = append(mesh.Colors, grid.Color{
				R: uint8(rSum / validCount),
				G: uint8(gSum / validCount),
				B: uint8(bSum / validCount),
			})
		}
	}

	mesh.Normals = vertexNormals(mesh.Points, mesh.Quads)
	return mesh
}

// clampedValue reads and parses a cell's encoded field value. Out-of-bounds
// coordinates and unparseable values degrade to the minimum; everything
// else is clamped into [minValue, maxValue].
func clampedValue(g grid.Grid, row, col int, field string, minValue, maxValue float64) float64 {
	if row < 0 || row >= g.Rows() || col < 0 || col >= g.Cols() {
		return minValue
	}
	raw := g.Cell(row, col).EncodedValue(field)
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) {
		return minValue
	}
	return math.Min(maxValue, math.Max(minValue, v))
}

// vertexNormals accumulates per-face normals into shared vertices with a
// consistent upward orientation, then normalizes. Points referenced by no
// face get the +Z unit normal.
func vertexNormals(points []Point, quads [][4]int) []Point {
	normals := make([]Point, len(points))
	for _, q := range quads {
		n := faceNormal(points[q[0]], points[q[1]], points[q[2]], points[q[3]])
		for _, idx := range q {
			normals[idx].X += n.X
			normals[idx].Y += n.Y
			normals[idx].Z += n.Z
		}
	}
	for i, n := range normals {
		l := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
		if l == 0 {
			normals[i] = Point{Z: 1}
			continue
		}
		normals[i] = Point{X: n.X / l, Y: n.Y / l, Z: n.Z / l}
	}
	return normals
}

// faceNormal uses the quad's diagonals, which stays well-defined when the
// four corners are not coplanar. Orientation is flipped where needed so
// all faces shade from above.
func faceNormal(p0, p1, p2, p3 Point) Point {
	d1 := Point{X: p2.X - p0.X, Y: p2.Y - p0.Y, Z: p2.Z - p0.Z}
	d2 := Point{X: p3.X - p1.X, Y: p3.Y - p1.Y, Z: p3.Z - p1.Z}
	n := Point{
		X: d1.Y*d2.Z - d1.Z*d2.Y,
		Y: d1.Z*d2.X - d1.X*d2.Z,
		Z: d1.X*d2.Y - d1.Y*d2.X,
	}
	l := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
	if l == 0 {
		return Point{Z: 1}
	}
	n = Point{X: n.X / l, Y: n.Y / l, Z: n.Z / l}
	if n.Z < 0 {
		n = Point{X: -n.X, Y: -n.Y, Z: -n.Z}
	}
	return n
}
