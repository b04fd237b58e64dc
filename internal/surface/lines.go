package surface

import (
	"math"

	"github.com/quellen/calviz/internal/grid"
)

// Line is a segment between two grid-space endpoints.
type Line struct {
	X1, Y1, X2, Y2 float64
}

// lineLift keeps sampled lines visually above the surface they follow.
const lineLift = 1e-2

// BoundaryLines spans the grid with evenly spaced row and column lines,
// at most divisions of each.
func BoundaryLines(g grid.Grid, divisions int) []Line {
	nRows, nCols := g.Rows(), g.Cols()
	if nRows <= 0 || nCols <= 0 || divisions < 1 {
		return nil
	}
	stepR := max(1, nRows/divisions)
	stepC := max(1, nCols/divisions)
	var lines []Line
	for r := 0; r < nRows; r += stepR {
		lines = append(lines, Line{X1: 0, Y1: float64(r), X2: float64(nCols - 1), Y2: float64(r)})
	}
	for c := 0; c < nCols; c += stepC {
		lines = append(lines, Line{X1: float64(c), Y1: 0, X2: float64(c), Y2: float64(nRows - 1)})
	}
	return lines
}

// SampleLineHeights projects grid-space line segments onto the height field
// of the named substate. Each segment is walked in max(1, max(|dx|, |dy|))
// equal steps; at every step the height is bilinearly interpolated from the
// four surrounding cells and lifted by a small epsilon. One polyline is
// emitted per input line. Invalid bounds, an empty field name, or an empty
// grid yield no polylines.
func SampleLineHeights(g grid.Grid, lines []Line, field string, minValue, maxValue float64) [][]Point {
	nRows, nCols := g.Rows(), g.Cols()
	if nRows <= 0 || nCols <= 0 || len(lines) == 0 || field == "" ||
		math.IsNaN(minValue) || math.IsNaN(maxValue) || minValue >= maxValue {
		return nil
	}

	valueRange := math.Max(1e-12, maxValue-minValue)
	heightScale := float64(max(nRows, nCols)) / 3.0

	heightAt := func(row, col int) float64 {
		v := clampedValue(g, row, col, field, minValue, maxValue)
		normalized := (v - minValue) / valueRange
		return math.Min(1, math.Max(0, normalized)) * heightScale
	}

	sample := func(gx, gy float64) float64 {
		cx := math.Min(float64(nCols-1), math.Max(0, gx))
		cy := math.Min(float64(nRows-1), math.Max(0, gy))

		col0, row0 := int(math.Floor(cx)), int(math.Floor(cy))
		col1, row1 := min(col0+1, nCols-1), min(row0+1, nRows-1)
		fx, fy := cx-math.Floor(cx), cy-math.Floor(cy)

		h00 := heightAt(row0, col0)
		h10 := heightAt(row0, col1)
		h01 := heightAt(row1, col0)
		h11 := heightAt(row1, col1)

		h0 := h00 + (h10-h00)*fx
		h1 := h01 + (h11-h01)*fx
		return h0 + (h1-h0)*fy + lineLift
	}

	var polylines [][]Point
	for _, line := range lines {
		dx := line.X2 - line.X1
		dy := line.Y2 - line.Y1
		steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
		if steps < 1 {
			steps = 1
		}

		pts := make([]Point, 0, steps+1)
		for step := 0; step <= steps; step++ {
			t := float64(step) / float64(steps)
			gx := line.X1 + dx*t
			gy := line.Y1 + dy*t
			pts = append(pts, Point{
				X: gx,
				Y: float64(nRows-1) - gy,
				Z: sample(gx, gy),
			})
		}
		if len(pts) >= 2 {
			polylines = append(polylines, pts)
		}
	}
	return polylines
}
