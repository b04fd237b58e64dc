package surface

import (
	"math"
	"strconv"
	"strings"

	"github.com/quellen/calviz/internal/grid"
)

// CellColor resolves the display color of one cell. With no specs the
// cell's own default color is used. With specs, each is tried in order and
// the first that yields a color wins, so multiple overlay fields coexist
// with priority. When nothing yields a color the flat scene background is
// returned.
func CellColor(row, col int, g grid.Grid, specs []*FieldSpec, background grid.Color) grid.Color {
	if len(specs) == 0 {
		if c, ok := FieldColor(row, col, g, nil); ok {
			return c
		}
		return background
	}
	for _, spec := range specs {
		if c, ok := FieldColor(row, col, g, spec); ok {
			return c
		}
	}
	return background
}

// FieldColor computes the color of one cell for a single field spec. With a
// gradient configured it parses the cell's encoded value and linearly
// interpolates between the two configured colors; values that fail to
// parse, fall on or outside the [Min, Max] bounds, or match an enabled
// NoValue sentinel yield no color. Without a gradient the cell's own
// default color for the field is returned, which may itself be absent.
func FieldColor(row, col int, g grid.Grid, spec *FieldSpec) (grid.Color, bool) {
	if !spec.HasGradient() {
		name := ""
		if spec != nil {
			name = spec.Name
		}
		return g.Cell(row, col).DefaultColor(name)
	}

	raw := g.Cell(row, col).EncodedValue(spec.Name)
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return grid.Color{}, false
	}

	switch {
	case !spec.HasBounds():
		return grid.Color{}, false
	case spec.NoValueEnabled && !math.IsNaN(spec.NoValue) && value == spec.NoValue:
		return grid.Color{}, false
	case value <= spec.Min || value >= spec.Max:
		// Bounds are an open interval; exact min/max count as no data.
		return grid.Color{}, false
	}

	t := (value - spec.Min) / (spec.Max - spec.Min)
	return lerpColor(grid.ParseHex(spec.MinColor), grid.ParseHex(spec.MaxColor), t), true
}

// lerpColor interpolates each channel, truncating toward zero so that a
// midpoint between #000000 and #FFFFFF lands on 127.
func lerpColor(lo, hi grid.Color, t float64) grid.Color {
	return grid.Color{
		R: uint8(float64(lo.R) + float64(int(hi.R)-int(lo.R))*t),
		G: uint8(float64(lo.G) + float64(int(hi.G)-int(lo.G))*t),
		B: uint8(float64(lo.B) + float64(int(hi.B)-int(lo.B))*t),
	}
}
