// Package surface derives display colors and 3D height geometry from a grid
// of cells, tolerating missing, malformed, and sentinel-marked values.
package surface

import "math"

// FieldSpec is the per-substate display configuration. Min and Max are NaN
// when unset; MinColor and MaxColor are "#RRGGBB" strings, empty when no
// gradient is configured. NoValue marks a sentinel that, when enabled,
// flags a cell as carrying no meaningful data.
type FieldSpec struct {
	Name           string
	Min            float64
	Max            float64
	MinColor       string
	MaxColor       string
	NoValue        float64
	NoValueEnabled bool
}

// HasGradient reports whether both gradient colors are configured.
func (s *FieldSpec) HasGradient() bool {
	return s != nil && s.MinColor != "" && s.MaxColor != ""
}

// HasBounds reports whether both Min and Max are set.
func (s *FieldSpec) HasBounds() bool {
	return s != nil && !math.IsNaN(s.Min) && !math.IsNaN(s.Max)
}
