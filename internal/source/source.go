// Package source loads cellular-automaton step data into grids. Variants
// form a sealed set selected at configuration-load time; each satisfies the
// same capability contract: initialize, list available steps, load one
// step, and list the substate fields it carries.
package source

import (
	"errors"
	"fmt"

	"github.com/quellen/calviz/internal/grid"
)

var (
	// ErrNoSteps indicates a source with no loadable step data.
	ErrNoSteps = errors.New("source: no steps available")

	// ErrStepNotFound indicates a request for a step the source does not have.
	ErrStepNotFound = errors.New("source: step not found")
)

// Source is the capability contract shared by all step-data variants.
type Source interface {
	// Init validates the source and reads its metadata.
	Init() error

	// Steps lists available step indices in ascending order.
	Steps() ([]int, error)

	// LoadStep loads one step into a grid. The returned grid is owned by
	// the caller and never mutated by the source afterwards.
	LoadStep(step int) (grid.Grid, error)

	// Fields lists the substate field names this source carries.
	Fields() []string
}

// New selects a source variant by kind. The variant set is sealed here
// rather than discovered at runtime.
func New(kind, dir string) (Source, error) {
	switch kind {
	case "", "csvdir":
		return NewCSVDir(dir), nil
	default:
		return nil, fmt.Errorf("source: unknown kind %q", kind)
	}
}
