// Package grid defines the read-only cell matrix consumed by the surface
// reconstruction code, plus a dense in-memory implementation used by the
// step-data sources.
package grid

// Cell is a single automaton cell. A cell exposes its substate values as
// encoded text and may additionally carry a precomputed display color.
type Cell interface {
	// EncodedValue returns the textual encoding of the named substate
	// field. An empty field name selects the cell's primary field.
	EncodedValue(field string) string

	// DefaultColor returns the cell's own display color for the named
	// field, if it has one. The second result is false when the cell has
	// no color of its own.
	DefaultColor(field string) (Color, bool)
}

// Grid is a 2D matrix of cells with O(1) access by row and column. The grid
// is owned by the caller; reconstruction never mutates it.
type Grid interface {
	Rows() int
	Cols() int
	Cell(row, col int) Cell
}

// DenseCell is a map-backed cell holding encoded field values and an
// optional display color.
type DenseCell struct {
	Values map[string]string
	Color  *Color
}

func (c *DenseCell) EncodedValue(field string) string {
	if field == "" {
		field = "value"
	}
	return c.Values[field]
}

func (c *DenseCell) DefaultColor(string) (Color, bool) {
	if c.Color == nil {
		return Color{}, false
	}
	return *c.Color, true
}

// Dense is a row-major in-memory grid.
type Dense struct {
	nRows, nCols int
	cells        []DenseCell
}

// NewDense allocates an nRows x nCols grid with empty cells.
func NewDense(nRows, nCols int) *Dense {
	cells := make([]DenseCell, nRows*nCols)
	for i := range cells {
		cells[i].Values = make(map[string]string)
	}
	return &Dense{nRows: nRows, nCols: nCols, cells: cells}
}

func (d *Dense) Rows() int { return d.nRows }
func (d *Dense) Cols() int { return d.nCols }

func (d *Dense) Cell(row, col int) Cell {
	return &d.cells[row*d.nCols+col]
}

// At returns the mutable cell at (row, col) for loaders.
func (d *Dense) At(row, col int) *DenseCell {
	return &d.cells[row*d.nCols+col]
}

// SetValue stores the encoded value of a field at (row, col).
func (d *Dense) SetValue(row, col int, field, value string) {
	d.At(row, col).Values[field] = value
}

// SetColor stores a per-cell display color at (row, col).
func (d *Dense) SetColor(row, col int, c Color) {
	d.At(row, col).Color = &c
}
