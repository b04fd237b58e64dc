package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quellen/calviz/internal/grid"
)

const (
	metaFile = "grid.yaml"
	stepGlob = "step_*.csv"

	// colorField names the optional per-cell display color column.
	colorField = "color"
)

// Meta describes the grid dimensions and substate fields of a CSV step
// directory.
type Meta struct {
	Rows   int      `yaml:"rows"`
	Cols   int      `yaml:"cols"`
	Fields []string `yaml:"fields"`
}

// CSVDir reads steps from a directory of CSV files. Each step_NNNNNN.csv
// holds one header row naming the columns and rows*cols data rows in
// row-major order. A "color" column, when present, carries per-cell
// "#RRGGBB" display colors.
type CSVDir struct {
	dir  string
	meta Meta
}

func NewCSVDir(dir string) *CSVDir {
	return &CSVDir{dir: dir}
}

func (s *CSVDir) Init() error {
	data, err := os.ReadFile(filepath.Join(s.dir, metaFile))
	if err != nil {
		return err
	}
	var meta Meta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return err
	}
	if meta.Rows <= 0 || meta.Cols <= 0 {
		return fmt.Errorf("source: invalid grid dimensions %dx%d in %s", meta.Rows, meta.Cols, metaFile)
	}
	if len(meta.Fields) == 0 {
		return fmt.Errorf("source: no fields declared in %s", metaFile)
	}
	s.meta = meta
	return nil
}

func (s *CSVDir) Fields() []string { return s.meta.Fields }

// Rows and Cols expose the declared grid dimensions.
func (s *CSVDir) Rows() int { return s.meta.Rows }
func (s *CSVDir) Cols() int { return s.meta.Cols }

func (s *CSVDir) Steps() ([]int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, stepGlob))
	if err != nil {
		return nil, err
	}
	steps := make([]int, 0, len(matches))
	for _, m := range matches {
		name := filepath.Base(m)
		numeric := strings.TrimSuffix(strings.TrimPrefix(name, "step_"), ".csv")
		n, err := strconv.Atoi(numeric)
		if err != nil {
			continue
		}
		steps = append(steps, n)
	}
	sort.Ints(steps)
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	return steps, nil
}

func (s *CSVDir) LoadStep(step int) (grid.Grid, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("step_%06d.csv", step))
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %d", ErrStepNotFound, step)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("source: step %d is empty", step)
	}

	header := records[0]
	want := s.meta.Rows * s.meta.Cols
	if got := len(records) - 1; got != want {
		return nil, fmt.Errorf("source: step %d has %d cells, expected %d", step, got, want)
	}

	g := grid.NewDense(s.meta.Rows, s.meta.Cols)
	for i, record := range records[1:] {
		row, col := i/s.meta.Cols, i%s.meta.Cols
		for j, name := range header {
			if j >= len(record) {
				break
			}
			if name == colorField {
				if strings.HasPrefix(record[j], "#") {
					g.SetColor(row, col, grid.ParseHex(record[j]))
				}
				continue
			}
			g.SetValue(row, col, name, record[j])
		}
	}
	return g, nil
}
