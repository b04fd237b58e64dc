// Package export writes reconstructed surface meshes to interchange
// formats: a JSON document carrying full geometry plus provenance, and
// Wavefront OBJ for external mesh tools.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/quellen/calviz/internal/surface"
)

// Info records where a mesh came from.
type Info struct {
	Field string  `json:"field"`
	Step  int     `json:"step"`
	Rows  int     `json:"rows"`
	Cols  int     `json:"cols"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

type meshDocument struct {
	Info
	Points  [][3]float64 `json:"points"`
	Quads   [][4]int     `json:"quads"`
	Colors  []string     `json:"colors"`
	Normals [][3]float64 `json:"normals"`
}

// JSON writes the mesh document to path.
func JSON(path string, info Info, m *surface.Mesh) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeJSON(file, info, m)
}

// JSONStdout writes the mesh document to standard output.
func JSONStdout(info Info, m *surface.Mesh) error {
	return writeJSON(os.Stdout, info, m)
}

func writeJSON(w io.Writer, info Info, m *surface.Mesh) error {
	doc := meshDocument{
		Info:    info,
		Points:  make([][3]float64, len(m.Points)),
		Quads:   m.Quads,
		Colors:  make([]string, len(m.Colors)),
		Normals: make([][3]float64, len(m.Normals)),
	}
	if doc.Quads == nil {
		doc.Quads = [][4]int{}
	}
	for i, p := range m.Points {
		doc.Points[i] = [3]float64{p.X, p.Y, p.Z}
	}
	for i, c := range m.Colors {
		doc.Colors[i] = c.Hex()
	}
	for i, n := range m.Normals {
		doc.Normals[i] = [3]float64{n.X, n.Y, n.Z}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

type linesDocument struct {
	Info
	Polylines [][][3]float64 `json:"polylines"`
}

// LinesJSON writes sampled grid-line polylines to path.
func LinesJSON(path string, info Info, polylines [][]surface.Point) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeLinesJSON(file, info, polylines)
}

// LinesJSONStdout writes sampled grid-line polylines to standard output.
func LinesJSONStdout(info Info, polylines [][]surface.Point) error {
	return writeLinesJSON(os.Stdout, info, polylines)
}

func writeLinesJSON(w io.Writer, info Info, polylines [][]surface.Point) error {
	doc := linesDocument{Info: info, Polylines: make([][][3]float64, len(polylines))}
	for i, line := range polylines {
		doc.Polylines[i] = make([][3]float64, len(line))
		for j, p := range line {
			doc.Polylines[i][j] = [3]float64{p.X, p.Y, p.Z}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// OBJ writes the mesh as Wavefront OBJ with vertex normals. OBJ indices
// are 1-based.
func OBJ(path string, m *surface.Mesh) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeOBJ(file, m)
}

func writeOBJ(w io.Writer, m *surface.Mesh) error {
	for _, p := range m.Points {
		if _, err := fmt.Fprintf(w, "v %g %g %g\n", p.X, p.Y, p.Z); err != nil {
			return err
		}
	}
	for _, n := range m.Normals {
		if _, err := fmt.Fprintf(w, "vn %g %g %g\n", n.X, n.Y, n.Z); err != nil {
			return err
		}
	}
	for _, q := range m.Quads {
		if _, err := fmt.Fprintf(w, "f %d//%d %d//%d %d//%d %d//%d\n",
			q[0]+1, q[0]+1, q[1]+1, q[1]+1, q[2]+1, q[2]+1, q[3]+1, q[3]+1); err != nil {
			return err
		}
	}
	return nil
}
