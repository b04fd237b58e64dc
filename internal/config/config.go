// Package config holds the viewer configuration loaded from YAML: toolchain
// settings for module compilation, scene appearance, and persistent
// per-substate display specs. A loaded Config is treated as immutable and
// passed explicitly into reconstruction calls.
package config

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quellen/calviz/internal/grid"
	"github.com/quellen/calviz/internal/surface"
)

const (
	DefaultCompiler   = "clang++"
	DefaultVizInclude = "/usr/include/vtk-9.1"
	DefaultBackground = "#303030"
	DefaultGridColor  = "#C8C8C8"
)

type Config struct {
	Toolchain  Toolchain  `yaml:"toolchain"`
	Appearance Appearance `yaml:"appearance"`
	Fields     []Field    `yaml:"fields"`
}

// Toolchain configures module compilation. The relocatable bundle root is
// intentionally absent: it comes from the environment or build-time
// constants only.
type Toolchain struct {
	Compiler    string `yaml:"compiler"`
	Standard    string `yaml:"standard"`
	EngineDir   string `yaml:"engine_dir"`
	ProjectRoot string `yaml:"project_root"`
	VizInclude  string `yaml:"viz_include"`
	ExtraFlags  string `yaml:"extra_flags"`
}

type Appearance struct {
	Background string `yaml:"background"`
	GridColor  string `yaml:"grid_color"`
}

// Field is the YAML form of a substate display spec. Min, Max, and NoValue
// are pointers so that "absent" survives a round trip; absent maps to NaN.
type Field struct {
	Name           string   `yaml:"name"`
	Min            *float64 `yaml:"min,omitempty"`
	Max            *float64 `yaml:"max,omitempty"`
	MinColor       string   `yaml:"min_color,omitempty"`
	MaxColor       string   `yaml:"max_color,omitempty"`
	NoValue        *float64 `yaml:"no_value,omitempty"`
	NoValueEnabled bool     `yaml:"no_value_enabled,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Toolchain: Toolchain{
			Compiler:   DefaultCompiler,
			VizInclude: DefaultVizInclude,
		},
		Appearance: Appearance{
			Background: DefaultBackground,
			GridColor:  DefaultGridColor,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Spec converts a Field into the reconstruction package's form.
func (f Field) Spec() *surface.FieldSpec {
	return &surface.FieldSpec{
		Name:           f.Name,
		Min:            orNaN(f.Min),
		Max:            orNaN(f.Max),
		MinColor:       f.MinColor,
		MaxColor:       f.MaxColor,
		NoValue:        orNaN(f.NoValue),
		NoValueEnabled: f.NoValueEnabled,
	}
}

// FieldSpecs returns all configured field specs in file order. Order is the
// coloring priority.
func (c *Config) FieldSpecs() []*surface.FieldSpec {
	specs := make([]*surface.FieldSpec, 0, len(c.Fields))
	for _, f := range c.Fields {
		specs = append(specs, f.Spec())
	}
	return specs
}

// FieldSpec returns the spec for one named field, or nil.
func (c *Config) FieldSpec(name string) *surface.FieldSpec {
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Spec()
		}
	}
	return nil
}

// BackgroundColor returns the flat scene background color.
func (c *Config) BackgroundColor() grid.Color {
	if c.Appearance.Background == "" {
		return grid.ParseHex(DefaultBackground)
	}
	return grid.ParseHex(c.Appearance.Background)
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
