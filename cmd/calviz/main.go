package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quellen/calviz/internal/config"
	"github.com/quellen/calviz/internal/export"
	"github.com/quellen/calviz/internal/plugin"
	"github.com/quellen/calviz/internal/render"
	"github.com/quellen/calviz/internal/source"
	"github.com/quellen/calviz/internal/surface"
	"github.com/quellen/calviz/internal/tui"
)

var (
	configFile string
	dataDir    string

	// compile
	outputFile string
	cppStd     string
	compiler   string

	// reconstruction
	fieldName string
	minVal    float64
	maxVal    float64

	// render/profile/lines
	canvasW       int
	canvasH       int
	profileRow    int
	lineDivisions int

	// export
	exportFormat string

	verbose bool
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// main registers the calviz commands; the bare invocation opens the
// interactive viewer on the data directory.
func main() {
	rootCmd := &cobra.Command{
		Use:   "calviz",
		Short: "cellular automaton substate visualizer",
		RunE:  runView,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".", "step data directory")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")

	compileCmd := &cobra.Command{
		Use:   "compile [source.cpp]",
		Short: "compile a model module into a loadable plugin",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompile,
	}
	compileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output shared library path (required)")
	compileCmd.Flags().StringVar(&cppStd, "std", "", "C++ standard (default: detect from toolchain)")
	compileCmd.Flags().StringVar(&compiler, "compiler", "", "preferred compiler name")
	compileCmd.MarkFlagRequired("output")

	stepsCmd := &cobra.Command{
		Use:   "steps",
		Short: "list available simulation steps",
		RunE:  runSteps,
	}

	fieldsCmd := &cobra.Command{
		Use:   "fields",
		Short: "list substate fields and their display specs",
		RunE:  runFields,
	}

	renderCmd := &cobra.Command{
		Use:   "render [step]",
		Short: "render one step as a wireframe snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRender,
	}
	renderCmd.Flags().IntVar(&canvasW, "width", 100, "canvas width (chars)")
	renderCmd.Flags().IntVar(&canvasH, "height", 30, "canvas height (chars)")
	addFieldFlags(renderCmd)

	profileCmd := &cobra.Command{
		Use:   "profile [step]",
		Short: "plot a height cross-section of one grid row",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runProfile,
	}
	profileCmd.Flags().IntVar(&profileRow, "row", 0, "grid row to sample")
	addFieldFlags(profileCmd)

	linesCmd := &cobra.Command{
		Use:   "lines [step]",
		Short: "sample grid-overlay line heights above the surface",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLines,
	}
	linesCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output path (default: stdout json)")
	linesCmd.Flags().IntVar(&lineDivisions, "divisions", 8, "overlay lines per axis")
	addFieldFlags(linesCmd)

	exportCmd := &cobra.Command{
		Use:   "export [step]",
		Short: "export the reconstructed mesh",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExport,
	}
	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output path (default: stdout json)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "json or obj")
	addFieldFlags(exportCmd)

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "interactive surface viewer",
		RunE:  runView,
	}
	addFieldFlags(viewCmd)
	addFieldFlags(rootCmd)

	rootCmd.AddCommand(compileCmd, stepsCmd, fieldsCmd, renderCmd, profileCmd, linesCmd, exportCmd, viewCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func addFieldFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&fieldName, "field", "", "substate field (default: first configured)")
	cmd.Flags().Float64Var(&minVal, "min", math.NaN(), "minimum field value")
	cmd.Flags().Float64Var(&maxVal, "max", math.NaN(), "maximum field value")
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(configFile)
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if compiler == "" {
		compiler = cfg.Toolchain.Compiler
	}
	if cppStd == "" {
		cppStd = cfg.Toolchain.Standard
	}

	builder := plugin.New(plugin.Options{
		Compiler:    compiler,
		EngineDir:   cfg.Toolchain.EngineDir,
		ProjectRoot: cfg.Toolchain.ProjectRoot,
		VizInclude:  cfg.Toolchain.VizInclude,
		ExtraFlags:  cfg.Toolchain.ExtraFlags,
	}, newLogger())
	builder.OnProgress(func(line string) {
		fmt.Println(dimStyle.Render("· " + line))
	})

	res := builder.Compile(plugin.Request{
		Source:   args[0],
		Output:   outputFile,
		Standard: cppStd,
	})
	if !res.Success {
		if res.Stderr != "" {
			fmt.Fprint(os.Stderr, res.Stderr)
		}
		fmt.Println(failStyle.Render("✗ compilation failed"))
		return res.Err()
	}
	fmt.Println(okStyle.Render("✓ module compiled: ") + res.Output)
	return nil
}

func openSource() (source.Source, error) {
	src, err := source.New("csvdir", dataDir)
	if err != nil {
		return nil, err
	}
	if err := src.Init(); err != nil {
		return nil, err
	}
	return src, nil
}

// resolveField picks the field and bounds to visualize from flags and
// config, in that priority.
func resolveField(cfg *config.Config, src source.Source) (string, float64, float64, error) {
	name := fieldName
	if name == "" {
		for _, f := range cfg.Fields {
			if f.Spec().HasBounds() {
				name = f.Name
				break
			}
		}
	}
	if name == "" {
		fields := src.Fields()
		if len(fields) == 0 {
			return "", 0, 0, errors.New("no substate fields available")
		}
		name = fields[0]
	}

	lo, hi := minVal, maxVal
	if spec := cfg.FieldSpec(name); spec != nil {
		if math.IsNaN(lo) {
			lo = spec.Min
		}
		if math.IsNaN(hi) {
			hi = spec.Max
		}
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || lo >= hi {
		return "", 0, 0, fmt.Errorf("field %q needs valid bounds: set --min/--max or configure them", name)
	}
	return name, lo, hi, nil
}

func pickStep(src source.Source, args []string) (int, error) {
	steps, err := src.Steps()
	if err != nil {
		return 0, err
	}
	if len(args) == 0 {
		return steps[len(steps)-1], nil
	}
	want, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid step %q", args[0])
	}
	for _, s := range steps {
		if s == want {
			return s, nil
		}
	}
	return 0, fmt.Errorf("step %d not found", want)
}

func runSteps(cmd *cobra.Command, args []string) error {
	src, err := openSource()
	if err != nil {
		return err
	}
	steps, err := src.Steps()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tFILE")
	for _, s := range steps {
		fmt.Fprintf(w, "%d\tstep_%06d.csv\n", s, s)
	}
	return w.Flush()
}

func runFields(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src, err := openSource()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tMIN\tMAX\tGRADIENT\tNOVALUE")
	for _, name := range src.Fields() {
		spec := cfg.FieldSpec(name)
		if spec == nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\n", name)
			continue
		}
		gradient := "-"
		if spec.HasGradient() {
			gradient = spec.MinColor + " → " + spec.MaxColor
		}
		noValue := "-"
		if spec.NoValueEnabled && !math.IsNaN(spec.NoValue) {
			noValue = strconv.FormatFloat(spec.NoValue, 'g', -1, 64)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			name, formatBound(spec.Min), formatBound(spec.Max), gradient, noValue)
	}
	return w.Flush()
}

func formatBound(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func buildStepMesh(args []string) (*surface.Mesh, export.Info, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, export.Info{}, err
	}
	src, err := openSource()
	if err != nil {
		return nil, export.Info{}, err
	}
	name, lo, hi, err := resolveField(cfg, src)
	if err != nil {
		return nil, export.Info{}, err
	}
	step, err := pickStep(src, args)
	if err != nil {
		return nil, export.Info{}, err
	}
	g, err := src.LoadStep(step)
	if err != nil {
		return nil, export.Info{}, err
	}
	mesh := surface.BuildMesh(g, name, lo, hi, cfg.FieldSpecs(), cfg.BackgroundColor())
	info := export.Info{
		Field: name,
		Step:  step,
		Rows:  g.Rows(),
		Cols:  g.Cols(),
		Min:   lo,
		Max:   hi,
	}
	return mesh, info, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	mesh, info, err := buildStepMesh(args)
	if err != nil {
		return err
	}
	canvas := render.NewCanvas(canvasW, canvasH)
	cam := render.NewCamera()
	cam.RotateX(-1.0)
	render.Draw(canvas, render.MeshWireframe(mesh), cam)
	fmt.Print(canvas.String())
	fmt.Printf("%s step %d · field %s · %d points · %d quads\n",
		dimStyle.Render("▸"), info.Step, info.Field, len(mesh.Points), len(mesh.Quads))
	return nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src, err := openSource()
	if err != nil {
		return err
	}
	name, lo, hi, err := resolveField(cfg, src)
	if err != nil {
		return err
	}
	step, err := pickStep(src, args)
	if err != nil {
		return err
	}
	g, err := src.LoadStep(step)
	if err != nil {
		return err
	}
	if profileRow < 0 || profileRow >= g.Rows() {
		return fmt.Errorf("row %d out of range [0, %d)", profileRow, g.Rows())
	}

	line := []surface.Line{{
		X1: 0, Y1: float64(profileRow),
		X2: float64(g.Cols() - 1), Y2: float64(profileRow),
	}}
	polylines := surface.SampleLineHeights(g, line, name, lo, hi)
	if len(polylines) == 0 {
		return errors.New("no samples produced")
	}
	heights := make([]float64, len(polylines[0]))
	for i, p := range polylines[0] {
		heights[i] = p.Z
	}
	fmt.Printf("field %s · step %d · row %d\n", name, step, profileRow)
	fmt.Println(asciigraph.Plot(heights, asciigraph.Height(14), asciigraph.Width(min(len(heights)*2, 120))))
	return nil
}

func runLines(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src, err := openSource()
	if err != nil {
		return err
	}
	name, lo, hi, err := resolveField(cfg, src)
	if err != nil {
		return err
	}
	step, err := pickStep(src, args)
	if err != nil {
		return err
	}
	g, err := src.LoadStep(step)
	if err != nil {
		return err
	}

	polylines := surface.SampleLineHeights(g, surface.BoundaryLines(g, lineDivisions), name, lo, hi)
	info := export.Info{Field: name, Step: step, Rows: g.Rows(), Cols: g.Cols(), Min: lo, Max: hi}
	if outputFile == "" {
		return export.LinesJSONStdout(info, polylines)
	}
	if err := export.LinesJSON(outputFile, info, polylines); err != nil {
		return err
	}
	fmt.Println(okStyle.Render("✓ exported: ") + outputFile)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	mesh, info, err := buildStepMesh(args)
	if err != nil {
		return err
	}
	switch exportFormat {
	case "json":
		if outputFile == "" {
			return export.JSONStdout(info, mesh)
		}
		if err := export.JSON(outputFile, info, mesh); err != nil {
			return err
		}
	case "obj":
		if outputFile == "" {
			return errors.New("obj export needs --output")
		}
		if err := export.OBJ(outputFile, mesh); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", exportFormat)
	}
	fmt.Println(okStyle.Render("✓ exported: ") + outputFile)
	return nil
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src, err := openSource()
	if err != nil {
		return err
	}
	name, lo, hi, err := resolveField(cfg, src)
	if err != nil {
		return err
	}
	return tui.Run(src, dataDir, name, lo, hi, cfg)
}
