// Package plugin compiles user-supplied model and cell-type sources into
// shared-library modules loadable by the visualizer. It hides toolchain
// discovery (bundled relocatable compiler vs. system install), command-line
// assembly, and subprocess streaming behind a single Compile call that
// reports all failure through the returned Result.
package plugin

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Environment variables honored by the builder. The toolchain root points
// at a relocatable compiler bundle; the other two seed include paths.
const (
	EnvToolchainRoot = "CALVIZ_TOOLCHAIN_ROOT"
	EnvEngineDir     = "CALVIZ_ENGINE_DIR"
	EnvProjectRoot   = "CALVIZ_PROJECT_ROOT"
)

// Build-time defaults, overridable with -ldflags "-X ..." for packaged
// installs that ship their own toolchain.
var (
	DefaultToolchainRoot = ""
	DefaultEngineDir     = ""
	DefaultVizInclude    = "/usr/include/vtk-9.1"
	DefaultVizFlags      = ""
)

// Failure taxonomy. Result.Err wraps one of these; Compile itself never
// returns an error and never panics past its boundary.
var (
	ErrMissingSource = errors.New("plugin: source file does not exist")
	ErrNoCompiler    = errors.New("plugin: no C++ compiler found")
	ErrCompileFailed = errors.New("plugin: compilation failed")
)

// Request describes one compile invocation. Standard is optional; when
// empty the language standard is detected from the resolved toolchain.
type Request struct {
	Source   string
	Output   string
	Standard string
}

// Result collects everything a caller needs to know about one compile:
// the exact command line, the subprocess exit code, captured output, and
// the final verdict. Each Compile call owns a fresh Result.
type Result struct {
	Source   string
	Output   string
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Success  bool
}

// Err maps a failed result onto the builder's error taxonomy.
func (r *Result) Err() error {
	switch {
	case r.Success:
		return nil
	case r.Command == "":
		return fmt.Errorf("%w: %s", ErrMissingSource, r.Source)
	case strings.HasSuffix(r.Command, "(not found)"):
		return ErrNoCompiler
	default:
		return fmt.Errorf("%w (exit code %d)", ErrCompileFailed, r.ExitCode)
	}
}

// Progress receives advisory status lines during a compile. Callbacks run
// synchronously on whatever goroutine drains the subprocess pipes and must
// not block for long; panics are swallowed and logged.
type Progress func(line string)

// Options configures a Builder. Zero values fall back to environment
// variables and build-time defaults.
type Options struct {
	Compiler    string // preferred compiler name, default "clang++"
	EngineDir   string // engine header root (adds <dir>/base and <dir>)
	ProjectRoot string // viewer source root for adapter headers
	VizInclude  string // system visualization-library include directory
	ExtraFlags  string // externally supplied compile flag block
}

// Builder compiles modules. It is not safe for concurrent use; each call
// blocks until the compiler subprocess exits. No timeout is enforced.
type Builder struct {
	opts     Options
	log      zerolog.Logger
	progress Progress

	// Seams for tests; production defaults hit the real filesystem
	// and shell.
	exists func(path string) bool
	isFile func(path string) bool
	probe  func(compiler string) bool
	run    func(command string, onStdout, onStderr func(string)) int
}

// New returns a Builder with defaults resolved from opts, the environment,
// and build-time constants.
func New(opts Options, log zerolog.Logger) *Builder {
	if opts.Compiler == "" {
		opts.Compiler = compilerBinary
	}
	if opts.EngineDir == "" {
		if dir := os.Getenv(EnvEngineDir); dir != "" {
			opts.EngineDir = dir
		} else {
			opts.EngineDir = DefaultEngineDir
		}
	}
	if opts.VizInclude == "" {
		opts.VizInclude = DefaultVizInclude
	}
	if opts.ExtraFlags == "" {
		opts.ExtraFlags = DefaultVizFlags
	}
	return &Builder{
		opts:   opts,
		log:    log,
		exists: fileExists,
		isFile: isRegularFile,
		probe:  probeCompiler,
		run:    runShell,
	}
}

// OnProgress registers an advisory progress callback.
func (b *Builder) OnProgress(fn Progress) { b.progress = fn }

// Compile builds a single source file into a shared module. Success requires
// both a zero exit code and the output artifact existing as a regular file;
// some compilers report success without producing output under unusual flag
// combinations.
func (b *Builder) Compile(req Request) *Result {
	res := &Result{Source: req.Source, Output: req.Output}

	if !b.exists(req.Source) {
		res.Stderr = "source file does not exist: " + req.Source
		return res
	}

	b.report("checking C++ compiler availability...")

	loc, ok := b.locate()
	if !ok {
		res.Stderr = "no C++ compiler found; install clang++, g++, or c++"
		res.Command = b.opts.Compiler + " (not found)"
		b.report("ERROR: no C++ compiler found")
		return res
	}
	if loc.Bundle {
		b.report("using bundled toolchain: " + loc.Path)
	}

	b.report("preparing compilation command...")
	std := b.detectStandard(req.Standard, loc)
	res.Command = b.buildCommand(loc, req, std)
	b.log.Debug().Str("command", res.Command).Msg("compiling module")

	b.report("compiling module...")
	lineCount := 0
	res.ExitCode = b.run(res.Command,
		func(line string) {
			res.Stdout += line + "\n"
			if line != "" {
				lineCount++
				// Batch informational output to one update per
				// five lines.
				if lineCount%5 == 0 {
					b.report(fmt.Sprintf("compiling... (%d lines)", lineCount))
				}
			}
		},
		func(line string) {
			res.Stderr += line + "\n"
			if line != "" {
				b.report("Error: " + line)
			}
		})

	if res.ExitCode == 0 && b.isFile(req.Output) {
		res.Success = true
		b.log.Info().Str("output", req.Output).Msg("module compiled")
	} else {
		b.log.Error().Int("exit", res.ExitCode).Msg("module compilation failed")
	}
	return res
}

func (b *Builder) report(msg string) {
	if b.progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.log.Warn().Interface("panic", r).Msg("progress callback panicked")
		}
	}()
	b.progress(msg)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isRegularFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
