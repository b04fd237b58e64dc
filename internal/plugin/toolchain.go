package plugin

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const compilerBinary = "clang++"

// Location is a resolved compiler. Bundle is true when the compiler lives
// under a temporary mount directory rather than a fixed system path, which
// changes how include paths and library paths are assembled.
type Location struct {
	Path   string
	Bundle bool
}

// Relative and fixed locations a packaged install may place its compiler
// at, checked after the environment variable and the build-time root.
var bundleCandidates = []string{
	"../usr/bin/" + compilerBinary,
	"../../usr/bin/" + compilerBinary,
	"/usr/local/bin/" + compilerBinary,
	"/opt/clang/bin/" + compilerBinary,
}

var fallbackCompilers = []string{"g++", "clang++", "c++"}

// locate resolves the compiler to use, in priority order: the toolchain
// root from the environment, the build-time root, the fixed candidate
// paths, the caller-preferred compiler, then common fallbacks. A compiler
// found under a toolchain root is trusted without a liveness probe: probing
// a relocatable bundle's binary outside its mount context can spuriously
// fail on missing shared libraries.
func (b *Builder) locate() (Location, bool) {
	if p := b.bundledCompiler(); p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			b.log.Warn().Err(err).Str("path", p).Msg("could not resolve compiler path")
			abs = p
		}
		return Location{Path: abs, Bundle: isBundlePath(abs)}, true
	}
	if name := b.findAvailable(); name != "" {
		return Location{Path: name}, true
	}
	return Location{}, false
}

func (b *Builder) bundledCompiler() string {
	if root := os.Getenv(EnvToolchainRoot); root != "" {
		if p := filepath.Join(root, compilerBinary); b.exists(p) {
			return p
		}
	}
	if DefaultToolchainRoot != "" {
		if p := filepath.Join(DefaultToolchainRoot, compilerBinary); b.exists(p) {
			return p
		}
	}
	for _, p := range bundleCandidates {
		if b.exists(p) {
			return p
		}
	}
	return ""
}

func (b *Builder) findAvailable() string {
	if b.probe(b.opts.Compiler) {
		return b.opts.Compiler
	}
	for _, name := range fallbackCompilers {
		if name != b.opts.Compiler && b.probe(name) {
			b.log.Info().
				Str("preferred", b.opts.Compiler).
				Str("using", name).
				Msg("preferred compiler not found, using fallback")
			return name
		}
	}
	return ""
}

func isBundlePath(path string) bool {
	return strings.Contains(path, ".mount_") || strings.HasPrefix(path, "/tmp/")
}

// probeCompiler checks availability by running a version query.
func probeCompiler(compiler string) bool {
	cmd := exec.Command(compiler, "--version")
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}

// Language standards in preference order, newest first, keyed by the
// minimum __cplusplus level that selects them.
var standardLevels = []struct {
	level int64
	name  string
}{
	{202302, "c++23"},
	{202002, "c++20"},
	{201703, "c++17"},
}

const fallbackStandard = "c++14"

// detectStandard picks the language standard for a compile: the caller's
// choice if given, otherwise the newest standard the resolved toolchain
// reports, otherwise the hard-coded oldest supported standard.
func (b *Builder) detectStandard(user string, loc Location) string {
	if user != "" {
		return user
	}
	level, ok := b.reportedStandard(loc.Path)
	if !ok {
		b.log.Warn().Str("compiler", loc.Path).Msg("could not detect language standard, using fallback")
		return fallbackStandard
	}
	for _, s := range standardLevels {
		if level >= s.level {
			return s.name
		}
	}
	return fallbackStandard
}

// reportedStandard asks the compiler for its default __cplusplus level by
// preprocessing an empty translation unit.
func (b *Builder) reportedStandard(compiler string) (int64, bool) {
	var level int64
	found := false
	exit := b.run("\""+compiler+"\" -x c++ -E -dM /dev/null", func(line string) {
		fields := strings.Fields(line)
		if len(fields) == 3 && fields[0] == "#define" && fields[1] == "__cplusplus" {
			v, err := strconv.ParseInt(strings.TrimSuffix(fields[2], "L"), 10, 64)
			if err == nil {
				level = v
				found = true
			}
		}
	}, func(string) {})
	if exit != 0 || !found {
		return 0, false
	}
	return level, true
}
