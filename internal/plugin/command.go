package plugin

import (
	"os"
	"path/filepath"
	"strings"
)

// System include directories bundled with a relocatable toolchain, relative
// to the bundle mount point. Order matters: the C headers must come before
// the libc++ headers so libc++ can resolve them, then the platform config
// headers, compiler intrinsics, and finally the bundled GCC headers as a
// fallback for anything the LLVM set misses.
var bundleSystemIncludes = []string{
	"usr/include",
	"usr/include/x86_64-linux-gnu",
	"usr/include/c++/v1",
	"usr/include/c++",
	"usr/include/x86_64-unknown-linux-gnu/c++/v1",
	"usr/lib/clang/21/include",
	"usr/lib/gcc/x86_64-linux-gnu/14/include",
	"usr/lib/gcc/x86_64-linux-gnu/14/include-fixed",
	"usr/lib64/gcc/x86_64-pc-linux-gnu/15.2.1/include",
	"usr/lib64/gcc/x86_64-pc-linux-gnu/15.2.1/include-fixed",
}

// Subdirectories of the viewer project root that module sources may
// include adapter headers from.
var projectIncludeSubdirs = []string{
	"",
	"proxy",
	"config",
	"utilities",
	"visualiser",
	"widgets",
}

// vizIncludeSubdir is where the visualization library's headers live under
// a bundle mount's usr/include.
const vizIncludeSubdir = "vtk-9.1"

// buildCommand assembles the full shell command line for one compile. A
// bundled toolchain gets an LD_LIBRARY_PATH wrapper (RPATH does not carry
// into subprocesses), suppressed default include paths, and the explicit
// bundle-relative include list; a system toolchain uses the configured
// system include path for the visualization library.
func (b *Builder) buildCommand(loc Location, req Request, std string) string {
	var cmd strings.Builder

	if loc.Bundle {
		base := filepath.Dir(loc.Path)
		lib := base + "/../lib/clang-libs:" + base + "/../lib"
		cmd.WriteString("LD_LIBRARY_PATH=\"" + lib + ":$LD_LIBRARY_PATH\" ")
	}

	cmd.WriteString(loc.Path)
	cmd.WriteString(" -shared -fPIC -std=" + std)

	if loc.Bundle {
		cmd.WriteString(" -nostdinc -nostdinc++")
		mount := bundleMount(loc.Path)
		for _, rel := range bundleSystemIncludes {
			cmd.WriteString(" -isystem \"" + filepath.Join(mount, rel) + "\"")
		}
	}

	if dir := b.opts.EngineDir; dir != "" {
		cmd.WriteString(" -I\"" + filepath.Join(dir, "base") + "\"")
		cmd.WriteString(" -I\"" + dir + "\"")
	}

	root := b.opts.ProjectRoot
	if root == "" {
		root = os.Getenv(EnvProjectRoot)
	}
	if root != "" {
		for _, sub := range projectIncludeSubdirs {
			cmd.WriteString(" -I\"" + filepath.Join(root, sub) + "\"")
		}
	}

	if loc.Bundle {
		mount := bundleMount(loc.Path)
		inc := filepath.Join(mount, "usr/include")
		cmd.WriteString(" -I\"" + filepath.Join(inc, vizIncludeSubdir) + "\"")
		cmd.WriteString(" -isystem \"" + clangIntrinsicsDir(mount, b.exists) + "\"")
		// Project headers shipped inside the bundle.
		for _, sub := range projectIncludeSubdirs {
			cmd.WriteString(" -I\"" + filepath.Join(inc, sub) + "\"")
		}
	} else {
		cmd.WriteString(" -I" + b.opts.VizInclude)
	}

	if b.opts.ExtraFlags != "" {
		cmd.WriteString(" " + b.opts.ExtraFlags)
	}

	cmd.WriteString(" \"" + req.Source + "\"")
	cmd.WriteString(" -o \"" + req.Output + "\"")
	return cmd.String()
}

// bundleMount strips the trailing usr/bin from a bundled compiler path to
// recover the mount point.
func bundleMount(compilerPath string) string {
	return filepath.Dir(filepath.Dir(filepath.Dir(compilerPath)))
}

// clangIntrinsicsDir locates the bundled clang intrinsics headers. The
// pinned version is preferred; otherwise the first versioned directory
// under usr/lib/clang wins.
func clangIntrinsicsDir(mount string, exists func(string) bool) string {
	pinned := filepath.Join(mount, "usr/lib/clang/17/include")
	if exists(filepath.Join(pinned, "stddef.h")) {
		return pinned
	}
	libDir := filepath.Join(mount, "usr/lib/clang")
	entries, err := os.ReadDir(libDir)
	if err != nil {
		return pinned
	}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			return filepath.Join(libDir, e.Name(), "include")
		}
	}
	return pinned
}
