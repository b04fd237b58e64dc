package plugin

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLocatePrefersToolchainRoot(t *testing.T) {
	b := newTestBuilder(t, Options{})
	t.Setenv(EnvToolchainRoot, "/tmp/bundle/usr/bin")
	b.exists = func(path string) bool {
		return path == "/tmp/bundle/usr/bin/clang++"
	}
	// A root hit must win without any probe.
	b.probe = func(string) bool {
		t.Fatal("a toolchain-root compiler must not be probed")
		return false
	}

	loc, ok := b.locate()
	if !ok {
		t.Fatal("expected a compiler")
	}
	if loc.Path != "/tmp/bundle/usr/bin/clang++" {
		t.Errorf("unexpected path %q", loc.Path)
	}
	if !loc.Bundle {
		t.Error("a /tmp toolchain is a bundle")
	}
}

func TestLocateBundleCandidates(t *testing.T) {
	b := newTestBuilder(t, Options{})
	b.exists = func(path string) bool {
		return path == "/opt/clang/bin/clang++"
	}
	loc, ok := b.locate()
	if !ok {
		t.Fatal("expected a compiler")
	}
	if loc.Path != "/opt/clang/bin/clang++" {
		t.Errorf("unexpected path %q", loc.Path)
	}
	if loc.Bundle {
		t.Error("a fixed install path is not a bundle")
	}
}

func TestLocateFallbackOrder(t *testing.T) {
	b := newTestBuilder(t, Options{})
	var probed []string
	b.probe = func(name string) bool {
		probed = append(probed, name)
		return name == "g++"
	}

	loc, ok := b.locate()
	if !ok {
		t.Fatal("expected a fallback compiler")
	}
	if loc.Path != "g++" {
		t.Errorf("expected g++, got %q", loc.Path)
	}
	if len(probed) == 0 || probed[0] != "clang++" {
		t.Errorf("the preferred compiler must be probed first, got %v", probed)
	}
}

func TestLocateNothingAvailable(t *testing.T) {
	b := newTestBuilder(t, Options{})
	if _, ok := b.locate(); ok {
		t.Error("expected no compiler")
	}
}

func TestIsBundlePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/tmp/bundle/usr/bin/clang++", true},
		{"/media/user/.mount_viewerX1/usr/bin/clang++", true},
		{"/usr/bin/clang++", false},
		{"/opt/clang/bin/clang++", false},
	}
	for _, tt := range tests {
		if got := isBundlePath(tt.path); got != tt.want {
			t.Errorf("isBundlePath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestBundleMount(t *testing.T) {
	got := bundleMount("/tmp/.mount_viewer/usr/bin/clang++")
	if got != "/tmp/.mount_viewer" {
		t.Errorf("expected /tmp/.mount_viewer, got %q", got)
	}
}

func TestDetectStandardUserChoice(t *testing.T) {
	b := newTestBuilder(t, Options{})
	if got := b.detectStandard("c++11", Location{Path: "g++"}); got != "c++11" {
		t.Errorf("a caller-supplied standard is authoritative, got %q", got)
	}
}

func TestDetectStandardFromCompiler(t *testing.T) {
	tests := []struct {
		name   string
		define string
		exit   int
		want   string
	}{
		{"c++23", "#define __cplusplus 202302L", 0, "c++23"},
		{"c++20", "#define __cplusplus 202002L", 0, "c++20"},
		{"c++17", "#define __cplusplus 201703L", 0, "c++17"},
		{"older default", "#define __cplusplus 201402L", 0, "c++14"},
		{"probe fails", "#define __cplusplus 202302L", 1, "c++14"},
		{"no define", "#define __STDC__ 1", 0, "c++14"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(t, Options{})
			b.run = func(_ string, onStdout, _ func(string)) int {
				onStdout("#define __GNUC__ 13")
				onStdout(tt.define)
				return tt.exit
			}
			if got := b.detectStandard("", Location{Path: "g++"}); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestReportedStandardCommand(t *testing.T) {
	b := newTestBuilder(t, Options{})
	var command string
	b.run = func(cmd string, onStdout, _ func(string)) int {
		command = cmd
		onStdout("#define __cplusplus 201703L")
		return 0
	}
	if _, ok := b.reportedStandard("/opt/clang/bin/clang++"); !ok {
		t.Fatal("expected a detected level")
	}
	want := `"/opt/clang/bin/clang++" -x c++ -E -dM /dev/null`
	if command != want {
		t.Errorf("expected %q, got %q", want, command)
	}
}

func TestClangIntrinsicsDir(t *testing.T) {
	mount := t.TempDir()
	pinned := filepath.Join(mount, "usr/lib/clang/17/include")

	never := func(string) bool { return false }
	always := func(string) bool { return true }

	if got := clangIntrinsicsDir(mount, always); got != pinned {
		t.Errorf("expected the pinned directory, got %q", got)
	}
	// No scan directory at all still resolves to the pinned path.
	if got := clangIntrinsicsDir(mount, never); got != pinned {
		t.Errorf("expected the pinned fallback, got %q", got)
	}

	// With the pin missing, the first versioned directory wins.
	versioned := filepath.Join(mount, "usr/lib/clang/21")
	if err := os.MkdirAll(versioned, 0o755); err != nil {
		t.Fatal(err)
	}
	if got := clangIntrinsicsDir(mount, never); got != filepath.Join(versioned, "include") {
		t.Errorf("expected the scanned directory, got %q", got)
	}
}
