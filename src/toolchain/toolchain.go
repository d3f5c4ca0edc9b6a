// Package toolchain discovers and validates the C++ compiler, linker,
// stdlib and archiver a build will use.
package toolchain

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/BurntSushi/toml"

	"github.com/fsandhei/yambs-sub000/src/cli/logging"
	"github.com/fsandhei/yambs-sub000/src/core"
)

var log = logging.Log

// ToolchainFileName is the optional override file, read from
// <manifest_dir>/.yambs/toolchain.toml.
const ToolchainFileName = "toolchain.toml"

// CompilerKind is which compiler family the resolved CXX compiler belongs
// to, used to select the GCC- or Clang-specific warning set.
type CompilerKind int

const (
	UnknownCompiler CompilerKind = iota
	GCC
	Clang
)

func (k CompilerKind) String() string {
	switch k {
	case GCC:
		return "GCC"
	case Clang:
		return "Clang"
	default:
		return "Unknown"
	}
}

var (
	gccPattern   = regexp.MustCompile(`^(g\+\+.*|gcc.*)$`)
	clangPattern = regexp.MustCompile(`^clang.*$`)
	versionPattern = regexp.MustCompile(`\d+\.\d+\.\d+`)
)

// Toolchain is the validated record the rest of the pipeline consumes. Its
// deserialized form is what the Cache compares for equality when deciding
// whether a build directory must be cleaned.
type Toolchain struct {
	CxxCompiler string `json:"cxx_compiler"`
	Linker      string `json:"linker,omitempty"`
	Stdlib      string `json:"stdlib,omitempty"`
	Archiver    string `json:"archiver"`
	Kind        CompilerKind `json:"kind"`
	Version     string `json:"version"` // semver string; kept as a string so JSON round-trips exactly
}

// rawToolchainFile mirrors .yambs/toolchain.toml.
type rawToolchainFile struct {
	CXX struct {
		Compiler string `toml:"compiler"`
		Linker   string `toml:"linker"`
		Stdlib   string `toml:"stdlib"`
	} `toml:"CXX"`
	Archiver string `toml:"archiver"`
}

// Resolve discovers the compiler and archiver to build with — a
// .yambs/toolchain.toml override first, then CXX/AR environment
// variables, falling back to a PATH search for ar (there is no PATH
// search for the compiler; without one of the first two it is an error)
// — and returns a Toolchain
// with CxxCompiler/Archiver always set, classified, and version-probed.
// It does not run the sample compile; call Validate for that.
func Resolve(manifestDir string) (*Toolchain, error) {
	t := &Toolchain{}

	tcPath := filepath.Join(manifestDir, ".yambs", ToolchainFileName)
	if data, err := os.ReadFile(tcPath); err == nil {
		var raw rawToolchainFile
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, &core.Error{Kind: core.KindParse, Path: tcPath, Msg: "failed to parse toolchain.toml", Err: err}
		}
		if raw.CXX.Compiler == "" {
			return nil, &core.Error{Kind: core.KindParse, Path: tcPath, Msg: "CXX.compiler is mandatory"}
		}
		t.CxxCompiler = raw.CXX.Compiler
		t.Linker = raw.CXX.Linker
		t.Stdlib = raw.CXX.Stdlib
		t.Archiver = raw.Archiver
	} else if cxx := os.Getenv("CXX"); cxx != "" {
		t.CxxCompiler = cxx
		t.Archiver = os.Getenv("AR")
	} else {
		return nil, &core.Error{Kind: core.KindToolchain, Msg: "no compiler found: set CXX, or add .yambs/toolchain.toml"}
	}

	if t.Archiver == "" {
		path, err := exec.LookPath("ar")
		if err != nil {
			return nil, &core.Error{Kind: core.KindToolchain, Msg: "no archiver found: set AR, or ensure ar is on PATH", Err: err}
		}
		t.Archiver = path
	}

	kind, err := classify(t.CxxCompiler)
	if err != nil {
		return nil, err
	}
	t.Kind = kind

	version, err := probeVersion(t.CxxCompiler)
	if err != nil {
		return nil, err
	}
	t.Version = version.String()

	log.Info("Resolved toolchain: %s (%s) %s", t.CxxCompiler, t.Kind, t.Version)
	return t, nil
}

// classify matches the compiler executable's basename against the GCC and
// Clang patterns.
func classify(compiler string) (CompilerKind, error) {
	base := filepath.Base(compiler)
	switch {
	case gccPattern.MatchString(base):
		return GCC, nil
	case clangPattern.MatchString(base):
		return Clang, nil
	default:
		return UnknownCompiler, core.InvalidCompiler(compiler)
	}
}

// probeVersion runs `<compiler> --version` and parses the first X.Y.Z
// substring as a semver.
func probeVersion(compiler string) (*semver.Version, error) {
	cmd := exec.Command(compiler, "--version")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return nil, &core.Error{Kind: core.KindToolchain, Path: compiler, Msg: "failed to run --version", Err: err}
	}
	match := versionPattern.FindString(out.String())
	if match == "" {
		return nil, core.FailedToFindVersionPattern(compiler, out.String())
	}
	v, err := semver.NewVersion(match)
	if err != nil {
		return nil, &core.Error{Kind: core.KindToolchain, Path: compiler, Msg: "failed to parse version " + match, Err: err}
	}
	return v, nil
}

// Equal reports structural equality between two toolchains, used by the
// Cache's "detect_change" comparison.
func (t *Toolchain) Equal(other *Toolchain) bool {
	if other == nil {
		return false
	}
	return *t == *other
}

const stubSource = "int main(){return 0;}\n"

// Validate sample-compiles a trivial main.cpp written to scratchDir with
// the resolved compiler, requiring a zero exit, to catch a toolchain that
// resolves to a path but can't actually compile anything.
func Validate(ctx context.Context, t *Toolchain, scratchDir string) error {
	if err := os.MkdirAll(scratchDir, 0775); err != nil {
		return &core.Error{Kind: core.KindFileSystem, Path: scratchDir, Msg: "failed to create scratch directory", Err: err}
	}
	mainPath := filepath.Join(scratchDir, "main.cpp")
	if err := os.WriteFile(mainPath, []byte(stubSource), 0644); err != nil {
		return &core.Error{Kind: core.KindFileSystem, Path: mainPath, Msg: "failed to write sample source", Err: err}
	}
	outPath := filepath.Join(scratchDir, "a.out")
	cmd := exec.CommandContext(ctx, t.CxxCompiler, "-I"+scratchDir, "-o", outPath, mainPath)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return &core.Error{Kind: core.KindToolchain, Path: t.CxxCompiler, Msg: "sample compile failed: " + out.String(), Err: err}
	}
	log.Debug("Sample compile with %s succeeded", t.CxxCompiler)
	return nil
}

// ResolveAndValidate resolves a toolchain and, unless cached equals the
// freshly resolved one, runs the sample compile. If cached is non-nil and
// differs from the resolved toolchain, the build fails outright — the
// cache is not silently invalidated because a toolchain change can
// invalidate existing object files.
func ResolveAndValidate(ctx context.Context, manifestDir, scratchDir string, cached *Toolchain) (*Toolchain, error) {
	t, err := Resolve(manifestDir)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		if !t.Equal(cached) {
			return nil, core.StaleToolchain(cached.CxxCompiler+" "+cached.Version, t.CxxCompiler+" "+t.Version)
		}
		log.Debug("Cached toolchain matches detected one, skipping sample compile")
		return t, nil
	}
	if err := Validate(ctx, t, scratchDir); err != nil {
		return nil, err
	}
	return t, nil
}
