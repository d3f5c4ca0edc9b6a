// Package generate emits the Make build-file tree the Build Driver runs:
// a toolchain-conditional set of include files under <build>/make_include/,
// one Makefile and a progress descriptor per build type, and a per-target,
// per-source object-rule layout under deps/.
package generate

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsandhei/yambs-sub000/src/cli/logging"
	"github.com/fsandhei/yambs-sub000/src/core"
	"github.com/fsandhei/yambs-sub000/src/fs"
	"github.com/fsandhei/yambs-sub000/src/toolchain"
)

var log = logging.Log

// BuildType selects the optimization/debug profile, and names the
// subdirectory of <build>/ the Makefile and its object tree live under.
type BuildType int

const (
	Debug BuildType = iota
	Release
)

func (b BuildType) String() string {
	if b == Release {
		return "release"
	}
	return "debug"
}

// Config is the generator's configuration input; the build command fills it
// from its --build-type, --std and --sanitizer flags.
type Config struct {
	BuildType  BuildType
	CxxStd     string   // e.g. "c++17"; defaults to "c++17" if empty
	Sanitizers []string // any of "address", "thread", "leak", "undefined"
	Defines    []string // project-wide macro names, appended as -D<name> to CPPFLAGS in default_make.mk
}

// ValidateSanitizers rejects the combination of "thread" and "address",
// which the underlying sanitizer runtimes cannot both be linked for.
func ValidateSanitizers(sanitizers []string) error {
	hasThread, hasAddress := false, false
	for _, s := range sanitizers {
		switch s {
		case "thread":
			hasThread = true
		case "address":
			hasAddress = true
		}
	}
	if hasThread && hasAddress {
		return core.IllegalSanitizerCombination("thread", "address")
	}
	return nil
}

// Generator walks a populated registry and writes the build-file tree.
type Generator struct {
	BuildDir  string
	Toolchain *toolchain.Toolchain
	Registry  *core.Registry
}

// New returns a Generator rooted at buildDir.
func New(buildDir string, tc *toolchain.Toolchain, registry *core.Registry) *Generator {
	return &Generator{BuildDir: buildDir, Toolchain: tc, Registry: registry}
}

// Generate writes make_include/ (always refreshed) and <build_type>/
// (Makefile, progress.json, deps/...), and returns the build-type
// directory the Build Driver should invoke Make from.
func (g *Generator) Generate(cfg Config) (string, error) {
	if err := ValidateSanitizers(cfg.Sanitizers); err != nil {
		return "", err
	}
	if cfg.CxxStd == "" {
		cfg.CxxStd = "c++17"
	}

	includeDir := filepath.Join(g.BuildDir, "make_include")
	if err := os.MkdirAll(includeDir, fs.DirPermissions); err != nil {
		return "", &core.Error{Kind: core.KindFileSystem, Path: includeDir, Msg: "failed to create make_include directory", Err: err}
	}
	if err := g.writeIncludeFiles(includeDir, cfg); err != nil {
		return "", err
	}

	buildTypeDir := filepath.Join(g.BuildDir, cfg.BuildType.String())
	if err := os.MkdirAll(filepath.Join(buildTypeDir, "deps"), fs.DirPermissions); err != nil {
		return "", &core.Error{Kind: core.KindFileSystem, Path: buildTypeDir, Msg: "failed to create build-type directory", Err: err}
	}

	targets := g.Registry.Filter(func(t *core.Target) bool { return t.SourceKind == core.FromSource })
	topLevel := g.Registry.TopLevel(rootManifestDir(targets))

	makefilePath := filepath.Join(buildTypeDir, "Makefile")
	content := g.renderMakefile(buildTypeDir, targets, topLevel)
	if err := fs.WriteFileAtomic([]byte(content), makefilePath, 0644); err != nil {
		return "", &core.Error{Kind: core.KindFileSystem, Path: makefilePath, Msg: "failed to write Makefile", Err: err}
	}

	// Progress descriptor last: the Build Driver only starts polling once
	// it can observe this file, by which point the Makefile is complete.
	progressPath := filepath.Join(buildTypeDir, "progress.json")
	progressData, err := g.renderProgress(buildTypeDir, targets, topLevel)
	if err != nil {
		return "", err
	}
	if err := fs.WriteFileAtomic(progressData, progressPath, 0644); err != nil {
		return "", &core.Error{Kind: core.KindFileSystem, Path: progressPath, Msg: "failed to write progress descriptor", Err: err}
	}

	log.Info("Generated build files in %s", buildTypeDir)
	return buildTypeDir, nil
}

// rootManifestDir picks the manifest directory most targets were declared
// in directly — in practice the single root manifest the CLI was pointed
// at. Falls back to "" for an empty registry (the boundary case where the
// generator writes only the all: rule with no dependencies).
func rootManifestDir(targets []*core.Target) string {
	counts := map[string]int{}
	best, bestCount := "", -1
	for _, t := range targets {
		if t.Manifest == nil {
			continue
		}
		dir := t.Manifest.Directory
		counts[dir]++
		if counts[dir] > bestCount {
			best, bestCount = dir, counts[dir]
		}
	}
	return best
}

func macroName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func targetDirName(t *core.Target) string {
	return t.ID.Type.Name + ".dir"
}

// objectPath returns the object file a source compiles to, preserving the
// source's subtree under the manifest directory so two sources with the
// same base name in different subdirectories never collide.
func objectPath(buildTypeDir string, t *core.Target, source string) string {
	rel := source
	if t.Manifest != nil {
		if r, err := filepath.Rel(t.Manifest.Directory, source); err == nil {
			rel = r
		}
	}
	ext := filepath.Ext(rel)
	stem := strings.TrimSuffix(rel, ext)
	return filepath.Join(buildTypeDir, "deps", targetDirName(t), stem+".o")
}

