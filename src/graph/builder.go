// Package graph builds the cycle-free Target graph from a parsed manifest.
// It is a pure function of (manifest path, registry): it allocates no
// goroutines and never suspends on anything but the file reads the
// Manifest Parser does on its behalf.
package graph

import (
	"github.com/fsandhei/yambs-sub000/src/cli/logging"
	"github.com/fsandhei/yambs-sub000/src/core"
)

var log = logging.Log

// Parser is the Manifest Parser's interface as seen by the graph builder.
// Injected so this package doesn't need to import the manifest package
// directly (tests can substitute a fake without touching disk).
type Parser interface {
	Parse(dir string) (*core.Manifest, *core.ManifestData, error)
}

// ParserFunc adapts a plain function to the Parser interface.
type ParserFunc func(dir string) (*core.Manifest, *core.ManifestData, error)

func (f ParserFunc) Parse(dir string) (*core.Manifest, *core.ManifestData, error) { return f(dir) }

// Builder constructs a Registry from a root manifest, recursing into
// dependency manifests as it goes.
type Builder struct {
	Registry *core.Registry
	Parser   Parser
}

// NewBuilder returns a Builder that populates registry using parser to
// read manifest files.
func NewBuilder(registry *core.Registry, parser Parser) *Builder {
	return &Builder{Registry: registry, Parser: parser}
}

// Build parses the manifest at rootDir and registers every target it
// declares (and transitively, every target those depend on), returning the
// root-level targets in the order the Manifest Parser lists them:
// executables sorted by name, then libraries sorted by name. The order the
// targets are written in the manifest is not kept.
func (b *Builder) Build(rootDir string) ([]*core.Target, error) {
	manifest, data, err := b.Parser.Parse(rootDir)
	if err != nil {
		return nil, err
	}
	return b.buildManifest(manifest, data)
}

func (b *Builder) buildManifest(manifest *core.Manifest, data *core.ManifestData) ([]*core.Target, error) {
	out := make([]*core.Target, 0, len(data.Targets))
	for _, parsed := range data.Targets {
		t, err := b.resolveTarget(manifest, parsed)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// resolveTarget interns a single parsed target by ID if it's already
// registered, otherwise allocates it InProcess, resolves every
// dependency edge, then moves it to Registered.
func (b *Builder) resolveTarget(manifest *core.Manifest, parsed core.ParsedTarget) (*core.Target, error) {
	id := core.ID{ManifestDir: manifest.Directory, Type: parsed.Type}
	if existing := b.Registry.Find(id); existing != nil {
		return existing, nil
	}

	target := core.NewFromSourceTarget(id, manifest)
	target.Sources = parsed.Sources
	target.Defines = parsed.Defines
	target.Flags = parsed.Flags
	for _, p := range parsed.Flags.AppendIncludeDirectories {
		target.AddIncludeDir(p, core.Include)
	}
	for _, p := range parsed.Flags.AppendSystemIncludeDirs {
		target.AddIncludeDir(p, core.System)
	}
	target.SetState(core.InProcess)
	b.Registry.Add(target)

	for _, dep := range parsed.Dependencies {
		if err := b.resolveDependency(manifest.Directory, target, dep); err != nil {
			return nil, err
		}
		target.AddDependency(dep)
	}

	target.SetState(core.Registered)
	log.Debug("Registered target %s", target)
	return target, nil
}

// resolveDependency fills in dep.Target, recursing into the dependency's
// own manifest for SourceDependency edges, or materializing a leaf target
// for HeaderOnly / PkgConfig edges.
func (b *Builder) resolveDependency(fromManifestDir string, owner *core.Target, dep *core.Dependency) error {
	switch dep.Kind {
	case core.HeaderOnlyDependency:
		id := core.ID{ManifestDir: dep.IncludeDirectory, Type: core.TargetType{Category: core.LibraryCategory, Name: dep.Name}}
		leaf := b.Registry.Find(id)
		if leaf == nil {
			leaf = core.NewHeaderOnlyTarget(id, dep.IncludeDirectory)
			leaf.AddIncludeDir(dep.IncludeDirectory, core.Include)
			leaf.SetState(core.Registered)
			b.Registry.Add(leaf)
		}
		dep.Target = leaf
		owner.AddIncludeDir(dep.IncludeDirectory, dep.Origin)
		return nil

	case core.PkgConfigDependencyKind:
		id := core.ID{ManifestDir: dep.DebugDir + "|" + dep.ReleaseDir, Type: core.TargetType{Category: core.LibraryCategory, Name: dep.Name}}
		leaf := b.Registry.Find(id)
		if leaf == nil {
			leaf = core.NewPkgConfigTarget(id, dep.DebugDir, dep.ReleaseDir)
			leaf.SetState(core.Registered)
			b.Registry.Add(leaf)
		}
		dep.Target = leaf
		return nil

	default: // core.SourceDependency
		depManifest, depData, err := b.Parser.Parse(dep.Path)
		if err != nil {
			return err
		}
		parsed := depData.FindTarget(dep.Name)
		if parsed == nil {
			return &core.Error{Kind: core.KindParse, Path: dep.Path, Target: dep.Name, Msg: "dependency manifest declares no target with this name"}
		}
		id := core.ID{ManifestDir: depManifest.Directory, Type: parsed.Type}
		if existing := b.Registry.Find(id); existing != nil {
			if existing.State() == core.InProcess {
				return core.Circulation(dep.Path, fromManifestDir)
			}
			dep.Target = existing
			owner.AddIncludeDir(dep.Path, dep.Origin)
			return nil
		}
		target, err := b.resolveTarget(depManifest, *parsed)
		if err != nil {
			return err
		}
		dep.Target = target
		owner.AddIncludeDir(dep.Path, dep.Origin)
		return nil
	}
}
