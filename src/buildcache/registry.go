package buildcache

import (
	"time"

	"github.com/fsandhei/yambs-sub000/src/core"
)

// registrySnapshot is the on-disk shape of the "dependencies" cache file:
// a flat, ordered list of targets with dependency edges resolved by ID
// rather than by pointer, so it round-trips through JSON.
type registrySnapshot struct {
	Targets []targetSnapshot `json:"targets"`
}

type targetSnapshot struct {
	ID               core.ID            `json:"id"`
	SourceKind       core.SourceKind    `json:"source_kind"`
	ManifestDir      string             `json:"manifest_dir,omitempty"`
	ManifestModTime  time.Time          `json:"manifest_mod_time,omitempty"`
	Sources          []string           `json:"sources,omitempty"`
	Defines          []core.Define      `json:"defines,omitempty"`
	IncludeDirectory string             `json:"include_directory,omitempty"`
	DebugDir         string             `json:"debug_dir,omitempty"`
	ReleaseDir       string             `json:"release_dir,omitempty"`
	IncludeDirs      []core.IncludeDir  `json:"include_dirs,omitempty"`
	Flags            core.TargetFlags   `json:"flags"`
	Dependencies     []dependencySnapshot `json:"dependencies,omitempty"`
	State            core.TargetState   `json:"state"`
}

type dependencySnapshot struct {
	Kind             core.DependencyKind `json:"kind"`
	Name             string              `json:"name"`
	Path             string              `json:"path,omitempty"`
	Origin           core.IncludeOrigin  `json:"origin"`
	IncludeDirectory string              `json:"include_directory,omitempty"`
	DebugDir         string              `json:"debug_dir,omitempty"`
	ReleaseDir       string              `json:"release_dir,omitempty"`
	TargetID         core.ID             `json:"target_id"`
}

func snapshotRegistry(registry *core.Registry) registrySnapshot {
	targets := registry.All()
	snap := registrySnapshot{Targets: make([]targetSnapshot, 0, len(targets))}
	for _, t := range targets {
		ts := targetSnapshot{
			ID:               t.ID,
			SourceKind:       t.SourceKind,
			Sources:          t.Sources,
			Defines:          t.Defines,
			IncludeDirectory: t.IncludeDirectory,
			DebugDir:         t.DebugDir,
			ReleaseDir:       t.ReleaseDir,
			IncludeDirs:      t.IncludeDirs,
			Flags:            t.Flags,
			State:            t.State(),
		}
		if t.Manifest != nil {
			ts.ManifestDir = t.Manifest.Directory
			ts.ManifestModTime = t.Manifest.ModTime
		}
		for _, dep := range t.Dependencies {
			ds := dependencySnapshot{
				Kind: dep.Kind, Name: dep.Name, Path: dep.Path, Origin: dep.Origin,
				IncludeDirectory: dep.IncludeDirectory, DebugDir: dep.DebugDir, ReleaseDir: dep.ReleaseDir,
			}
			if dep.Target != nil {
				ds.TargetID = dep.Target.ID
			}
			ts.Dependencies = append(ts.Dependencies, ds)
		}
		snap.Targets = append(snap.Targets, ts)
	}
	return snap
}

func restoreRegistry(snap registrySnapshot) *core.Registry {
	registry := core.NewRegistry()
	byID := make(map[core.ID]*core.Target, len(snap.Targets))

	for _, ts := range snap.Targets {
		var t *core.Target
		switch ts.SourceKind {
		case core.HeaderOnlySource:
			t = core.NewHeaderOnlyTarget(ts.ID, ts.IncludeDirectory)
		case core.PkgConfigSource:
			t = core.NewPkgConfigTarget(ts.ID, ts.DebugDir, ts.ReleaseDir)
		default:
			var m *core.Manifest
			if ts.ManifestDir != "" {
				m = &core.Manifest{Directory: ts.ManifestDir, ModTime: ts.ManifestModTime}
			}
			t = core.NewFromSourceTarget(ts.ID, m)
		}
		t.Sources = ts.Sources
		t.Defines = ts.Defines
		t.IncludeDirs = ts.IncludeDirs
		t.Flags = ts.Flags
		t.SetState(ts.State)
		registry.Add(t)
		byID[ts.ID] = t
	}

	// Second pass: edges need every target to already be interned.
	for _, ts := range snap.Targets {
		t := byID[ts.ID]
		for _, ds := range ts.Dependencies {
			t.AddDependency(&core.Dependency{
				Kind: ds.Kind, Name: ds.Name, Path: ds.Path, Origin: ds.Origin,
				IncludeDirectory: ds.IncludeDirectory, DebugDir: ds.DebugDir, ReleaseDir: ds.ReleaseDir,
				Target: byID[ds.TargetID],
			})
		}
	}
	return registry
}

// StoreRegistry serializes registry to the "dependencies" cache file.
func (c *Cache) StoreRegistry(registry *core.Registry) error {
	return c.Store(DependenciesFile, snapshotRegistry(registry))
}

// LoadRegistry reconstructs a Registry from the "dependencies" cache file.
// It returns false on a clean miss, matching Load's semantics.
func (c *Cache) LoadRegistry() (*core.Registry, bool) {
	var snap registrySnapshot
	if !c.Load(DependenciesFile, &snap) {
		return nil, false
	}
	return restoreRegistry(snap), true
}
