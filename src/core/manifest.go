package core

import "time"

// ManifestFileName is the file every project directory must carry.
const ManifestFileName = "yambs.toml"

// ProjectConfig is the optional `[project_config]` table of a manifest.
type ProjectConfig struct {
	CxxStd   string // e.g. "c++17", as written in the manifest; the build command takes the standard from --std and does not read this field
	Language string // "C++" or "C"; empty defaults to "C++"
}

// Manifest identifies a parsed yambs.toml on disk: the directory it lives
// in and its modification time, used by the cache's staleness rule.
type Manifest struct {
	Directory string
	ModTime   time.Time
}

// ParsedTarget is one `[executable.<name>]` or `[library.<name>]` entry
// after normalization: paths canonicalized to absolute, dependency paths
// resolved relative to the manifest directory, library kind defaulted.
// It is the Manifest Parser's per-target output; the
// Target Graph Builder consumes a ManifestData's Targets to construct
// registered Target nodes.
type ParsedTarget struct {
	Type         TargetType
	Sources      []string // absolute paths
	Dependencies []*Dependency
	Defines      []Define
	Flags        TargetFlags
}

// ManifestData is the Manifest Parser's typed output for one manifest file.
type ManifestData struct {
	ProjectConfig *ProjectConfig
	Targets       []ParsedTarget
}

// FindTarget returns the first parsed target named name, of either
// category, or nil. Used by the graph builder when it needs to recurse into a
// dependency's manifest and pick out the one target that satisfies it.
func (m *ManifestData) FindTarget(name string) *ParsedTarget {
	for i := range m.Targets {
		if m.Targets[i].Type.Name == name {
			return &m.Targets[i]
		}
	}
	return nil
}
