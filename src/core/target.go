// Package core holds the central data model shared by every other
// component: the manifest, the target graph and its registry, and the
// error kinds that propagate out of them.
package core

import "fmt"

// IncludeOrigin says whether an include directory should be searched with
// -I (Include) or -isystem (System).
type IncludeOrigin int

const (
	Include IncludeOrigin = iota
	System
)

func (o IncludeOrigin) String() string {
	if o == System {
		return "System"
	}
	return "Include"
}

// LibraryKind distinguishes a static archive from a shared object.
type LibraryKind int

const (
	Static LibraryKind = iota
	Dynamic
)

func (k LibraryKind) String() string {
	if k == Dynamic {
		return "Dynamic"
	}
	return "Static"
}

// TargetCategory is the coarse shape of a Target: a linked executable or
// one of the two library kinds.
type TargetCategory int

const (
	ExecutableCategory TargetCategory = iota
	LibraryCategory
)

// TargetType is the second half of a Target's identity:
// Executable(name) or Library(kind, name).
type TargetType struct {
	Category TargetCategory
	Library  LibraryKind // only meaningful when Category == LibraryCategory
	Name     string
}

func (t TargetType) String() string {
	if t.Category == ExecutableCategory {
		return fmt.Sprintf("Executable(%s)", t.Name)
	}
	return fmt.Sprintf("Library(%s, %s)", t.Library, t.Name)
}

// OutputFileName returns the Make-visible artifact name for this target
// type: the bare executable name, or lib<name>.a / lib<name>.so.
func (t TargetType) OutputFileName() string {
	if t.Category == ExecutableCategory {
		return t.Name
	}
	if t.Library == Dynamic {
		return "lib" + t.Name + ".so"
	}
	return "lib" + t.Name + ".a"
}

// ID is a Target's registry identity: (manifest directory, target type).
// No two targets in a Registry may share an ID.
type ID struct {
	ManifestDir string
	Type        TargetType
}

func (id ID) String() string {
	return id.ManifestDir + ":" + id.Type.String()
}

// IncludeDir is one entry of a target's ordered, deduplicated include path
// list.
type IncludeDir struct {
	Path string
	Kind IncludeOrigin
}

// Define is a preprocessor macro, optionally with a value (`-DMACRO` or
// `-DMACRO=VALUE`).
type Define struct {
	Macro string
	Value string // empty if the define has no value
}

// String renders the define the way it's appended to CPPFLAGS.
func (d Define) String() string {
	if d.Value == "" {
		return "-D" + d.Macro
	}
	return "-D" + d.Macro + "=" + d.Value
}

// TargetFlags are the per-target compiler flag appendices a manifest entry
// may declare.
type TargetFlags struct {
	CXXFlagsAppend            []string
	CPPFlagsAppend            []string
	AppendIncludeDirectories  []string
	AppendSystemIncludeDirs   []string
}

// SourceKind distinguishes a Target built from its own sources from one
// materialized as a leaf to satisfy a header-only or pkg-config dependency.
type SourceKind int

const (
	FromSource SourceKind = iota
	HeaderOnlySource
	PkgConfigSource
)

// Target is the central, interned, registered entity of the build graph.
// A Target is constructed once by the Target Graph Builder (or restored from
// the cache); after that pass only its state and its PkgConfig field change.
type Target struct {
	ID ID

	SourceKind SourceKind

	// Populated when SourceKind == FromSource.
	Manifest     *Manifest
	Sources      []string // absolute paths
	Dependencies []*Dependency
	Defines      []Define

	// Populated when SourceKind == HeaderOnlySource.
	IncludeDirectory string

	// Populated when SourceKind == PkgConfigSource.
	DebugDir   string
	ReleaseDir string
	PkgConfig  *PkgConfigInfo // resolved lazily by the pkg-config resolver; nil until then

	IncludeDirs []IncludeDir
	Flags       TargetFlags

	state int32 // atomic TargetState
}

// NewFromSourceTarget constructs a Target backed by its own source files.
func NewFromSourceTarget(id ID, manifest *Manifest) *Target {
	return &Target{ID: id, SourceKind: FromSource, Manifest: manifest}
}

// NewHeaderOnlyTarget constructs a leaf Target for a header-only dependency.
func NewHeaderOnlyTarget(id ID, includeDir string) *Target {
	return &Target{ID: id, SourceKind: HeaderOnlySource, IncludeDirectory: includeDir}
}

// NewPkgConfigTarget constructs a leaf Target for a pkg-config dependency.
func NewPkgConfigTarget(id ID, debugDir, releaseDir string) *Target {
	return &Target{ID: id, SourceKind: PkgConfigSource, DebugDir: debugDir, ReleaseDir: releaseDir}
}

// IsExecutable reports whether this target links to an executable.
func (t *Target) IsExecutable() bool {
	return t.ID.Type.Category == ExecutableCategory
}

// AddIncludeDir appends path/kind to the target's include directory list if
// it isn't already present.
func (t *Target) AddIncludeDir(path string, kind IncludeOrigin) {
	for _, d := range t.IncludeDirs {
		if d.Path == path && d.Kind == kind {
			return
		}
	}
	t.IncludeDirs = append(t.IncludeDirs, IncludeDir{Path: path, Kind: kind})
}

// AddDependency appends a dependency edge. Called by the graph builder
// during the InProcess phase of construction, and by the cache when it
// restores a registry.
func (t *Target) AddDependency(dep *Dependency) {
	t.Dependencies = append(t.Dependencies, dep)
}

// String implements fmt.Stringer for logging.
func (t *Target) String() string {
	return t.ID.String()
}
