package core

// DependencyKind is the variant tag of a Dependency edge.
type DependencyKind int

const (
	// SourceDependency names another target built from its own manifest.
	SourceDependency DependencyKind = iota
	// HeaderOnlyDependency contributes only an include directory.
	HeaderOnlyDependency
	// PkgConfigDependencyKind contributes flags resolved via pkg-config.
	PkgConfigDependencyKind
)

// Dependency is a typed edge from one Target to another.
// All paths on it are canonicalized relative to the owning manifest's
// directory at construction time (invariant 4).
type Dependency struct {
	Kind DependencyKind

	// Name is the dependency's key in the manifest's dependency table,
	// also the name of the target it must resolve to in the sub-manifest.
	Name string

	// Path is the dependency's manifest directory, absolute. Populated for
	// SourceDependency.
	Path string
	// Origin says whether this dependency's own include directories should
	// be searched with -I or -isystem from the depending target's rule.
	// Populated for SourceDependency; defaults to Include.
	Origin IncludeOrigin

	// IncludeDirectory is populated for HeaderOnlyDependency.
	IncludeDirectory string

	// DebugDir / ReleaseDir are populated for PkgConfigDependencyKind.
	DebugDir   string
	ReleaseDir string

	// Target is the resolved node this edge points to, filled in by the
	// graph builder once the dependency has been registered.
	Target *Target
}

// IsLibrary reports whether the resolved dependency target links as a
// library archive/shared object the depending target must list as a
// Make prerequisite. Header-only and pkg-config leaves never qualify:
// neither has a Make rule that produces an archive, so listing one as a
// prerequisite would name a file that's never built.
func (d *Dependency) IsLibrary() bool {
	return d.Target != nil &&
		d.Target.SourceKind == FromSource &&
		d.Target.ID.Type.Category == LibraryCategory
}
