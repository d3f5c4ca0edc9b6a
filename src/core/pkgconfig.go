package core

// PkgConfigInfo is the resolved set of compiler/linker flags the pkg-config
// resolver extracted for a PkgConfig dependency from the one search
// directory (debug or release) that matches the active build type. A Target's PkgConfig field stays nil until the resolver has
// run; the Build-File Generator reads it when emitting that target's rule.
type PkgConfigInfo struct {
	IncludeDirs []string
	OtherCFlags []string
	LinkLibs    []string
	LinkDirs    []string
}
