package manifest

// rawManifest mirrors the TOML shape of yambs.toml exactly,
// deserialized with unknown fields rejected. Everything here is untyped
// relative to core.Target's model; normalize() turns it into
// core.ManifestData.
type rawManifest struct {
	ProjectConfig *rawProjectConfig    `toml:"project_config"`
	Executable    map[string]rawTarget `toml:"executable"`
	Library       map[string]rawTarget `toml:"library"`
}

type rawProjectConfig struct {
	CxxStd   string `toml:"cxx_std"`
	Language string `toml:"language"`
}

type rawTarget struct {
	Sources                         []string                 `toml:"sources"`
	CxxflagsAppend                  []string                 `toml:"cxxflags_append"`
	CppflagsAppend                  []string                 `toml:"cppflags_append"`
	AppendIncludeDirectories        []string                 `toml:"append_include_directories"`
	AppendSystemIncludeDirectories  []string                 `toml:"append_system_include_directories"`
	Defines                         []rawDefine              `toml:"defines"`
	Type                            string                   `toml:"type"` // library only: "static" | "shared"
	Dependencies                    map[string]rawDependency `toml:"dependencies"`
}

type rawDefine struct {
	Macro string `toml:"macro"`
	Value string `toml:"value"`
}

// rawDependency carries the union of all three dependency variants;
// normalize() picks the variant by which field is set and rejects a
// dependency that sets more than one or none.
type rawDependency struct {
	Path   string `toml:"path"`
	Origin string `toml:"origin"` // "Include" | "System", source deps only

	IncludeDirectory string `toml:"include_directory"`

	// pkg_config_search_dir sets both debug and release search dirs at
	// once; pkg_config_debug_dir / pkg_config_release_dir override either
	// independently when a manifest needs distinct directories per profile.
	PkgConfigSearchDir string `toml:"pkg_config_search_dir"`
	PkgConfigDebugDir   string `toml:"pkg_config_debug_dir"`
	PkgConfigReleaseDir string `toml:"pkg_config_release_dir"`
}
