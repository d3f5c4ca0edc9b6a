// Package manifest reads and validates a project's yambs.toml, producing the typed core.Manifest / core.ManifestData pair the
// Target Graph Builder consumes.
package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	"github.com/fsandhei/yambs-sub000/src/cli/logging"
	"github.com/fsandhei/yambs-sub000/src/core"
)

var log = logging.Log

// sourceExtensions are the only file extensions the parser recognises for
// a `sources` entry.
var sourceExtensions = map[string]bool{
	".cpp": true, ".cc": true, ".h": true, ".hpp": true,
}

// Parse reads <dir>/yambs.toml, validates it, and returns the manifest's
// identity plus its normalized target descriptions.
func Parse(dir string) (*core.Manifest, *core.ManifestData, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, core.FailedToCanonicalizePath(dir, err)
	}
	path := filepath.Join(absDir, core.ManifestFileName)
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, &core.Error{Kind: core.KindFileSystem, Path: path, Msg: "manifest not found", Err: err}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &core.Error{Kind: core.KindFileSystem, Path: path, Msg: "failed to read manifest", Err: err}
	}
	if !utf8.Valid(raw) {
		return nil, nil, &core.Error{Kind: core.KindParse, Path: path, Msg: "manifest is not valid UTF-8"}
	}

	var rm rawManifest
	dec := toml.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if _, err := dec.Decode(&rm); err != nil {
		return nil, nil, &core.Error{Kind: core.KindParse, Path: path, Msg: "failed to parse TOML", Err: err}
	}

	data, err := normalize(absDir, &rm)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("Parsed manifest %s: %d executable(s)/librar(y/ies)", path, len(data.Targets))
	return &core.Manifest{Directory: absDir, ModTime: info.ModTime()}, data, nil
}

func normalize(manifestDir string, rm *rawManifest) (*core.ManifestData, error) {
	data := &core.ManifestData{}
	if rm.ProjectConfig != nil {
		language := rm.ProjectConfig.Language
		if language == "" {
			language = "C++"
		}
		data.ProjectConfig = &core.ProjectConfig{CxxStd: rm.ProjectConfig.CxxStd, Language: language}
	}

	for _, name := range sortedKeys(rm.Executable) {
		t, err := normalizeTarget(manifestDir, core.TargetType{Category: core.ExecutableCategory, Name: name}, rm.Executable[name])
		if err != nil {
			return nil, err
		}
		data.Targets = append(data.Targets, t)
	}
	for _, name := range sortedKeys(rm.Library) {
		rt := rm.Library[name]
		kind := core.Static
		if rt.Type == "shared" {
			kind = core.Dynamic
		} else if rt.Type != "" && rt.Type != "static" {
			return nil, &core.Error{Kind: core.KindParse, Path: manifestDir, Target: name, Msg: "unknown library type " + rt.Type}
		}
		t, err := normalizeTarget(manifestDir, core.TargetType{Category: core.LibraryCategory, Library: kind, Name: name}, rt)
		if err != nil {
			return nil, err
		}
		data.Targets = append(data.Targets, t)
	}
	return data, nil
}

func normalizeTarget(manifestDir string, tt core.TargetType, rt rawTarget) (core.ParsedTarget, error) {
	if len(rt.Sources) == 0 {
		return core.ParsedTarget{}, &core.Error{Kind: core.KindParse, Path: manifestDir, Target: tt.Name, Msg: "target declares no sources"}
	}
	sources := make([]string, 0, len(rt.Sources))
	for _, s := range rt.Sources {
		abs := resolvePath(manifestDir, s)
		if _, err := os.Stat(abs); err != nil {
			return core.ParsedTarget{}, core.FailedToCanonicalizePath(s, err)
		}
		if !sourceExtensions[filepath.Ext(abs)] {
			return core.ParsedTarget{}, core.AssociatedFileErrorCouldNotSpecifyFileType(abs)
		}
		sources = append(sources, abs)
	}

	defines := make([]core.Define, 0, len(rt.Defines))
	for _, d := range rt.Defines {
		defines = append(defines, core.Define{Macro: d.Macro, Value: d.Value})
	}

	deps := make([]*core.Dependency, 0, len(rt.Dependencies))
	for _, name := range sortedKeys(rt.Dependencies) {
		dep, err := normalizeDependency(manifestDir, name, rt.Dependencies[name])
		if err != nil {
			return core.ParsedTarget{}, err
		}
		deps = append(deps, dep)
	}

	flags := core.TargetFlags{
		CXXFlagsAppend:           rt.CxxflagsAppend,
		CPPFlagsAppend:           rt.CppflagsAppend,
		AppendIncludeDirectories: resolveAll(manifestDir, rt.AppendIncludeDirectories),
		AppendSystemIncludeDirs:  resolveAll(manifestDir, rt.AppendSystemIncludeDirectories),
	}

	return core.ParsedTarget{Type: tt, Sources: sources, Dependencies: deps, Defines: defines, Flags: flags}, nil
}

func normalizeDependency(manifestDir, name string, rd rawDependency) (*core.Dependency, error) {
	set := 0
	if rd.Path != "" {
		set++
	}
	if rd.IncludeDirectory != "" {
		set++
	}
	if rd.PkgConfigSearchDir != "" || rd.PkgConfigDebugDir != "" || rd.PkgConfigReleaseDir != "" {
		set++
	}
	if set != 1 {
		return nil, &core.Error{Kind: core.KindParse, Path: manifestDir, Target: name,
			Msg: "dependency must set exactly one of path, include_directory or pkg_config_search_dir"}
	}

	switch {
	case rd.Path != "":
		origin := core.Include
		if rd.Origin == "System" {
			origin = core.System
		} else if rd.Origin != "" && rd.Origin != "Include" {
			return nil, &core.Error{Kind: core.KindParse, Path: manifestDir, Target: name, Msg: "unknown dependency origin " + rd.Origin}
		}
		return &core.Dependency{
			Kind:   core.SourceDependency,
			Name:   name,
			Path:   resolvePath(manifestDir, rd.Path),
			Origin: origin,
		}, nil
	case rd.IncludeDirectory != "":
		return &core.Dependency{
			Kind:             core.HeaderOnlyDependency,
			Name:             name,
			IncludeDirectory: resolvePath(manifestDir, rd.IncludeDirectory),
		}, nil
	default:
		debugDir := rd.PkgConfigDebugDir
		if debugDir == "" {
			debugDir = rd.PkgConfigSearchDir
		}
		releaseDir := rd.PkgConfigReleaseDir
		if releaseDir == "" {
			releaseDir = rd.PkgConfigSearchDir
		}
		return &core.Dependency{
			Kind:       core.PkgConfigDependencyKind,
			Name:       name,
			DebugDir:   resolvePath(manifestDir, debugDir),
			ReleaseDir: resolvePath(manifestDir, releaseDir),
		}, nil
	}
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}

func resolveAll(dir string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = resolvePath(dir, p)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
