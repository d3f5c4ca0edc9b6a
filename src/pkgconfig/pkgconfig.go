// Package pkgconfig resolves PkgConfig dependency targets by shelling out
// to the system pkg-config tool, filling in a core.PkgConfigInfo for each
// target whose SourceKind is core.PkgConfigSource.
package pkgconfig

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fsandhei/yambs-sub000/src/cli/logging"
	"github.com/fsandhei/yambs-sub000/src/core"
)

var log = logging.Log

// BuildType selects which of a PkgConfig target's two search directories to
// query, mirroring the CLI's --build-type flag.
type BuildType int

const (
	Debug BuildType = iota
	Release
)

// Resolve runs pkg-config against target's search directory for buildType
// and stores the result on target.PkgConfig. target must have SourceKind
// core.PkgConfigSource; calling Resolve on any other kind is a programmer
// error.
func Resolve(target *core.Target, buildType BuildType) error {
	if target.SourceKind != core.PkgConfigSource {
		panic("pkgconfig.Resolve called on a non-PkgConfig target: " + target.String())
	}
	dir := target.DebugDir
	if buildType == Release {
		dir = target.ReleaseDir
	}

	name := target.ID.Type.Name
	pkgConfigPath := dir
	if existing := os.Getenv("PKG_CONFIG_PATH"); existing != "" {
		pkgConfigPath += string(os.PathListSeparator) + existing
	}
	env := append([]string{}, "PKG_CONFIG_PATH="+pkgConfigPath)

	includeDirs, err := run(env, name, "--cflags-only-I")
	if err != nil {
		return err
	}
	otherCFlags, err := run(env, name, "--cflags-only-other")
	if err != nil {
		return err
	}
	linkLibs, err := run(env, name, "--libs-only-l")
	if err != nil {
		return err
	}
	linkDirs, err := run(env, name, "--libs-only-L")
	if err != nil {
		return err
	}

	libNames := stripPrefix(linkLibs, "-l")
	if err := confirmArchivesExist(dir, libNames); err != nil {
		return err
	}

	target.PkgConfig = &core.PkgConfigInfo{
		IncludeDirs: stripPrefix(includeDirs, "-I"),
		OtherCFlags: otherCFlags,
		LinkLibs:    libNames,
		LinkDirs:    stripPrefix(linkDirs, "-L"),
	}
	log.Debug("Resolved pkg-config for %s from %s: %+v", name, dir, target.PkgConfig)
	return nil
}

func run(env []string, pkgName, flag string) ([]string, error) {
	cmd := exec.Command("pkg-config", flag, pkgName)
	cmd.Env = append(cmd.Environ(), env...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &core.Error{Kind: core.KindToolchain, Target: pkgName,
			Msg: "pkg-config " + flag + " failed: " + stderr.String(), Err: err}
	}
	return strings.Fields(out.String()), nil
}

// confirmArchivesExist requires that every -l<name> token pkg-config
// reported resolves to a lib<name>.a or lib<name>.so actually present in
// dir, so a stale or misconfigured .pc file fails fast with the library
// name rather than surfacing as an opaque linker error later.
func confirmArchivesExist(dir string, libNames []string) error {
	for _, name := range libNames {
		static := filepath.Join(dir, "lib"+name+".a")
		shared := filepath.Join(dir, "lib"+name+".so")
		if _, err := os.Stat(static); err == nil {
			continue
		}
		if _, err := os.Stat(shared); err == nil {
			continue
		}
		return &core.Error{Kind: core.KindFileSystem, Path: dir, Target: name,
			Msg: "pkg-config reported -l" + name + " but neither lib" + name + ".a nor lib" + name + ".so exists in the search directory"}
	}
	return nil
}

func stripPrefix(fields []string, prefix string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.TrimPrefix(f, prefix))
	}
	return out
}
