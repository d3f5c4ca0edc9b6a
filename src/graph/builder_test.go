package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsandhei/yambs-sub000/src/core"
	"github.com/fsandhei/yambs-sub000/src/manifest"
)

func writeManifest(t *testing.T, dir, toml string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, core.ManifestFileName), []byte(toml), 0644))
}

func touchSource(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("// empty\n"), 0644))
}

func newBuilder() (*Builder, *core.Registry) {
	registry := core.NewRegistry()
	return NewBuilder(registry, ParserFunc(manifest.Parse)), registry
}

func TestBuildSingleExecutable(t *testing.T) {
	dir := t.TempDir()
	touchSource(t, dir, "a.cpp")
	touchSource(t, dir, "b.cpp")
	writeManifest(t, dir, `
[executable.x]
sources = ["a.cpp", "b.cpp"]
`)

	b, registry := newBuilder()
	targets, err := b.Build(dir)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "x", targets[0].ID.Type.Name)
	assert.Equal(t, core.Registered, targets[0].State())
	assert.Equal(t, 1, registry.Len())
}

func TestBuildLibraryWithSourceDependency(t *testing.T) {
	rootDir := t.TempDir()
	libDir := t.TempDir()
	touchSource(t, rootDir, "y.cpp")
	touchSource(t, libDir, "m.cpp")
	writeManifest(t, libDir, `
[library.mylib]
sources = ["m.cpp"]
`)
	writeManifest(t, rootDir, `
[executable.y]
sources = ["y.cpp"]

[executable.y.dependencies.mylib]
path = "`+libDir+`"
`)

	b, registry := newBuilder()
	_, err := b.Build(rootDir)
	require.NoError(t, err)
	assert.Equal(t, 2, registry.Len())

	exe := registry.Find(core.ID{ManifestDir: rootDir, Type: core.TargetType{Category: core.ExecutableCategory, Name: "y"}})
	require.NotNil(t, exe)
	require.Len(t, exe.Dependencies, 1)
	assert.True(t, exe.Dependencies[0].IsLibrary())
	assert.Equal(t, "libmylib.a", exe.Dependencies[0].Target.ID.Type.OutputFileName())
}

func TestBuildDetectsCycle(t *testing.T) {
	aDir := t.TempDir()
	bDir := t.TempDir()
	touchSource(t, aDir, "a.cpp")
	touchSource(t, bDir, "b.cpp")
	writeManifest(t, aDir, `
[library.a]
sources = ["a.cpp"]

[library.a.dependencies.b]
path = "`+bDir+`"
`)
	writeManifest(t, bDir, `
[library.b]
sources = ["b.cpp"]

[library.b.dependencies.a]
path = "`+aDir+`"
`)

	b, _ := newBuilder()
	_, err := b.Build(aDir)
	require.Error(t, err)
	var cerr *core.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, core.KindGraph, cerr.Kind)
	assert.Contains(t, err.Error(), aDir)
	assert.Contains(t, err.Error(), bDir)
}

func TestBuildDiamondDependencyInternsOnce(t *testing.T) {
	rootDir := t.TempDir()
	libDir := t.TempDir()
	touchSource(t, rootDir, "x.cpp")
	touchSource(t, rootDir, "y.cpp")
	touchSource(t, libDir, "m.cpp")
	writeManifest(t, libDir, `
[library.shared]
sources = ["m.cpp"]
`)
	writeManifest(t, rootDir, `
[executable.x]
sources = ["x.cpp"]

[executable.x.dependencies.shared]
path = "`+libDir+`"

[executable.y]
sources = ["y.cpp"]

[executable.y.dependencies.shared]
path = "`+libDir+`"
`)

	b, registry := newBuilder()
	_, err := b.Build(rootDir)
	require.NoError(t, err)

	// Two executables plus exactly one interned copy of the shared library.
	assert.Equal(t, 3, registry.Len())

	x := registry.Find(core.ID{ManifestDir: rootDir, Type: core.TargetType{Category: core.ExecutableCategory, Name: "x"}})
	y := registry.Find(core.ID{ManifestDir: rootDir, Type: core.TargetType{Category: core.ExecutableCategory, Name: "y"}})
	require.NotNil(t, x)
	require.NotNil(t, y)
	assert.Same(t, x.Dependencies[0].Target, y.Dependencies[0].Target)
}

func TestBuildEmptyManifestYieldsEmptyRegistry(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "")

	b, registry := newBuilder()
	targets, err := b.Build(dir)
	require.NoError(t, err)
	assert.Empty(t, targets)
	assert.Equal(t, 0, registry.Len())
}

func TestBuildHeaderOnlyDependency(t *testing.T) {
	rootDir := t.TempDir()
	incDir := t.TempDir()
	touchSource(t, rootDir, "x.cpp")
	writeManifest(t, rootDir, `
[executable.x]
sources = ["x.cpp"]

[executable.x.dependencies.hdr]
include_directory = "`+incDir+`"
`)

	b, registry := newBuilder()
	_, err := b.Build(rootDir)
	require.NoError(t, err)
	assert.Equal(t, 2, registry.Len())

	exe := registry.Find(core.ID{ManifestDir: rootDir, Type: core.TargetType{Category: core.ExecutableCategory, Name: "x"}})
	require.NotNil(t, exe)
	assert.False(t, exe.Dependencies[0].IsLibrary())
	found := false
	for _, d := range exe.IncludeDirs {
		if d.Path == incDir {
			found = true
		}
	}
	assert.True(t, found)
}
