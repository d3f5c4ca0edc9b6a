package buildcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsandhei/yambs-sub000/src/core"
)

func TestRegistryRoundTrip(t *testing.T) {
	registry := core.NewRegistry()
	libID := core.ID{ManifestDir: "/lib", Type: core.TargetType{Category: core.LibraryCategory, Name: "mylib"}}
	lib := core.NewFromSourceTarget(libID, &core.Manifest{Directory: "/lib"})
	lib.Sources = []string{"/lib/m.cpp"}
	lib.SetState(core.Registered)
	registry.Add(lib)

	exeID := core.ID{ManifestDir: "/root", Type: core.TargetType{Category: core.ExecutableCategory, Name: "x"}}
	exe := core.NewFromSourceTarget(exeID, &core.Manifest{Directory: "/root"})
	exe.Sources = []string{"/root/x.cpp"}
	exe.AddDependency(&core.Dependency{Kind: core.SourceDependency, Name: "mylib", Path: "/lib", Target: lib})
	exe.SetState(core.Registered)
	registry.Add(exe)

	cache, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cache.StoreRegistry(registry))

	restored, ok := cache.LoadRegistry()
	require.True(t, ok)
	assert.Equal(t, 2, restored.Len())

	restoredExe := restored.Find(exeID)
	require.NotNil(t, restoredExe)
	require.Len(t, restoredExe.Dependencies, 1)
	restoredLib := restoredExe.Dependencies[0].Target
	require.NotNil(t, restoredLib)
	assert.Equal(t, libID, restoredLib.ID)
	assert.Equal(t, lib.Sources, restoredLib.Sources)

	// The dependency edge must point at the very target that was re-interned,
	// not an equal-but-distinct copy.
	assert.Same(t, restored.Find(libID), restoredLib)
}

func TestLoadRegistryMissReturnsFalse(t *testing.T) {
	cache, err := New(t.TempDir())
	require.NoError(t, err)

	_, ok := cache.LoadRegistry()
	assert.False(t, ok)
}

func TestRegistryRoundTripPreservesLeafKinds(t *testing.T) {
	registry := core.NewRegistry()
	header := core.NewHeaderOnlyTarget(core.ID{ManifestDir: "/inc", Type: core.TargetType{Name: "hdr"}}, "/inc")
	header.SetState(core.Registered)
	registry.Add(header)

	pc := core.NewPkgConfigTarget(core.ID{ManifestDir: "/pc|/pc", Type: core.TargetType{Name: "zlib"}}, "/pc", "/pc")
	pc.SetState(core.Registered)
	registry.Add(pc)

	cache, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cache.StoreRegistry(registry))

	restored, ok := cache.LoadRegistry()
	require.True(t, ok)

	restoredHeader := restored.Find(header.ID)
	require.NotNil(t, restoredHeader)
	assert.Equal(t, core.HeaderOnlySource, restoredHeader.SourceKind)
	assert.Equal(t, "/inc", restoredHeader.IncludeDirectory)

	restoredPC := restored.Find(pc.ID)
	require.NotNil(t, restoredPC)
	assert.Equal(t, core.PkgConfigSource, restoredPC.SourceKind)
	assert.Equal(t, "/pc", restoredPC.DebugDir)
}
