package buildcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsandhei/yambs-sub000/src/core"
)

func TestStoreLoadRoundTrip(t *testing.T) {
	cache, err := New(t.TempDir())
	require.NoError(t, err)

	type payload struct {
		Name string
		N    int
	}
	in := payload{Name: "gcc", N: 12}
	require.NoError(t, cache.Store(CompilerFile, in))

	var out payload
	require.True(t, cache.Load(CompilerFile, &out))
	assert.Equal(t, in, out)
}

func TestLoadMissReturnsFalse(t *testing.T) {
	cache, err := New(t.TempDir())
	require.NoError(t, err)

	var out struct{ X int }
	assert.False(t, cache.Load(ToolchainFile, &out))
}

func TestLoadCorruptFileReturnsFalse(t *testing.T) {
	cache, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(cache.Dir, GeneratorFile), []byte("not json"), 0644))

	var out struct{ X int }
	assert.False(t, cache.Load(GeneratorFile, &out))
}

func TestDetectChange(t *testing.T) {
	cache, err := New(t.TempDir())
	require.NoError(t, err)

	type payload struct{ N int }
	require.NoError(t, cache.Store(ManifestFile, payload{N: 1}))

	assert.True(t, cache.DetectChange(ManifestFile, &payload{N: 1}))
	assert.False(t, cache.DetectChange(ManifestFile, &payload{N: 2}))
}

func TestManifestsStaleDetectsTouchedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, core.ManifestFileName)
	require.NoError(t, os.WriteFile(path, []byte(""), 0644))
	info, err := os.Stat(path)
	require.NoError(t, err)

	cached := ManifestTimes{dir: info.ModTime()}
	assert.False(t, ManifestsStale(cached))

	// A manifest modified after the cached timestamp must be detected.
	future := info.ModTime().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))
	assert.True(t, ManifestsStale(cached))
}

func TestManifestsStaleDetectsMissingManifest(t *testing.T) {
	cached := ManifestTimes{"/does/not/exist": time.Now()}
	assert.True(t, ManifestsStale(cached))
}
