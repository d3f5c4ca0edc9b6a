// Package buildcache persists and restores the toolchain, compiler,
// manifest timestamps, target registry and generator info between
// invocations, and decides whether that cached state is still valid.
package buildcache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/fsandhei/yambs-sub000/src/cli/logging"
	"github.com/fsandhei/yambs-sub000/src/core"
	"github.com/fsandhei/yambs-sub000/src/fs"
)

var log = logging.Log

// File name constants, one per cacher type.
const (
	CompilerFile     = "compiler"
	ToolchainFile    = "toolchain"
	DependenciesFile = "dependencies"
	ManifestFile     = "manifest"
	GeneratorFile    = "generator"
)

// Cache is a directory of JSON files under <build>/cache/.
type Cache struct {
	Dir string
}

// New returns a Cache rooted at <buildDir>/cache, creating it if absent.
func New(buildDir string) (*Cache, error) {
	dir := filepath.Join(buildDir, "cache")
	if err := os.MkdirAll(dir, fs.DirPermissions); err != nil {
		return nil, &core.Error{Kind: core.KindFileSystem, Path: dir, Msg: "failed to create cache directory", Err: err}
	}
	return &Cache{Dir: dir}, nil
}

func (c *Cache) path(name string) string {
	return filepath.Join(c.Dir, name)
}

// Store serializes value as JSON and writes it atomically under name.
func (c *Cache) Store(name string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return &core.Error{Kind: core.KindCache, Path: name, Msg: "failed to serialize cache entry", Err: err}
	}
	if err := fs.WriteFileAtomic(data, c.path(name), 0644); err != nil {
		return &core.Error{Kind: core.KindCache, Path: name, Msg: "failed to write cache entry", Err: err}
	}
	return nil
}

// Load reads name into out, a pointer. It returns false on a clean
// miss (file absent) or a corrupt file — per the propagation policy a
// cache read failure is non-fatal and treated as a miss, never an error
// the caller must handle.
func (c *Cache) Load(name string, out interface{}) bool {
	data, err := os.ReadFile(c.path(name))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Warning("cache entry %s is corrupt, treating as a miss: %s", name, err)
		return false
	}
	return true
}

// DetectChange reports whether the cache file named name exists and its
// deserialized content equals *current. current must be a pointer.
func (c *Cache) DetectChange(name string, current interface{}) bool {
	v := reflect.ValueOf(current)
	if v.Kind() != reflect.Ptr {
		panic("buildcache: DetectChange requires a pointer")
	}
	cached := reflect.New(v.Elem().Type())
	data, err := os.ReadFile(c.path(name))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, cached.Interface()); err != nil {
		return false
	}
	return reflect.DeepEqual(cached.Elem().Interface(), v.Elem().Interface())
}

// ManifestTimes is what gets stored under ManifestFile: one entry per
// manifest directory visited while building the last registry, valued by
// that manifest's modification time at cache-write time.
type ManifestTimes map[string]time.Time

// ManifestsStale reports whether any manifest directory recorded in cached
// now has a live modification time after the cached one, or has vanished —
// the recursive cache-validity rule: the cache is authoritative only when
// every dependency manifest's live mtime is no newer than what was cached.
func ManifestsStale(cached ManifestTimes) bool {
	for dir, cachedTime := range cached {
		path := filepath.Join(dir, core.ManifestFileName)
		info, err := os.Stat(path)
		if err != nil {
			return true
		}
		if info.ModTime().After(cachedTime) {
			return true
		}
	}
	return false
}
