package generate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsandhei/yambs-sub000/src/core"
	"github.com/fsandhei/yambs-sub000/src/toolchain"
)

func TestValidateSanitizersRejectsThreadAndAddress(t *testing.T) {
	err := ValidateSanitizers([]string{"thread", "address"})
	require.Error(t, err)
	var cerr *core.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, core.KindCommandLine, cerr.Kind)
}

func TestValidateSanitizersAllowsOthers(t *testing.T) {
	assert.NoError(t, ValidateSanitizers([]string{"address"}))
	assert.NoError(t, ValidateSanitizers([]string{"thread"}))
	assert.NoError(t, ValidateSanitizers(nil))
}

func gccToolchain() *toolchain.Toolchain {
	return &toolchain.Toolchain{CxxCompiler: "/usr/bin/g++", Archiver: "/usr/bin/ar", Kind: toolchain.GCC, Version: "12.2.0"}
}

func TestGenerateEmptyRegistryWritesOnlyAllRule(t *testing.T) {
	buildDir := t.TempDir()
	registry := core.NewRegistry()
	gen := New(buildDir, gccToolchain(), registry)

	buildTypeDir, err := gen.Generate(Config{BuildType: Debug})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(buildTypeDir, "Makefile"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "all:")
	assert.NotContains(t, content, ".dir")
}

func TestGenerateSingleExecutable(t *testing.T) {
	buildDir := t.TempDir()
	manifestDir := t.TempDir()
	registry := core.NewRegistry()
	exe := core.NewFromSourceTarget(
		core.ID{ManifestDir: manifestDir, Type: core.TargetType{Category: core.ExecutableCategory, Name: "x"}},
		&core.Manifest{Directory: manifestDir},
	)
	exe.Sources = []string{filepath.Join(manifestDir, "a.cpp"), filepath.Join(manifestDir, "b.cpp")}
	exe.SetState(core.Registered)
	registry.Add(exe)

	gen := New(buildDir, gccToolchain(), registry)
	buildTypeDir, err := gen.Generate(Config{BuildType: Debug})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(buildTypeDir, "Makefile"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "all: x")
	assert.Contains(t, content, "a.o")
	assert.Contains(t, content, "b.o")
}

func TestGenerateSourceToObjectCorrespondence(t *testing.T) {
	buildDir := t.TempDir()
	manifestDir := t.TempDir()
	registry := core.NewRegistry()
	exe := core.NewFromSourceTarget(
		core.ID{ManifestDir: manifestDir, Type: core.TargetType{Category: core.ExecutableCategory, Name: "x"}},
		&core.Manifest{Directory: manifestDir},
	)
	sources := []string{filepath.Join(manifestDir, "a.cpp"), filepath.Join(manifestDir, "sub", "b.cpp")}
	exe.Sources = sources
	exe.SetState(core.Registered)
	registry.Add(exe)

	gen := New(buildDir, gccToolchain(), registry)
	buildTypeDir, err := gen.Generate(Config{BuildType: Debug})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(buildTypeDir, "progress.json"))
	require.NoError(t, err)
	var doc progressDoc
	require.NoError(t, json.Unmarshal(data, &doc))

	var xEntry *progressEntry
	for i := range doc.Targets {
		if doc.Targets[i].Target == "x" {
			xEntry = &doc.Targets[i]
		}
	}
	require.NotNil(t, xEntry)
	require.Len(t, xEntry.ObjectFiles, len(sources))
	for i, src := range sources {
		expected := objectPath(buildTypeDir, exe, src)
		assert.Equal(t, expected, xEntry.ObjectFiles[i])
		assert.True(t, strings.HasPrefix(expected, filepath.Join(buildTypeDir, "deps", "x.dir")))
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	buildDir := t.TempDir()
	manifestDir := t.TempDir()

	build := func(dir string) string {
		registry := core.NewRegistry()
		exe := core.NewFromSourceTarget(
			core.ID{ManifestDir: manifestDir, Type: core.TargetType{Category: core.ExecutableCategory, Name: "x"}},
			&core.Manifest{Directory: manifestDir},
		)
		exe.Sources = []string{filepath.Join(manifestDir, "a.cpp")}
		exe.SetState(core.Registered)
		registry.Add(exe)
		gen := New(dir, gccToolchain(), registry)
		buildTypeDir, err := gen.Generate(Config{BuildType: Debug})
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(buildTypeDir, "Makefile"))
		require.NoError(t, err)
		return string(data)
	}

	first := build(buildDir)
	second := build(buildDir)
	assert.Equal(t, first, second)
}

func TestRenderDebugMkSanitizerInBothCxxflagsAndLdflags(t *testing.T) {
	content := renderDebugMk([]string{"address"})
	assert.Contains(t, content, "CXXFLAGS += -fsanitize=address")
	assert.Contains(t, content, "LDFLAGS += -fsanitize=address")
}

func TestRenderDebugMkNoSanitizerMeansNeitherFlag(t *testing.T) {
	content := renderDebugMk(nil)
	assert.NotContains(t, content, "-fsanitize")
}

func TestRenderDefinesMkReflectsToolchainKind(t *testing.T) {
	gen := &Generator{Toolchain: gccToolchain()}
	content := gen.renderDefinesMk()
	assert.Contains(t, content, "CXX_USES_GCC := true")
	assert.Contains(t, content, "CXX_USES_CLANG := false")
}

func TestMacroNameSanitizesPunctuation(t *testing.T) {
	assert.Equal(t, "MY_LIB", macroName("my-lib"))
	assert.Equal(t, "ABC123", macroName("abc123"))
}
