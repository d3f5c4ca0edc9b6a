package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyGCC(t *testing.T) {
	kind, err := classify("/usr/bin/g++")
	require.NoError(t, err)
	assert.Equal(t, GCC, kind)

	kind, err = classify("gcc-12")
	require.NoError(t, err)
	assert.Equal(t, GCC, kind)
}

func TestClassifyClang(t *testing.T) {
	kind, err := classify("/usr/bin/clang++")
	require.NoError(t, err)
	assert.Equal(t, Clang, kind)
}

func TestClassifyUnknown(t *testing.T) {
	_, err := classify("/usr/bin/tcc")
	require.Error(t, err)
}

func TestToolchainEqual(t *testing.T) {
	a := &Toolchain{CxxCompiler: "/usr/bin/g++", Archiver: "/usr/bin/ar", Kind: GCC, Version: "12.2.0"}
	b := &Toolchain{CxxCompiler: "/usr/bin/g++", Archiver: "/usr/bin/ar", Kind: GCC, Version: "12.2.0"}
	c := &Toolchain{CxxCompiler: "/usr/bin/clang++", Archiver: "/usr/bin/ar", Kind: Clang, Version: "15.0.0"}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func TestVersionPatternExtraction(t *testing.T) {
	match := versionPattern.FindString("g++ (Ubuntu 12.2.0-3ubuntu1) 12.2.0\nCopyright ...")
	assert.Equal(t, "12.2.0", match)
}
