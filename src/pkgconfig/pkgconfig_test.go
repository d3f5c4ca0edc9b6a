package pkgconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripPrefix(t *testing.T) {
	assert.Equal(t, []string{"foo", "bar"}, stripPrefix([]string{"-Ifoo", "-Ibar"}, "-I"))
	assert.Equal(t, []string{}, stripPrefix([]string{}, "-l"))
}

func TestConfirmArchivesExistStatic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "libfoo.a"), []byte{}, 0644))

	assert.NoError(t, confirmArchivesExist(dir, []string{"foo"}))
}

func TestConfirmArchivesExistShared(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "libfoo.so"), []byte{}, 0644))

	assert.NoError(t, confirmArchivesExist(dir, []string{"foo"}))
}

func TestConfirmArchivesExistMissing(t *testing.T) {
	dir := t.TempDir()

	err := confirmArchivesExist(dir, []string{"missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}
