package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlagsPopulatesOpts(t *testing.T) {
	opts := struct {
		BuildDir string `long:"build-dir" default:"build"`
		Jobs     int    `short:"j" long:"jobs"`
	}{}

	_, extraArgs, err := ParseFlags("yambs", &opts, []string{"yambs", "--build-dir=out", "-j", "4"})
	require.NoError(t, err)
	assert.Empty(t, extraArgs)
	assert.Equal(t, "out", opts.BuildDir)
	assert.Equal(t, 4, opts.Jobs)
}

func TestParseFlagsAppliesDefault(t *testing.T) {
	opts := struct {
		BuildDir string `long:"build-dir" default:"build"`
	}{}

	_, _, err := ParseFlags("yambs", &opts, []string{"yambs"})
	require.NoError(t, err)
	assert.Equal(t, "build", opts.BuildDir)
}

func TestParseFlagsRejectsUnknownFlag(t *testing.T) {
	opts := struct {
		BuildDir string `long:"build-dir"`
	}{}

	_, _, err := ParseFlags("yambs", &opts, []string{"yambs", "--not-a-flag"})
	assert.Error(t, err)
}
