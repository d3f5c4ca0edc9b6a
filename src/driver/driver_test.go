package driver

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultJobCountIsPositive(t *testing.T) {
	n := DefaultJobCount()
	assert.Greater(t, n, 0)
	assert.GreaterOrEqual(t, n, runtime.NumCPU(), "2x logical CPUs should be at least the raw core count")
}

func TestErrorAndWarningPatterns(t *testing.T) {
	assert.True(t, errorPattern.MatchString("a.cpp:12:5: error: 'x' was not declared"))
	assert.False(t, errorPattern.MatchString("a.cpp:12:5: warning: unused variable 'x'"))

	assert.True(t, warningPattern.MatchString("a.cpp:12:5: warning: unused variable 'x' [-Wunused-variable]"))
	assert.False(t, warningPattern.MatchString("a.cpp:12:5: error: 'x' was not declared"))
}

func TestArChatterPattern(t *testing.T) {
	assert.True(t, arChatter.MatchString("ar: creating libfoo.a"))
	assert.False(t, arChatter.MatchString("a.cpp:1: error: bad"))
}
