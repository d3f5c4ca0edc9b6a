package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorUnwrapAndAs(t *testing.T) {
	cause := errors.New("exit status 1")
	err := &Error{Kind: KindToolchain, Path: "/usr/bin/cxx", Msg: "sample compile failed", Err: cause}

	var target *Error
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, KindToolchain, target.Kind)
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestErrorMessageIncludesContext(t *testing.T) {
	err := &Error{Kind: KindParse, Path: "/proj/yambs.toml", Target: "mylib", Msg: "target declares no sources"}
	msg := err.Error()
	assert.Contains(t, msg, "Parse")
	assert.Contains(t, msg, "mylib")
	assert.Contains(t, msg, "/proj/yambs.toml")
}

func TestIllegalSanitizerCombination(t *testing.T) {
	err := IllegalSanitizerCombination("thread", "address")
	assert.Equal(t, KindCommandLine, err.Kind)
	assert.Contains(t, err.Error(), "thread")
	assert.Contains(t, err.Error(), "address")
}

func TestStaleToolchainNamesBothAndInstructsClean(t *testing.T) {
	err := StaleToolchain("gcc 12.2.0", "clang 15.0.0")
	assert.Equal(t, KindToolchain, err.Kind)
	assert.Contains(t, err.Error(), "gcc 12.2.0")
	assert.Contains(t, err.Error(), "clang 15.0.0")
	assert.Contains(t, err.Error(), "clean")
}

func TestCirculationNamesBothManifests(t *testing.T) {
	err := Circulation("/repo/b", "/repo/a")
	assert.Equal(t, KindGraph, err.Kind)
	assert.Contains(t, err.Error(), "/repo/a")
	assert.Contains(t, err.Error(), "/repo/b")
}
