package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManifestDataFindTarget(t *testing.T) {
	data := &ManifestData{Targets: []ParsedTarget{
		{Type: TargetType{Category: ExecutableCategory, Name: "x"}},
		{Type: TargetType{Category: LibraryCategory, Name: "mylib"}},
	}}

	found := data.FindTarget("mylib")
	assert.NotNil(t, found)
	assert.Equal(t, "mylib", found.Type.Name)

	assert.Nil(t, data.FindTarget("missing"))
}
