package generate

import (
	"encoding/json"

	"github.com/fsandhei/yambs-sub000/src/core"
)

// progressEntry is one element of progress.json's targets array — the
// contract the Build Driver polls instead of instrumenting Make.
type progressEntry struct {
	Target       string   `json:"target"`
	ObjectFiles  []string `json:"object_files"`
	Dependencies []string `json:"dependencies"`
}

type progressDoc struct {
	Targets []progressEntry `json:"targets"`
}

func (g *Generator) renderProgress(buildTypeDir string, targets, topLevel []*core.Target) ([]byte, error) {
	entries := make([]progressEntry, 0, len(targets)+1)
	for _, t := range targets {
		objs := make([]string, 0, len(t.Sources))
		for _, src := range t.Sources {
			objs = append(objs, objectPath(buildTypeDir, t, src))
		}
		deps := make([]string, 0)
		for _, dep := range t.Dependencies {
			if dep.IsLibrary() {
				deps = append(deps, dep.Target.ID.Type.Name)
			}
		}
		entries = append(entries, progressEntry{Target: t.ID.Type.Name, ObjectFiles: objs, Dependencies: deps})
	}

	allDeps := make([]string, 0, len(topLevel))
	for _, t := range topLevel {
		allDeps = append(allDeps, t.ID.Type.Name)
	}
	entries = append(entries, progressEntry{Target: "all", ObjectFiles: []string{}, Dependencies: allDeps})

	doc := progressDoc{Targets: entries}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, &core.Error{Kind: core.KindCache, Msg: "failed to serialize progress descriptor", Err: err}
	}
	return data, nil
}
