package core

import "sync"

// Registry is the ordered collection of interned Targets.
// Identity — (manifest directory, target type) — is the key; lookup goes
// through a map keyed on that tuple, while a slice keeps registration order.
type Registry struct {
	mutex   sync.Mutex
	targets []*Target
	byID    map[ID]*Target
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byID: map[ID]*Target{}}
}

// Find returns the target registered under id, or nil if there is none.
func (r *Registry) Find(id ID) *Target {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.byID[id]
}

// Add interns a new target. Panics if a target is already registered under
// the same identity — this is a programming
// error in the graph builder, not a recoverable user-facing condition,
// since the builder is supposed to check Find first.
func (r *Registry) Add(t *Target) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, present := r.byID[t.ID]; present {
		panic("target already registered: " + t.ID.String())
	}
	r.byID[t.ID] = t
	r.targets = append(r.targets, t)
}

// All returns every registered target, in registration order (the order
// the graph builder first visited them in, depth-first and left to right
// in the order the Manifest Parser lists each manifest's targets:
// executables sorted by name, then libraries sorted by name; the order the
// targets are written in the manifest is not kept).
func (r *Registry) All() []*Target {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make([]*Target, len(r.targets))
	copy(out, r.targets)
	return out
}

// Len returns the number of registered targets.
func (r *Registry) Len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.targets)
}

// Filter returns every registered target for which pred returns true, in
// registration order.
func (r *Registry) Filter(pred func(*Target) bool) []*Target {
	out := []*Target{}
	for _, t := range r.All() {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}

// TopLevel returns every target declared directly in rootManifestDir,
// i.e. the ones the generator's `all:` rule and the progress descriptor's
// synthetic "all" entry depend on.
func (r *Registry) TopLevel(rootManifestDir string) []*Target {
	return r.Filter(func(t *Target) bool { return t.ID.ManifestDir == rootManifestDir })
}
