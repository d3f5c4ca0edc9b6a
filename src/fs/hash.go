package fs

import (
	"encoding/hex"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// ContentHash returns a short, stable hex digest of the given strings, in
// the order given. The generator does not use it: per-target directories
// under <build>/<build_type>/deps/ are named <target>.dir.
func ContentHash(parts ...string) string {
	h := xxhash.New()
	for _, p := range parts {
		h.WriteString(p)
		h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// SortedKeys returns the keys of a string set in sorted order, for callers
// that must not depend on map iteration order.
func SortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
