package docs

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// SetHash computes a deterministic hash over a document set from paths and
// fingerprints. Preview mode compares it between rebuilds to report changes.
func SetHash(documents []*Document) string {
	if len(documents) == 0 {
		h := sha256.Sum256([]byte("empty-docs-set"))
		return hex.EncodeToString(h[:])
	}
	entries := make([]string, 0, len(documents))
	for _, d := range documents {
		entries = append(entries, d.Path+"\x00"+d.Fingerprint)
	}
	sort.Strings(entries)
	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Changes reports paths added, removed or modified relative to a previous
// path → fingerprint snapshot. Removed paths are sorted.
func Changes(before map[string]string, after []*Document) (added, removed, modified []string) {
	next := make(map[string]struct{}, len(after))
	for _, d := range after {
		next[d.Path] = struct{}{}
		fp, ok := before[d.Path]
		switch {
		case !ok:
			added = append(added, d.Path)
		case fp != d.Fingerprint:
			modified = append(modified, d.Path)
		}
	}
	for p := range before {
		if _, ok := next[p]; !ok {
			removed = append(removed, p)
		}
	}
	sort.Strings(removed)
	return added, removed, modified
}
