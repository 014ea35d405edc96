// Package media defines the canonical MediaSet representation shared by the
// resolver and the slideshow engine.
package media

import "sort"

// Set is an ordered list of absolute media file paths. Two sets compare
// equal iff, after deduplication and sorting, their elements match —
// Canonical() produces that normalized form.
type Set []string

// Canonical returns a new Set with duplicates removed and entries sorted,
// the form the slideshow engine uses to detect whether a newly enqueued
// set actually differs from the one currently displayed.
func Canonical(paths []string) Set {
	seen := make(map[string]struct{}, len(paths))
	out := make(Set, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether two sets are set-wise equal (both already
// canonical, or compared after canonicalizing).
func Equal(a, b Set) bool {
	a, b = Canonical(a), Canonical(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
