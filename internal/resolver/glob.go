package resolver

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// findMediaFiles enumerates files directly under <root>/<dir> (matched
// case-insensitively against the actual directory entry), optionally
// filtered to those whose filename stem (sans final extension) matches
// stem case-insensitively. Pass matchAny=true to return every file in the
// directory regardless of stem (used by generic/screensaver/startup).
//
// Any I/O error is logged and treated as "no matches", per spec.
func findMediaFiles(root, dir, stem string, matchAny bool) []string {
	subPath, entries, ok := readDirCaseInsensitive(root, dir)
	if !ok {
		return nil
	}

	var out []string
	wantStem := strings.ToLower(stem)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !matchAny {
			ext := filepath.Ext(name)
			gotStem := strings.ToLower(strings.TrimSuffix(name, ext))
			if gotStem != wantStem {
				continue
			}
		}
		out = append(out, filepath.Join(subPath, name))
	}
	sort.Strings(out)
	return out
}

// readDirCaseInsensitive resolves <root>/<dir> where dir is matched
// case-insensitively against root's entries (dynquee's media tree is
// authored with lowercase directory names, but front-end-supplied system
// ids are not guaranteed to match case), then lists its contents.
func readDirCaseInsensitive(root, dir string) (string, []os.DirEntry, bool) {
	rootEntries, err := os.ReadDir(root)
	if err != nil {
		slog.Warn("media library root unreadable", "root", root, "error", err)
		return "", nil, false
	}
	for _, e := range rootEntries {
		if e.IsDir() && strings.EqualFold(e.Name(), dir) {
			sub := filepath.Join(root, e.Name())
			entries, err := os.ReadDir(sub)
			if err != nil {
				slog.Warn("media subdirectory unreadable", "dir", sub, "error", err)
				return "", nil, false
			}
			return sub, entries, true
		}
	}
	return "", nil, false
}
