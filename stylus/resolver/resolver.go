// Package resolver implements the default filesystem @import resolver
// (spec §6 "Import resolver"): given a path named by an @import statement,
// search a list of candidate directories for a matching .styl file.
package resolver

import (
	"os"
	"path/filepath"
	"strings"
)

// Default is the filesystem-backed eval.Resolver used by the root stylus
// package unless the caller supplies their own (spec §6). It satisfies
// eval.Resolver structurally: Resolve(filename, path string, paths
// []string) (string, []byte, error).
type Default struct{}

// candidateNames returns the filenames searched for one import path,
// mirroring stylus's own lookup order: the literal path, the path with a
// .styl suffix appended, and (for directory-style imports) an index.styl
// inside it.
func candidateNames(path string) []string {
	names := []string{path}
	if !strings.HasSuffix(path, ".styl") {
		names = append(names, path+".styl")
	}
	names = append(names, filepath.Join(path, "index.styl"))
	return names
}

// Resolve searches dirname(filename), then paths in order, for path (spec
// §6: the default resolver searches "paths ∪ {dirname(filename)}", with
// dirname(filename) taking priority). The search list is deduplicated
// without disturbing that priority order (spec grounded on cue/load's
// layered search-path resolution, trimmed to a single entry point).
func (Default) Resolve(filename, path string, paths []string) (string, []byte, error) {
	dirs := make([]string, 0, len(paths)+1)
	if filename != "" {
		dirs = append(dirs, filepath.Dir(filename))
	}
	dirs = append(dirs, paths...)
	dirs = dedupeOrdered(dirs)

	for _, dir := range dirs {
		for _, name := range candidateNames(path) {
			full := name
			if !filepath.IsAbs(full) {
				full = filepath.Join(dir, name)
			}
			src, err := os.ReadFile(full)
			if err == nil {
				return full, src, nil
			}
		}
	}
	return "", nil, &NotFoundError{Path: path, Dirs: dirs}
}

// NotFoundError reports that path could not be found in any of Dirs.
type NotFoundError struct {
	Path string
	Dirs []string
}

func (e *NotFoundError) Error() string {
	return "import " + e.Path + ": not found in " + strings.Join(e.Dirs, ", ")
}

// dedupeOrdered drops repeats from dirs while keeping the first occurrence
// of each, preserving the caller's priority order.
func dedupeOrdered(dirs []string) []string {
	seen := make(map[string]bool, len(dirs))
	out := dirs[:0]
	for _, d := range dirs {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
