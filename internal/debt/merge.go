// Package debt implements the exclude-list computation shared by every
// supported quality tool.
package debt

import "sort"

// Merge returns the union of the existing exclude list and the newly observed
// failing files, deduplicated and sorted lexicographically so reruns produce
// minimal diffs. Entries in existing that no longer fail are kept; pruning a
// fixed file out of the debt closet is a manual operation. The function is
// pure and idempotent.
func Merge(existingPaths []string, failingPaths []string) []string {
	mergedPaths := make([]string, 0, len(existingPaths)+len(failingPaths))
	seenPaths := make(map[string]struct{}, len(existingPaths)+len(failingPaths))
	appendUnique := func(candidatePath string) {
		normalizedPath := NormalizePath(candidatePath)
		if normalizedPath == "" {
			return
		}
		if _, exists := seenPaths[normalizedPath]; exists {
			return
		}
		seenPaths[normalizedPath] = struct{}{}
		mergedPaths = append(mergedPaths, normalizedPath)
	}
	for _, existingPath := range existingPaths {
		appendUnique(existingPath)
	}
	for _, failingPath := range failingPaths {
		appendUnique(failingPath)
	}
	sort.Strings(mergedPaths)
	return mergedPaths
}
