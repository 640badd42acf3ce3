package debt

import (
	"path/filepath"
	"strings"
)

// NormalizePath cleans a root-relative path and converts it to forward-slash
// form, the single canonical separator used in exclude lists. Empty input and
// the bare current directory normalize to the empty string.
func NormalizePath(path string) string {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return ""
	}
	trimmedPath = strings.ReplaceAll(trimmedPath, `\`, "/")
	cleanedPath := filepath.ToSlash(filepath.Clean(trimmedPath))
	cleanedPath = strings.TrimPrefix(cleanedPath, "./")
	if cleanedPath == "." {
		return ""
	}
	return cleanedPath
}

// RelativeToRoot converts a path reported by a quality tool into the canonical
// root-relative form. Tools report absolute paths; a path that cannot be made
// relative to the root is returned normalized as-is.
func RelativeToRoot(rootPath string, reportedPath string) string {
	if !filepath.IsAbs(reportedPath) {
		return NormalizePath(reportedPath)
	}
	absoluteRoot, absoluteErr := filepath.Abs(rootPath)
	if absoluteErr != nil {
		return NormalizePath(reportedPath)
	}
	relativePath, relativeErr := filepath.Rel(absoluteRoot, reportedPath)
	if relativeErr != nil {
		return NormalizePath(reportedPath)
	}
	return NormalizePath(relativePath)
}
