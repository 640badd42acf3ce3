package pyproject_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/temirov/debtcloset/internal/pyproject"
)

const sampleDocument = `[project]
name = "sample"
dependencies = ["requests>=2.0"]

# ruff settings shared by the whole team
[tool.ruff]
line-length = 100
extend-exclude = [
    "legacy/old.py",
]

[tool.pyright]
typeCheckingMode = "strict"

[tool.pytest.ini_options]
addopts = "-ra"
`

func writeDocumentFile(testingHandle *testing.T, content string) string {
	testingHandle.Helper()
	documentPath := filepath.Join(testingHandle.TempDir(), "pyproject.toml")
	if writeErr := os.WriteFile(documentPath, []byte(content), 0o644); writeErr != nil {
		testingHandle.Fatalf("write fixture: %v", writeErr)
	}
	return documentPath
}

// TestLoadFailures verifies that missing and malformed files surface as
// ConfigError.
func TestLoadFailures(testingHandle *testing.T) {
	testCases := []struct {
		name         string
		documentPath func(testingHandle *testing.T) string
	}{
		{
			name: "MissingFile",
			documentPath: func(testingHandle *testing.T) string {
				return filepath.Join(testingHandle.TempDir(), "pyproject.toml")
			},
		},
		{
			name: "MalformedTOML",
			documentPath: func(testingHandle *testing.T) string {
				return writeDocumentFile(testingHandle, "[tool.ruff\nbroken")
			},
		},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingHandle *testing.T) {
			_, loadErr := pyproject.Load(testCase.documentPath(testingHandle))
			var configError *pyproject.ConfigError
			if !errors.As(loadErr, &configError) {
				testingHandle.Fatalf("expected ConfigError, got %v", loadErr)
			}
		})
	}
}

// TestExcludeList verifies reads of the tool exclude arrays.
func TestExcludeList(testingHandle *testing.T) {
	documentPath := writeDocumentFile(testingHandle, sampleDocument)
	document, loadErr := pyproject.Load(documentPath)
	if loadErr != nil {
		testingHandle.Fatalf("load document: %v", loadErr)
	}

	ruffExcludes, ruffErr := document.ExcludeList(pyproject.RuffExcludeKey)
	if ruffErr != nil {
		testingHandle.Fatalf("read ruff excludes: %v", ruffErr)
	}
	if !reflect.DeepEqual(ruffExcludes, []string{"legacy/old.py"}) {
		testingHandle.Fatalf("unexpected ruff excludes: %v", ruffExcludes)
	}

	pyrightExcludes, pyrightErr := document.ExcludeList(pyproject.PyrightExcludeKey)
	if pyrightErr != nil {
		testingHandle.Fatalf("read pyright excludes: %v", pyrightErr)
	}
	if len(pyrightExcludes) != 0 {
		testingHandle.Fatalf("expected empty pyright excludes, got %v", pyrightExcludes)
	}
}

// TestExcludeListMissingTable verifies that a document without the tool table
// is rejected.
func TestExcludeListMissingTable(testingHandle *testing.T) {
	documentPath := writeDocumentFile(testingHandle, "[project]\nname = \"sample\"\n")
	document, loadErr := pyproject.Load(documentPath)
	if loadErr != nil {
		testingHandle.Fatalf("load document: %v", loadErr)
	}
	_, readErr := document.ExcludeList(pyproject.RuffExcludeKey)
	var configError *pyproject.ConfigError
	if !errors.As(readErr, &configError) {
		testingHandle.Fatalf("expected ConfigError, got %v", readErr)
	}
}

// TestSetExcludeListReplacesArray verifies that rewriting the array keeps
// every unrelated line intact.
func TestSetExcludeListReplacesArray(testingHandle *testing.T) {
	documentPath := writeDocumentFile(testingHandle, sampleDocument)
	document, loadErr := pyproject.Load(documentPath)
	if loadErr != nil {
		testingHandle.Fatalf("load document: %v", loadErr)
	}

	newExcludes := []string{"legacy/old.py", "pkg/broken.py"}
	if setErr := document.SetExcludeList(pyproject.RuffExcludeKey, newExcludes); setErr != nil {
		testingHandle.Fatalf("set ruff excludes: %v", setErr)
	}

	rereadExcludes, readErr := document.ExcludeList(pyproject.RuffExcludeKey)
	if readErr != nil {
		testingHandle.Fatalf("reread ruff excludes: %v", readErr)
	}
	if !reflect.DeepEqual(rereadExcludes, newExcludes) {
		testingHandle.Fatalf("expected %v, got %v", newExcludes, rereadExcludes)
	}

	content := document.Content()
	preservedLines := []string{
		`name = "sample"`,
		"# ruff settings shared by the whole team",
		"line-length = 100",
		`typeCheckingMode = "strict"`,
		`addopts = "-ra"`,
	}
	for _, preservedLine := range preservedLines {
		if !strings.Contains(content, preservedLine) {
			testingHandle.Fatalf("rewrite lost line %q in:\n%s", preservedLine, content)
		}
	}
}

// TestSetExcludeListInsertsWhenAbsent verifies insertion into a table that has
// no exclude key yet.
func TestSetExcludeListInsertsWhenAbsent(testingHandle *testing.T) {
	documentPath := writeDocumentFile(testingHandle, sampleDocument)
	document, loadErr := pyproject.Load(documentPath)
	if loadErr != nil {
		testingHandle.Fatalf("load document: %v", loadErr)
	}

	if setErr := document.SetExcludeList(pyproject.PyrightExcludeKey, []string{"typed/bad.py"}); setErr != nil {
		testingHandle.Fatalf("set pyright excludes: %v", setErr)
	}
	rereadExcludes, readErr := document.ExcludeList(pyproject.PyrightExcludeKey)
	if readErr != nil {
		testingHandle.Fatalf("reread pyright excludes: %v", readErr)
	}
	if !reflect.DeepEqual(rereadExcludes, []string{"typed/bad.py"}) {
		testingHandle.Fatalf("unexpected pyright excludes: %v", rereadExcludes)
	}

	ruffExcludes, ruffErr := document.ExcludeList(pyproject.RuffExcludeKey)
	if ruffErr != nil {
		testingHandle.Fatalf("reread ruff excludes: %v", ruffErr)
	}
	if !reflect.DeepEqual(ruffExcludes, []string{"legacy/old.py"}) {
		testingHandle.Fatalf("pyright rewrite disturbed ruff excludes: %v", ruffExcludes)
	}
}

// TestSetExcludeListRequiresExplicitHeader verifies that a table expressed
// through dotted keys reads fine but is rejected on rewrite.
func TestSetExcludeListRequiresExplicitHeader(testingHandle *testing.T) {
	dottedDocument := `[tool]
ruff.extend-exclude = ["legacy/old.py"]
`
	documentPath := writeDocumentFile(testingHandle, dottedDocument)
	document, loadErr := pyproject.Load(documentPath)
	if loadErr != nil {
		testingHandle.Fatalf("load document: %v", loadErr)
	}

	excludePaths, readErr := document.ExcludeList(pyproject.RuffExcludeKey)
	if readErr != nil {
		testingHandle.Fatalf("read ruff excludes: %v", readErr)
	}
	if !reflect.DeepEqual(excludePaths, []string{"legacy/old.py"}) {
		testingHandle.Fatalf("unexpected excludes: %v", excludePaths)
	}

	setErr := document.SetExcludeList(pyproject.RuffExcludeKey, []string{"a.py"})
	var configError *pyproject.ConfigError
	if !errors.As(setErr, &configError) {
		testingHandle.Fatalf("expected ConfigError for dotted-key table, got %v", setErr)
	}
	if document.Content() != dottedDocument {
		testingHandle.Fatalf("failed rewrite modified the document:\n%s", document.Content())
	}
}

// TestSetExcludeListEmpty verifies rendering of an emptied list.
func TestSetExcludeListEmpty(testingHandle *testing.T) {
	documentPath := writeDocumentFile(testingHandle, sampleDocument)
	document, loadErr := pyproject.Load(documentPath)
	if loadErr != nil {
		testingHandle.Fatalf("load document: %v", loadErr)
	}
	if setErr := document.SetExcludeList(pyproject.RuffExcludeKey, nil); setErr != nil {
		testingHandle.Fatalf("empty ruff excludes: %v", setErr)
	}
	if !strings.Contains(document.Content(), "extend-exclude = []") {
		testingHandle.Fatalf("expected empty array assignment in:\n%s", document.Content())
	}
}

// TestSaveRoundTrip verifies that Save persists the rewritten document.
func TestSaveRoundTrip(testingHandle *testing.T) {
	documentPath := writeDocumentFile(testingHandle, sampleDocument)
	document, loadErr := pyproject.Load(documentPath)
	if loadErr != nil {
		testingHandle.Fatalf("load document: %v", loadErr)
	}
	if setErr := document.SetExcludeList(pyproject.RuffExcludeKey, []string{"a.py"}); setErr != nil {
		testingHandle.Fatalf("set ruff excludes: %v", setErr)
	}
	if saveErr := document.Save(documentPath); saveErr != nil {
		testingHandle.Fatalf("save document: %v", saveErr)
	}
	reloaded, reloadErr := pyproject.Load(documentPath)
	if reloadErr != nil {
		testingHandle.Fatalf("reload document: %v", reloadErr)
	}
	if reloaded.Content() != document.Content() {
		testingHandle.Fatalf("saved content differs from in-memory content")
	}
}
