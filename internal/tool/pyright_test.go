package tool

import (
	"context"
	"reflect"
	"testing"
)

// TestDecodePyrightReport verifies parsing of pyright's JSON output.
func TestDecodePyrightReport(testingHandle *testing.T) {
	reportJSON := `{
  "generalDiagnostics": [
    {"file": "/repo/a.py", "severity": "error"},
    {"file": "/repo/b.py", "severity": "warning"}
  ],
  "summary": {"errorCount": 1}
}`
	report, decodeErr := decodePyrightReport([]byte(reportJSON))
	if decodeErr != nil {
		testingHandle.Fatalf("decode report: %v", decodeErr)
	}
	if len(report.GeneralDiagnostics) != 2 {
		testingHandle.Fatalf("expected 2 diagnostics, got %d", len(report.GeneralDiagnostics))
	}
}

// TestPyrightCollectorFiltersSeverity verifies that only error-severity
// diagnostics land in the failing set.
func TestPyrightCollectorFiltersSeverity(testingHandle *testing.T) {
	rootPath := testingHandle.TempDir()
	scriptBody := `cat <<'JSON'
{
  "generalDiagnostics": [
    {"file": "` + rootPath + `/typed/bad.py", "severity": "error"},
    {"file": "` + rootPath + `/typed/sloppy.py", "severity": "warning"},
    {"file": "` + rootPath + `/typed/bad.py", "severity": "error"}
  ]
}
JSON
exit 1`
	collector := PyrightCollector{RootPath: rootPath, Executable: writeFakeTool(testingHandle, scriptBody)}

	failingPaths, collectErr := collector.Collect(context.Background())
	if collectErr != nil {
		testingHandle.Fatalf("collect: %v", collectErr)
	}
	expectedPaths := []string{"typed/bad.py"}
	if !reflect.DeepEqual(failingPaths, expectedPaths) {
		testingHandle.Fatalf("expected %v, got %v", expectedPaths, failingPaths)
	}
}
