package tool

import (
	"bytes"
	"context"
	"encoding/json"
)

// DefaultRuffExecutable is the ruff binary name used when not overridden.
const DefaultRuffExecutable = "ruff"

const ruffToolName = "ruff"

// RuffCollector collects the files ruff currently reports diagnostics for.
type RuffCollector struct {
	RootPath   string
	Executable string
}

// ruffDiagnostic is the subset of ruff's JSON output consumed here.
type ruffDiagnostic struct {
	Filename string `json:"filename"`
}

// Name identifies the collector's tool.
func (collector RuffCollector) Name() string {
	return ruffToolName
}

// Collect runs `ruff check . --output-format=json` in the project root and
// returns every file with at least one diagnostic.
func (collector RuffCollector) Collect(ctx context.Context) ([]string, error) {
	executable := collector.Executable
	if executable == "" {
		executable = DefaultRuffExecutable
	}
	output, runErr := runToolCommand(ctx, ruffToolName, collector.RootPath, executable, "check", ".", "--output-format=json")
	if runErr != nil {
		return nil, runErr
	}
	diagnostics, decodeErr := decodeRuffDiagnostics(output)
	if decodeErr != nil {
		return nil, &InvocationError{Tool: ruffToolName, Reason: "decode JSON output", Err: decodeErr}
	}
	reportedPaths := make([]string, 0, len(diagnostics))
	for _, diagnostic := range diagnostics {
		if diagnostic.Filename == "" {
			continue
		}
		reportedPaths = append(reportedPaths, diagnostic.Filename)
	}
	return normalizeFailingPaths(collector.RootPath, reportedPaths), nil
}

func decodeRuffDiagnostics(output []byte) ([]ruffDiagnostic, error) {
	trimmedOutput := bytes.TrimSpace(output)
	if len(trimmedOutput) == 0 {
		return nil, nil
	}
	var diagnostics []ruffDiagnostic
	if unmarshalErr := json.Unmarshal(trimmedOutput, &diagnostics); unmarshalErr != nil {
		return nil, unmarshalErr
	}
	return diagnostics, nil
}
