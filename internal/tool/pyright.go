package tool

import (
	"bytes"
	"context"
	"encoding/json"
)

// DefaultPyrightExecutable is the pyright binary name used when not overridden.
const DefaultPyrightExecutable = "pyright"

const (
	pyrightToolName      = "pyright"
	pyrightErrorSeverity = "error"
)

// PyrightCollector collects the files pyright currently reports errors for.
type PyrightCollector struct {
	RootPath   string
	Executable string
}

// pyrightReport is the subset of pyright's JSON output consumed here.
type pyrightReport struct {
	GeneralDiagnostics []pyrightDiagnostic `json:"generalDiagnostics"`
}

type pyrightDiagnostic struct {
	File     string `json:"file"`
	Severity string `json:"severity"`
}

// Name identifies the collector's tool.
func (collector PyrightCollector) Name() string {
	return pyrightToolName
}

// Collect runs `pyright --outputjson` in the project root and returns every
// file with at least one error-severity diagnostic. Warnings never land in
// the debt closet.
func (collector PyrightCollector) Collect(ctx context.Context) ([]string, error) {
	executable := collector.Executable
	if executable == "" {
		executable = DefaultPyrightExecutable
	}
	output, runErr := runToolCommand(ctx, pyrightToolName, collector.RootPath, executable, "--outputjson")
	if runErr != nil {
		return nil, runErr
	}
	report, decodeErr := decodePyrightReport(output)
	if decodeErr != nil {
		return nil, &InvocationError{Tool: pyrightToolName, Reason: "decode JSON output", Err: decodeErr}
	}
	reportedPaths := make([]string, 0, len(report.GeneralDiagnostics))
	for _, diagnostic := range report.GeneralDiagnostics {
		if diagnostic.Severity != pyrightErrorSeverity || diagnostic.File == "" {
			continue
		}
		reportedPaths = append(reportedPaths, diagnostic.File)
	}
	return normalizeFailingPaths(collector.RootPath, reportedPaths), nil
}

func decodePyrightReport(output []byte) (pyrightReport, error) {
	trimmedOutput := bytes.TrimSpace(output)
	if len(trimmedOutput) == 0 {
		return pyrightReport{}, nil
	}
	var report pyrightReport
	if unmarshalErr := json.Unmarshal(trimmedOutput, &report); unmarshalErr != nil {
		return pyrightReport{}, unmarshalErr
	}
	return report, nil
}
