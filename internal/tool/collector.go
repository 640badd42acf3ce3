// Package tool runs the supported quality tools and collects the files they
// currently report as failing.
package tool

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/temirov/debtcloset/internal/debt"
)

// Collector produces the set of files a quality tool currently fails on.
type Collector interface {
	// Name identifies the tool, for example "ruff".
	Name() string
	// Collect runs the tool against the project root and returns unique,
	// sorted, root-relative paths of the failing files. A tool that runs and
	// reports findings is the success case even when every file fails.
	Collect(ctx context.Context) ([]string, error)
}

// maxReportingExitCode is the highest exit code that still means "the tool ran
// and reported its findings". Both ruff and pyright exit 1 when they find
// problems and reserve higher codes for invocation failures.
const maxReportingExitCode = 1

// runToolCommand executes the tool in the project root and returns its
// standard output.
func runToolCommand(ctx context.Context, toolName string, workingDirectory string, executable string, arguments ...string) ([]byte, error) {
	command := exec.CommandContext(ctx, executable, arguments...)
	command.Dir = workingDirectory
	var standardOutput bytes.Buffer
	var standardError bytes.Buffer
	command.Stdout = &standardOutput
	command.Stderr = &standardError
	runErr := command.Run()
	if runErr != nil {
		// A signal-killed process reports a negative exit code and must not
		// pass as "findings reported".
		var exitError *exec.ExitError
		if errors.As(runErr, &exitError) && exitError.ExitCode() >= 0 && exitError.ExitCode() <= maxReportingExitCode {
			return standardOutput.Bytes(), nil
		}
		return nil, &InvocationError{
			Tool:   toolName,
			Reason: "run " + executable,
			Stderr: strings.TrimSpace(standardError.String()),
			Err:    runErr,
		}
	}
	return standardOutput.Bytes(), nil
}

// normalizeFailingPaths converts reported paths to the canonical root-relative
// form, deduplicated and sorted.
func normalizeFailingPaths(rootPath string, reportedPaths []string) []string {
	relativePaths := make([]string, 0, len(reportedPaths))
	for _, reportedPath := range reportedPaths {
		relativePaths = append(relativePaths, debt.RelativeToRoot(rootPath, reportedPath))
	}
	return debt.Merge(nil, relativePaths)
}
