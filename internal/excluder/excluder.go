// Package excluder wires the failure collectors, the merge core, and the
// pyproject accessor into the per-tool exclude operations.
package excluder

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/debtcloset/internal/debt"
	"github.com/temirov/debtcloset/internal/pyproject"
	"github.com/temirov/debtcloset/internal/tool"
)

// DefaultPyprojectFileName is the configuration file name inside the project
// root.
const DefaultPyprojectFileName = "pyproject.toml"

const defaultRootPath = "."

// Options configures a single exclude operation.
type Options struct {
	// RootPath is the project root; defaults to the current directory.
	RootPath string
	// PyprojectFileName names the configuration file inside RootPath.
	PyprojectFileName string
	// Executable overrides the tool binary name.
	Executable string
	// DryRun computes the merged list without writing it back.
	DryRun bool
	// Logger receives progress messages; nil disables logging.
	Logger *zap.Logger
}

func (options Options) rootPath() string {
	if options.RootPath == "" {
		return defaultRootPath
	}
	return options.RootPath
}

func (options Options) pyprojectPath() string {
	fileName := options.PyprojectFileName
	if fileName == "" {
		fileName = DefaultPyprojectFileName
	}
	return filepath.Join(options.rootPath(), fileName)
}

func (options Options) logger() *zap.Logger {
	if options.Logger == nil {
		return zap.NewNop()
	}
	return options.Logger
}

// Result summarizes one exclude operation.
type Result struct {
	// Failing is the number of files the tool currently reports.
	Failing int
	// Added is the number of entries new to the exclude list.
	Added int
	// Total is the length of the merged exclude list.
	Total int
	// Written reports whether the configuration file was rewritten.
	Written bool
}

// Ruff runs ruff and folds its failing files into the extend-exclude array of
// the [tool.ruff] table.
func Ruff(ctx context.Context, options Options) (Result, error) {
	collector := tool.RuffCollector{RootPath: options.rootPath(), Executable: options.Executable}
	return Run(ctx, options, collector, pyproject.RuffExcludeKey)
}

// Pyright runs pyright and folds its failing files into the exclude array of
// the [tool.pyright] table.
func Pyright(ctx context.Context, options Options) (Result, error) {
	collector := tool.PyrightCollector{RootPath: options.rootPath(), Executable: options.Executable}
	return Run(ctx, options, collector, pyproject.PyrightExcludeKey)
}

// Run executes the exclude operation for an arbitrary collector. The document
// is loaded and validated before the tool runs, and saved only after the full
// merged list has been computed, so a failed sub-step never leaves a partial
// write behind.
func Run(ctx context.Context, options Options, collector tool.Collector, key pyproject.ExcludeKey) (Result, error) {
	logger := options.logger()
	pyprojectPath := options.pyprojectPath()

	document, loadErr := pyproject.Load(pyprojectPath)
	if loadErr != nil {
		return Result{}, loadErr
	}
	existingPaths, readErr := document.ExcludeList(key)
	if readErr != nil {
		return Result{}, readErr
	}
	failingPaths, collectErr := collector.Collect(ctx)
	if collectErr != nil {
		return Result{}, collectErr
	}
	logger.Info("collected failing files",
		zap.String("tool", collector.Name()),
		zap.Int("failing", len(failingPaths)),
	)

	mergedPaths := debt.Merge(existingPaths, failingPaths)
	result := Result{
		Failing: len(failingPaths),
		Added:   len(mergedPaths) - len(debt.Merge(existingPaths, nil)),
		Total:   len(mergedPaths),
	}

	if pathsEqual(existingPaths, mergedPaths) {
		logger.Info("exclude list already up to date", zap.String("tool", collector.Name()), zap.Int("total", result.Total))
		return result, nil
	}
	if options.DryRun {
		logger.Info("dry run, configuration not written",
			zap.String("tool", collector.Name()),
			zap.Int("added", result.Added),
			zap.Int("total", result.Total),
		)
		return result, nil
	}
	if setErr := document.SetExcludeList(key, mergedPaths); setErr != nil {
		return Result{}, setErr
	}
	if saveErr := document.Save(pyprojectPath); saveErr != nil {
		return Result{}, saveErr
	}
	result.Written = true
	logger.Info("exclude list updated",
		zap.String("tool", collector.Name()),
		zap.Int("added", result.Added),
		zap.Int("total", result.Total),
	)
	return result, nil
}

// Reset empties the tool's exclude list. It is the manual pruning counterpart
// to the merge's keep-stale-entries behavior.
func Reset(options Options, key pyproject.ExcludeKey) error {
	pyprojectPath := options.pyprojectPath()
	document, loadErr := pyproject.Load(pyprojectPath)
	if loadErr != nil {
		return loadErr
	}
	existingPaths, readErr := document.ExcludeList(key)
	if readErr != nil {
		return readErr
	}
	if len(existingPaths) == 0 {
		return nil
	}
	if options.DryRun {
		return nil
	}
	if setErr := document.SetExcludeList(key, nil); setErr != nil {
		return setErr
	}
	return document.Save(pyprojectPath)
}

func pathsEqual(leftPaths []string, rightPaths []string) bool {
	if len(leftPaths) != len(rightPaths) {
		return false
	}
	for pathIndex := range leftPaths {
		if leftPaths[pathIndex] != rightPaths[pathIndex] {
			return false
		}
	}
	return true
}
