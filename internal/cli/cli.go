// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/debtcloset/internal/config"
	"github.com/temirov/debtcloset/internal/excluder"
	"github.com/temirov/debtcloset/internal/pyproject"
	"github.com/temirov/debtcloset/internal/utils"
)

const (
	rootFlagName         = "root"
	pyprojectFlagName    = "pyproject"
	executableFlagName   = "exe"
	dryRunFlagName       = "dry-run"
	configFlagName       = "config"
	versionFlagName      = "version"
	versionTemplate      = "debtcloset version: %s\n"
	rootUse              = "debtcloset"
	rootShortDescription = "debtcloset command line interface"
	rootLongDescription  = `debtcloset stores pre-existing lint and type-check failures in pyproject.toml exclude lists.
Run a tool subcommand to fold every currently failing file into that tool's exclude array,
silencing accumulated debt while keeping the tool strict for untouched files.`

	ruffUse                 = "ruff"
	pyrightUse              = "pyright"
	resetUse                = "reset <tool>"
	ruffShortDescription    = "exclude every file ruff currently fails on"
	pyrightShortDescription = "exclude every file pyright currently reports errors in"
	resetShortDescription   = "empty a tool's exclude list"
	ruffLongDescription     = `Run ruff against the project and merge every failing file into the
extend-exclude array of the [tool.ruff] table in pyproject.toml.`
	pyrightLongDescription = `Run pyright against the project and merge every file with error-severity
diagnostics into the exclude array of the [tool.pyright] table in pyproject.toml.`
	resetLongDescription = `Empty the exclude array a previous run accumulated. Merging never removes
entries on its own, so this is how fixed files leave the debt closet.`
	ruffUsageExample = `  # Fold current ruff failures into pyproject.toml
  debtcloset ruff

  # Inspect what would change without writing
  debtcloset ruff --dry-run`
	pyrightUsageExample = `  # Fold current pyright errors into pyproject.toml
  debtcloset pyright --root ./service`
	resetUsageExample = `  # Drop the accumulated ruff exclusions
  debtcloset reset ruff`

	rootFlagDescription       = "project root containing pyproject.toml"
	pyprojectFlagDescription  = "configuration file name inside the project root"
	executableFlagDescription = "tool executable override"
	dryRunFlagDescription     = "report the merged exclude list without writing it"
	configFlagDescription     = "application configuration file"
	versionFlagDescription    = "display application version"

	unknownToolMessageFormat = "unknown tool '%s'"

	defaultRootPath = "."
)

// Execute runs the debtcloset application.
func Execute(logger *zap.Logger) error {
	rootCommand := createRootCommand(logger)
	return rootCommand.Execute()
}

// commandOptions stores the flag values shared by every subcommand.
type commandOptions struct {
	rootPath          string
	pyprojectFileName string
	executable        string
	dryRun            bool
	configFilePath    string
}

// resolve overlays flag values onto the discovered application configuration.
func (options commandOptions) resolve(toolConfiguration func(config.ApplicationConfiguration) config.ToolConfiguration, logger *zap.Logger) (excluder.Options, error) {
	applicationConfiguration, loadErr := config.LoadApplicationConfiguration(config.LoadOptions{
		RootPath:         options.rootPath,
		ExplicitFilePath: options.configFilePath,
	})
	if loadErr != nil {
		return excluder.Options{}, loadErr
	}
	resolved := excluder.Options{
		RootPath:          options.rootPath,
		PyprojectFileName: applicationConfiguration.Pyproject,
		Executable:        toolConfiguration(applicationConfiguration).Executable,
		DryRun:            options.dryRun,
		Logger:            logger,
	}
	if options.pyprojectFileName != "" {
		resolved.PyprojectFileName = options.pyprojectFileName
	}
	if options.executable != "" {
		resolved.Executable = options.executable
	}
	return resolved, nil
}

// addCommonFlags registers the flags shared by every subcommand.
func addCommonFlags(command *cobra.Command, options *commandOptions) {
	command.Flags().StringVar(&options.rootPath, rootFlagName, defaultRootPath, rootFlagDescription)
	command.Flags().StringVar(&options.pyprojectFileName, pyprojectFlagName, "", pyprojectFlagDescription)
	command.Flags().StringVar(&options.configFilePath, configFlagName, "", configFlagDescription)
	command.Flags().BoolVar(&options.dryRun, dryRunFlagName, false, dryRunFlagDescription)
}

// createRootCommand builds the root Cobra command.
func createRootCommand(logger *zap.Logger) *cobra.Command {
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.AddCommand(
		createRuffCommand(logger),
		createPyrightCommand(logger),
		createResetCommand(logger),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// createRuffCommand returns the ruff subcommand.
func createRuffCommand(logger *zap.Logger) *cobra.Command {
	var options commandOptions

	ruffCommand := &cobra.Command{
		Use:     ruffUse,
		Short:   ruffShortDescription,
		Long:    ruffLongDescription,
		Example: ruffUsageExample,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			resolved, resolveErr := options.resolve(ruffToolConfiguration, logger)
			if resolveErr != nil {
				return resolveErr
			}
			result, excludeErr := excluder.Ruff(command.Context(), resolved)
			if excludeErr != nil {
				return excludeErr
			}
			printResult(command, ruffUse, result, resolved.DryRun)
			return nil
		},
	}
	addCommonFlags(ruffCommand, &options)
	ruffCommand.Flags().StringVar(&options.executable, executableFlagName, "", executableFlagDescription)
	return ruffCommand
}

// createPyrightCommand returns the pyright subcommand.
func createPyrightCommand(logger *zap.Logger) *cobra.Command {
	var options commandOptions

	pyrightCommand := &cobra.Command{
		Use:     pyrightUse,
		Short:   pyrightShortDescription,
		Long:    pyrightLongDescription,
		Example: pyrightUsageExample,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			resolved, resolveErr := options.resolve(pyrightToolConfiguration, logger)
			if resolveErr != nil {
				return resolveErr
			}
			result, excludeErr := excluder.Pyright(command.Context(), resolved)
			if excludeErr != nil {
				return excludeErr
			}
			printResult(command, pyrightUse, result, resolved.DryRun)
			return nil
		},
	}
	addCommonFlags(pyrightCommand, &options)
	pyrightCommand.Flags().StringVar(&options.executable, executableFlagName, "", executableFlagDescription)
	return pyrightCommand
}

// createResetCommand returns the reset subcommand.
func createResetCommand(logger *zap.Logger) *cobra.Command {
	var options commandOptions

	resetCommand := &cobra.Command{
		Use:       resetUse,
		Short:     resetShortDescription,
		Long:      resetLongDescription,
		Example:   resetUsageExample,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{ruffUse, pyrightUse},
		RunE: func(command *cobra.Command, arguments []string) error {
			excludeKey, keyErr := excludeKeyForTool(arguments[0])
			if keyErr != nil {
				return keyErr
			}
			toolConfiguration := ruffToolConfiguration
			if arguments[0] == pyrightUse {
				toolConfiguration = pyrightToolConfiguration
			}
			resolved, resolveErr := options.resolve(toolConfiguration, logger)
			if resolveErr != nil {
				return resolveErr
			}
			return excluder.Reset(resolved, excludeKey)
		},
	}
	addCommonFlags(resetCommand, &options)
	return resetCommand
}

// excludeKeyForTool maps a tool name argument onto its pyproject location.
func excludeKeyForTool(toolName string) (pyproject.ExcludeKey, error) {
	switch toolName {
	case ruffUse:
		return pyproject.RuffExcludeKey, nil
	case pyrightUse:
		return pyproject.PyrightExcludeKey, nil
	default:
		return pyproject.ExcludeKey{}, fmt.Errorf(unknownToolMessageFormat, toolName)
	}
}

func ruffToolConfiguration(applicationConfiguration config.ApplicationConfiguration) config.ToolConfiguration {
	return applicationConfiguration.Ruff
}

func pyrightToolConfiguration(applicationConfiguration config.ApplicationConfiguration) config.ToolConfiguration {
	return applicationConfiguration.Pyright
}

func printResult(command *cobra.Command, toolName string, result excluder.Result, dryRun bool) {
	switch {
	case result.Written:
		command.Printf("%s: %d failing file(s), %d added, %d excluded in total\n", toolName, result.Failing, result.Added, result.Total)
	case dryRun && result.Added > 0:
		command.Printf("%s: dry run, %d file(s) would be added (%d total)\n", toolName, result.Added, result.Total)
	default:
		command.Printf("%s: exclude list already up to date (%d entries)\n", toolName, result.Total)
	}
}
