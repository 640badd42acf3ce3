// Package config loads optional application configuration for the debtcloset
// command.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigFileName is the application configuration file discovered in the
// project root.
const ConfigFileName = ".debtcloset.yaml"

const (
	globalConfigDirectoryName = ".debtcloset"
	globalConfigFileName      = "config.yaml"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	RootPath         string
	ExplicitFilePath string
}

// ApplicationConfiguration holds defaults for the exclude commands.
type ApplicationConfiguration struct {
	Pyproject string            `mapstructure:"pyproject"`
	Ruff      ToolConfiguration `mapstructure:"ruff"`
	Pyright   ToolConfiguration `mapstructure:"pyright"`
}

// ToolConfiguration overrides how one quality tool is invoked.
type ToolConfiguration struct {
	Executable string `mapstructure:"executable"`
}

// LoadApplicationConfiguration loads configuration from the global file in the
// user's home directory and the project-local file, the local one winning.
// Missing files yield the zero configuration.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	var merged ApplicationConfiguration

	if homeDirectory, homeErr := os.UserHomeDir(); homeErr == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, globalConfigDirectoryName, globalConfigFileName)
		globalConfiguration, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfiguration)
	}

	localPath, resolveErr := resolveConfigPath(options.RootPath, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	localConfiguration, loadErr := loadConfigurationFromPath(localPath)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	return merged.Merge(localConfiguration), nil
}

// Merge overlays override onto the receiver returning the combined
// configuration.
func (configuration ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := configuration
	if override.Pyproject != "" {
		result.Pyproject = override.Pyproject
	}
	result.Ruff = result.Ruff.merge(override.Ruff)
	result.Pyright = result.Pyright.merge(override.Pyright)
	return result
}

func (configuration ToolConfiguration) merge(override ToolConfiguration) ToolConfiguration {
	result := configuration
	if override.Executable != "" {
		result.Executable = override.Executable
	}
	return result
}

func resolveConfigPath(rootPath string, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if rootPath == "" {
			absolutePath, absoluteErr := filepath.Abs(explicitPath)
			if absoluteErr != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, absoluteErr)
			}
			return absolutePath, nil
		}
		return filepath.Join(rootPath, explicitPath), nil
	}
	if rootPath == "" {
		rootPath = "."
	}
	return filepath.Join(rootPath, ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var configuration ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&configuration); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return configuration, nil
}
