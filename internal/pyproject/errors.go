package pyproject

import "fmt"

// ConfigError reports a pyproject.toml that is missing, malformed, or lacks
// the table a tool's exclude list lives in.
type ConfigError struct {
	Path   string
	Reason string
	Err    error
}

// Error renders the failure including the wrapped cause when present.
func (configError *ConfigError) Error() string {
	location := configError.Path
	if location == "" {
		location = "pyproject.toml"
	}
	if configError.Err != nil {
		return fmt.Sprintf("%s: %s: %v", location, configError.Reason, configError.Err)
	}
	return fmt.Sprintf("%s: %s", location, configError.Reason)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As.
func (configError *ConfigError) Unwrap() error {
	return configError.Err
}
