package particle

import (
	"errors"
	"fmt"
)

// ErrConfig is returned (wrapped in a *ConfigError) when a pool is
// constructed from an invalid Config.
var ErrConfig = errors.New("particle: invalid configuration")

// ConfigError names the offending Config field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("particle: invalid configuration: %s %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

func configErr(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
