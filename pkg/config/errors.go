package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is the base error for configuration that fails validation.
	ErrInvalidConfig = errors.New("invalid notification client config")

	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrReadingFile is returned when a config or .env file cannot be read
	ErrReadingFile = errors.New("failed to read config file")
)

// ConfigError names the offending field and why it was rejected.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// IsConfigError reports whether err was produced by Validate.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
