// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidPublishDir is returned when a PublishDirPath value is whitespace-only.
	ErrInvalidPublishDir = errors.New("invalid publish directory")
	// ErrInvalidPythonExecutable is returned when a PythonExecutable value is whitespace-only.
	ErrInvalidPythonExecutable = errors.New("invalid python executable")
	// ErrInvalidOrchestratorURL is returned when an orchestrator URL does not parse.
	ErrInvalidOrchestratorURL = errors.New("invalid orchestrator url")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not
	// recognized. It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// PublishDirPath is the directory artifacts are published into.
	// The zero value ("") means "use the default publish directory".
	// Non-zero values must not be whitespace-only.
	PublishDirPath string

	// InvalidPublishDirError is returned when a PublishDirPath value is
	// non-empty but whitespace-only.
	InvalidPublishDirError struct {
		Value PublishDirPath
	}

	// PythonExecutable names the interpreter used to create virtual
	// environments. The zero value ("") means "use python3 from PATH".
	PythonExecutable string

	// InvalidPythonExecutableError is returned when a PythonExecutable
	// value is non-empty but whitespace-only.
	InvalidPythonExecutableError struct {
		Value PythonExecutable
	}

	// InvalidOrchestratorURLError is returned when an orchestrator URL
	// is not an absolute http(s) URL.
	InvalidOrchestratorURLError struct {
		Value string
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig and collects field-level errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig and collects field-level errors from all
	// sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// PublishDir is where published artifacts are placed.
		PublishDir PublishDirPath `json:"publish_dir" mapstructure:"publish_dir"`
		// Python names the interpreter used for virtual environments.
		Python PythonExecutable `json:"python" mapstructure:"python"`
		// Orchestrator configures the optional remote platform.
		Orchestrator OrchestratorConfig `json:"orchestrator" mapstructure:"orchestrator"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// OrchestratorConfig points at the remote execution platform. The
	// CLI never calls it; the URL is carried for surrounding tooling.
	OrchestratorConfig struct {
		// URL is the orchestrator endpoint.
		URL string `json:"url" mapstructure:"url"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the PublishDirPath.
func (p PublishDirPath) String() string { return string(p) }

// IsValid returns whether the PublishDirPath is valid.
// The zero value ("") is valid and means "use the default".
func (p PublishDirPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidPublishDirError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPublishDirError.
func (e *InvalidPublishDirError) Error() string {
	return fmt.Sprintf("invalid publish directory %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidPublishDir for errors.Is() compatibility.
func (e *InvalidPublishDirError) Unwrap() error { return ErrInvalidPublishDir }

// String returns the string representation of the PythonExecutable.
func (p PythonExecutable) String() string { return string(p) }

// IsValid returns whether the PythonExecutable is valid.
// The zero value ("") is valid and means "use python3 from PATH".
func (p PythonExecutable) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidPythonExecutableError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPythonExecutableError.
func (e *InvalidPythonExecutableError) Error() string {
	return fmt.Sprintf("invalid python executable %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidPythonExecutable for errors.Is() compatibility.
func (e *InvalidPythonExecutableError) Unwrap() error { return ErrInvalidPythonExecutable }

// IsValid returns whether the OrchestratorConfig has valid fields.
// The zero-value URL is valid; non-empty URLs must be absolute http(s).
func (c OrchestratorConfig) IsValid() (bool, []error) {
	if c.URL == "" {
		return true, nil
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false, []error{&InvalidOrchestratorURLError{Value: c.URL}}
	}
	return true, nil
}

// Error implements the error interface for InvalidOrchestratorURLError.
func (e *InvalidOrchestratorURLError) Error() string {
	return fmt.Sprintf("invalid orchestrator url %q: must be an absolute http(s) URL", e.Value)
}

// Unwrap returns ErrInvalidOrchestratorURL for errors.Is() compatibility.
func (e *InvalidOrchestratorURLError) Unwrap() error { return ErrInvalidOrchestratorURL }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to PublishDir, Python, Orchestrator, and UI validation.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.PublishDir.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Python.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Orchestrator.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		PublishDir: "published",
		Python:     "python3",
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
