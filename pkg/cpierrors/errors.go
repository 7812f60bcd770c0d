// Package cpierrors defines the flat error taxonomy raised by the CPI engine.
//
// Every variant is a distinct Go type so callers can discriminate with
// errors.As instead of string matching, while still satisfying the plain
// error interface for logging and wrapping.
package cpierrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for dispatch by callers such as a CLI exit-code
// mapper or an (out-of-scope) HTTP façade's status-code mapper.
type Kind string

const (
	KindProviderNotFound     Kind = "provider_not_found"
	KindActionNotFound       Kind = "action_not_found"
	KindMissingParameter     Kind = "missing_parameter"
	KindInvalidParameterType Kind = "invalid_parameter_type"
	KindInvalidPath          Kind = "invalid_path"
	KindInvalidCpiFormat     Kind = "invalid_cpi_format"
	KindNoProvidersLoaded    Kind = "no_providers_loaded"
	KindExecutionFailed      Kind = "execution_failed"
	KindParseError           Kind = "parse_error"
	KindIoError              Kind = "io_error"
	KindSerdeError           Kind = "serde_error"
	KindRegexError           Kind = "regex_error"
	KindTimeout              Kind = "timeout"
)

// ProviderNotFound is raised on a registry lookup miss.
type ProviderNotFound struct{ Name string }

func (e *ProviderNotFound) Error() string { return fmt.Sprintf("provider not found: %s", e.Name) }
func (e *ProviderNotFound) Kind() Kind     { return KindProviderNotFound }

// ActionNotFound is raised when a provider has no such action.
type ActionNotFound struct {
	Provider string
	Action   string
}

func (e *ActionNotFound) Error() string {
	return fmt.Sprintf("provider %q has no action %q", e.Provider, e.Action)
}
func (e *ActionNotFound) Kind() Kind { return KindActionNotFound }

// MissingParameter is raised when a required parameter is absent after
// default-settings merge.
type MissingParameter struct{ Name string }

func (e *MissingParameter) Error() string { return fmt.Sprintf("missing parameter: %s", e.Name) }
func (e *MissingParameter) Kind() Kind     { return KindMissingParameter }

// InvalidParameterType is reserved for future type-checked parameters.
type InvalidParameterType struct {
	Name     string
	Expected string
}

func (e *InvalidParameterType) Error() string {
	return fmt.Sprintf("parameter %q must be %s", e.Name, e.Expected)
}
func (e *InvalidParameterType) Kind() Kind { return KindInvalidParameterType }

// InvalidPath is raised when the providers directory is missing or not a
// directory.
type InvalidPath struct{ Reason string }

func (e *InvalidPath) Error() string { return fmt.Sprintf("invalid path: %s", e.Reason) }
func (e *InvalidPath) Kind() Kind     { return KindInvalidPath }

// InvalidCpiFormat is raised when the validator rejects a provider document.
type InvalidCpiFormat struct{ Reason string }

func (e *InvalidCpiFormat) Error() string { return fmt.Sprintf("invalid CPI format: %s", e.Reason) }
func (e *InvalidCpiFormat) Kind() Kind     { return KindInvalidCpiFormat }

// NoProvidersLoaded is raised when a batch directory load produced zero
// providers.
type NoProvidersLoaded struct{ Dir string }

func (e *NoProvidersLoaded) Error() string {
	return fmt.Sprintf("no providers loaded from %s", e.Dir)
}
func (e *NoProvidersLoaded) Kind() Kind { return KindNoProvidersLoaded }

// ExecutionFailed is raised when the child process exits non-zero or fails
// to spawn.
type ExecutionFailed struct {
	Command string
	Stderr  string
}

func (e *ExecutionFailed) Error() string {
	return fmt.Sprintf("execution failed (%s): %s", e.Command, e.Stderr)
}
func (e *ExecutionFailed) Kind() Kind { return KindExecutionFailed }

// ParseError is raised on a regex miss against a non-optional pattern, an
// unknown transform, or a regex compile failure.
type ParseError struct{ Reason string }

func (e *ParseError) Error() string { return fmt.Sprintf("parse error: %s", e.Reason) }
func (e *ParseError) Kind() Kind     { return KindParseError }

// IoError wraps an underlying filesystem/process I/O failure.
type IoError struct {
	Op  string
	Err error
}

func (e *IoError) Error() string { return fmt.Sprintf("io error during %s: %v", e.Op, e.Err) }
func (e *IoError) Unwrap() error { return e.Err }
func (e *IoError) Kind() Kind     { return KindIoError }

// SerdeError wraps an underlying JSON (de)serialization failure.
type SerdeError struct {
	Op  string
	Err error
}

func (e *SerdeError) Error() string { return fmt.Sprintf("serde error during %s: %v", e.Op, e.Err) }
func (e *SerdeError) Unwrap() error { return e.Err }
func (e *SerdeError) Kind() Kind     { return KindSerdeError }

// RegexError wraps an underlying regex compile failure outside of parsing.
// The parser, including ArrayPattern prefix/index construction, reports
// regex compile failures as ParseError instead.
type RegexError struct {
	Pattern string
	Err     error
}

func (e *RegexError) Error() string {
	return fmt.Sprintf("regex error in %q: %v", e.Pattern, e.Err)
}
func (e *RegexError) Unwrap() error { return e.Err }
func (e *RegexError) Kind() Kind     { return KindRegexError }

// Timeout is reserved for timeout enforcement; the engine does not enforce
// one itself (spec §5), but a caller wrapping execution with a deadline can
// surface it in this taxonomy.
type Timeout struct{ Command string }

func (e *Timeout) Error() string { return fmt.Sprintf("timed out: %s", e.Command) }
func (e *Timeout) Kind() Kind     { return KindTimeout }

// Kinder is implemented by every error in this package.
type Kinder interface {
	error
	Kind() Kind
}

// KindOf extracts the Kind of the first error in err's chain that implements
// Kinder (via errors.As), and ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var k Kinder
	if errors.As(err, &k) {
		return k.Kind(), true
	}
	return "", false
}
