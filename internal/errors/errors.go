package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors that can be used with errors.Is() for error type checking
var (
	// ErrNotGitRepository indicates the working directory is not inside a git work tree
	ErrNotGitRepository = errors.New("not a git repository")

	// ErrNoChanges indicates there are no staged or unstaged changes to export
	ErrNoChanges = errors.New("no staged or unstaged changes to export")

	// ErrPatchNotFound indicates a patch file could not be resolved
	ErrPatchNotFound = errors.New("patch file not found")

	// ErrMissingArgument indicates a required positional argument was not given
	ErrMissingArgument = errors.New("missing required argument")

	// ErrCancelled indicates the user declined or aborted an operation
	ErrCancelled = errors.New("cancelled")

	// ErrNoInput indicates a prompt could not be shown because no terminal is available
	ErrNoInput = errors.New("no interactive input available")

	// ErrTransferFailed indicates the remote copy step exited non-zero
	ErrTransferFailed = errors.New("transfer failed")

	// ErrApplyFailed indicates git apply rejected a patch section
	ErrApplyFailed = errors.New("failed to apply patch")

	// ErrMalformedPatch indicates a patch envelope violates the section grammar
	ErrMalformedPatch = errors.New("malformed patch")

	// ErrGitOperationFailed indicates a git command returned an error
	ErrGitOperationFailed = errors.New("git operation failed")

	// ErrInvalidConfiguration indicates an invalid value in the configuration
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Wrap wraps an error with a message for better context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted message for better context.
func Wrapf(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether target is in err's chain.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// CommandError represents a failed external command (git, ssh, scp, ...).
// It captures the command line, the underlying error, and whatever the
// command wrote to stderr.
type CommandError struct {
	Command string
	Args    []string
	Err     error
	Output  string
}

// Error implements the error interface with the command line and its stderr.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Command, strings.Join(e.Args, " "))
	if out := strings.TrimSpace(e.Output); out != "" {
		msg = fmt.Sprintf("%s: %s", msg, out)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError with the given parameters.
func NewCommandError(command string, args []string, err error, output string) *CommandError {
	return &CommandError{
		Command: command,
		Args:    args,
		Err:     err,
		Output:  output,
	}
}

// ConfigError represents an error in the application configuration.
type ConfigError struct {
	Parameter string
	Value     interface{}
	Err       error
}

// Error implements the error interface with details about the invalid configuration.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("configuration error for %s = %v: %v", e.Parameter, e.Value, e.Err)
	}
	return fmt.Sprintf("configuration error for %s: %v", e.Parameter, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError with the given parameters.
func NewConfigError(parameter string, value interface{}, err error) *ConfigError {
	return &ConfigError{
		Parameter: parameter,
		Value:     value,
		Err:       err,
	}
}
