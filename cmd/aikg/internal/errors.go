package internal

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LeonFTWANG/AIKG/internal/types"
)

// Exit code constants for the CLI
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitError indicates a general error
	ExitError = 1
	// ExitTimeout indicates the operation timed out
	ExitTimeout = 3
	// ExitCancelled indicates the operation was cancelled
	ExitCancelled = 4
	// ExitConfigError indicates a configuration error
	ExitConfigError = 10
	// ExitGraphError indicates the graph store is unreachable or a query failed
	ExitGraphError = 11
	// ExitNotFound indicates a requested resource does not exist
	ExitNotFound = 12
	// ExitAuthError indicates an authentication or account error
	ExitAuthError = 13
)

// CLIError represents a CLI-specific error with an exit code
type CLIError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// WrapError creates a new CLIError wrapping an existing error
func WrapError(code int, message string, err error) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// NewCLIError creates a new CLIError with the given code and message
func NewCLIError(code int, message string) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
	}
}

// HandleError handles an error and returns the appropriate exit code.
// It also prints the error message to the command's error output.
func HandleError(cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, context.Canceled) {
		cmd.PrintErrln("Operation cancelled")
		return ExitCancelled
	}

	if errors.Is(err, context.DeadlineExceeded) {
		cmd.PrintErrln("Operation timed out")
		return ExitTimeout
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		cmd.PrintErrln("Error:", cliErr.Message)
		if cliErr.Cause != nil && verboseEnabled(cmd) {
			cmd.PrintErrln("Cause:", cliErr.Cause)
		}
		return cliErr.Code
	}

	var svcErr *types.AIKGError
	if errors.As(err, &svcErr) {
		cmd.PrintErrln("Error:", svcErr.Message)
		if verboseEnabled(cmd) {
			cmd.PrintErrln("Code:", svcErr.Code)
			if svcErr.Cause != nil {
				cmd.PrintErrln("Cause:", svcErr.Cause)
			}
		}
		return mapServiceErrorToExitCode(svcErr)
	}

	cmd.PrintErrln("Error:", err)
	return ExitError
}

// mapServiceErrorToExitCode maps AIKGError codes to CLI exit codes
func mapServiceErrorToExitCode(err *types.AIKGError) int {
	switch err.Code {
	case types.CONFIG_LOAD_FAILED,
		types.CONFIG_PARSE_FAILED,
		types.CONFIG_VALIDATION_FAILED,
		types.CONFIG_NOT_FOUND:
		return ExitConfigError
	case types.GRAPH_UNAVAILABLE,
		types.GRAPH_QUERY_FAILED,
		types.GRAPH_WRITE_FAILED,
		types.GRAPH_CONNECTION_LOST:
		return ExitGraphError
	case types.KNOWLEDGE_NOT_FOUND,
		types.CONVERSATION_NOT_FOUND,
		types.USER_NOT_FOUND,
		types.PROVIDER_NOT_FOUND:
		return ExitNotFound
	case types.AUTH_FAILED,
		types.USER_ALREADY_EXISTS:
		return ExitAuthError
	case types.GENERATION_TIMEOUT:
		return ExitTimeout
	default:
		return ExitError
	}
}

// verboseEnabled reports whether the command was run with --verbose.
func verboseEnabled(cmd *cobra.Command) bool {
	flag := cmd.Flag("verbose")
	return flag != nil && flag.Changed
}

// IsVerbose checks if verbose mode is enabled via environment variable or flag.
// This is used for panic recovery before flag parsing has happened.
func IsVerbose() bool {
	if os.Getenv("AIKG_VERBOSE") != "" {
		return true
	}

	for _, arg := range os.Args {
		if arg == "-v" || arg == "--verbose" {
			return true
		}
	}

	return false
}
