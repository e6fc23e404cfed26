package cmd

import (
	"fmt"
	"os"
	"strings"

	"cd224-extract-service/pkg/errors"
	"cd224-extract-service/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError prints a diagnostic for the error and returns the process
// exit code. The legacy design surfaces a single diagnostic message on
// fatal error; the exit code distinguishes start-up-fatal from
// mid-run-fatal.
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if extractErr, ok := errors.AsExtractError(err); ok {
		return h.handleExtractError(extractErr)
	}
	return h.handleGenericError(err)
}

func (h *CLIErrorHandler) handleExtractError(err *errors.ExtractError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", err.Suggestion)
	}

	if err.Category == errors.CategoryRun {
		fmt.Fprintf(os.Stderr, "Output written before the failure has been left in place.\n")
	}

	if h.verbose {
		if len(err.Context) > 0 {
			fmt.Fprintf(os.Stderr, "Context:\n")
			for key, value := range err.Context {
				fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
			}
		}
		if err.Cause != nil {
			fmt.Fprintf(os.Stderr, "Underlying error: %v\n", err.Cause)
		}
	}

	return err.GetExitCode()
}

func (h *CLIErrorHandler) handleGenericError(err error) int {
	if os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory") {
		fmt.Fprintf(os.Stderr, "Error: file not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: check if the file path is correct and the file exists\n")
		return 3
	}

	if os.IsPermission(err) || strings.Contains(err.Error(), "permission denied") {
		fmt.Fprintf(os.Stderr, "Error: permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: check file permissions\n")
		return 3
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}
