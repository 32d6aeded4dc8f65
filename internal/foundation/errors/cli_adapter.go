package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
//
// Every failure exits with status 1; the printed message is what distinguishes
// config, parse, build and filesystem errors.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		stderr:  os.Stderr,
		exit:    os.Exit,
	}
}

// ExitCodeFor determines the exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	if a.verbose {
		return fmt.Sprintf("Error: %v", err)
	}

	if classified, ok := AsClassified(err); ok {
		return a.formatClassified(classified)
	}
	return fmt.Sprintf("Error: %v", err)
}

// formatClassified formats a ClassifiedError for display.
func (a *CLIErrorAdapter) formatClassified(err *ClassifiedError) string {
	if err.Cause() != nil {
		return fmt.Sprintf("Error (%s): %s: %v", err.Category(), err.Message(), err.Cause())
	}
	return fmt.Sprintf("Error (%s): %s", err.Category(), err.Message())
}

// HandleError processes an error and exits the program with the appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	a.logError(err)
	_, _ = fmt.Fprintln(a.stderr, a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	classified, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}

	attrs := []slog.Attr{
		slog.String("category", string(classified.Category())),
	}
	for _, key := range []string{ContextField, ContextFile, ContextPath, ContextTarget} {
		if v, ok := classified.Context().GetString(key); ok {
			attrs = append(attrs, slog.String(key, v))
		}
	}
	if a.verbose && classified.Cause() != nil {
		attrs = append(attrs, slog.String("cause", classified.Cause().Error()))
	}
	a.logger.LogAttrs(context.Background(), a.slogLevelFromSeverity(classified.Severity()), classified.Message(), attrs...)
}

// slogLevelFromSeverity converts ClassifiedError severity to slog level.
func (a *CLIErrorAdapter) slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	case SeverityError, SeverityFatal:
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
