// Package errors provides foundational, type-safe error primitives used across tsc-dual-build.
//
// This package contains classified error types and helpers for error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, parse, build, filesystem, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLIErrorAdapter: error presentation and exit codes for the command line
//
// Example usage:
//
//	err := errors.ConfigError("tsconfig.json tscDualBuild.esm.outDir is not set").
//		WithContext("field", "tscDualBuild.esm.outDir").
//		Build()
//
// Build failures keep the compiler error as their cause so callers can still
// reach the *exec.ExitError with errors.As:
//
//	err := errors.WrapError(runErr, errors.CategoryBuild, "tsc build failed").
//		WithContext("target", "esm").
//		Build()
package errors
