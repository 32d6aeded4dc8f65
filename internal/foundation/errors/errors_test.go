package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "tscDualBuild.esm.outDir is not set").
			WithSeverity(SeverityFatal).
			WithContext(ContextField, "tscDualBuild.esm.outDir").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Field() != "tscDualBuild.esm.outDir" {
			t.Errorf("expected field tscDualBuild.esm.outDir, got %q", err.Field())
		}
		if err.Error() != "[config] tscDualBuild.esm.outDir is not set" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		err := ConfigError("test error").Build()
		wrapped := fmt.Errorf("stage load_config: %w", err)

		if !IsClassified(wrapped) {
			t.Error("expected wrapped error to be classified")
		}
		if !HasCategory(wrapped, CategoryConfig) {
			t.Error("expected error to have config category")
		}
		if GetSeverity(wrapped) != SeverityFatal {
			t.Error("expected config error to be fatal")
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("expected unclassified errors to report internal category")
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Wrap keeps cause reachable", func(t *testing.T) {
		originalErr := errors.New("exit status 2")
		err := WrapError(originalErr, CategoryBuild, "tsc build failed").
			Fatal().
			WithContext(ContextTarget, "esm").
			Build()

		if !errors.Is(err, originalErr) {
			t.Error("expected error to wrap original error")
		}
		if err.Cause() != originalErr {
			t.Error("expected cause to be returned unchanged")
		}
		target, _ := err.Context().GetString(ContextTarget)
		if target != "esm" {
			t.Errorf("expected target context 'esm', got %s", target)
		}
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
		}{
			{"ConfigError", ConfigError("test"), CategoryConfig},
			{"ParseError", ParseError("test"), CategoryParse},
			{"ValidationError", ValidationError("test"), CategoryValidation},
			{"BuildError", BuildError("test"), CategoryBuild},
			{"FileSystemError", FileSystemError("test"), CategoryFileSystem},
			{"RuntimeError", RuntimeError("test"), CategoryRuntime},
			{"InternalError", InternalError("test"), CategoryInternal},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				if err.Category() != tt.category {
					t.Errorf("expected category %s, got %s", tt.category, err.Category())
				}
				if !err.IsFatal() {
					t.Errorf("expected %s to be fatal", tt.name)
				}
			})
		}
	})

	t.Run("WithContext copies", func(t *testing.T) {
		base := ConfigError("missing").Build()
		derived := base.WithContext(ContextFile, "tsconfig.json")

		if _, ok := base.Context().Get(ContextFile); ok {
			t.Error("expected original error context to stay unchanged")
		}
		if file, _ := derived.Context().GetString(ContextFile); file != "tsconfig.json" {
			t.Errorf("expected derived file context, got %q", file)
		}
	})
}

func TestErrorContext(t *testing.T) {
	t.Run("Context operations", func(t *testing.T) {
		ctx := make(ErrorContext)
		ctx = ctx.Set("key1", "value1")
		ctx = ctx.Set("key2", 42)

		value1, exists1 := ctx.GetString("key1")
		if !exists1 || value1 != "value1" {
			t.Errorf("expected key1=value1, got %v", value1)
		}

		value2, exists2 := ctx.Get("key2")
		if !exists2 || value2 != 42 {
			t.Errorf("expected key2=42, got %v", value2)
		}

		if _, exists3 := ctx.Get("nonexistent"); exists3 {
			t.Error("expected nonexistent key to not exist")
		}
	})

	t.Run("Context merge", func(t *testing.T) {
		ctx1 := ErrorContext{"key1": "value1", "shared": "original"}
		ctx2 := ErrorContext{"key2": "value2", "shared": "overridden"}

		merged := ctx1.Merge(ctx2)

		shared, _ := merged.GetString("shared")
		if shared != "overridden" {
			t.Errorf("expected shared=overridden, got %s", shared)
		}
		if len(merged) != 3 {
			t.Errorf("expected 3 keys after merge, got %d", len(merged))
		}
	})
}
