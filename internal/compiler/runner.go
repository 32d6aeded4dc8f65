// Package compiler abstracts the external TypeScript compiler. Stages only
// build argument vectors and hand them to a Runner, so tests and dry runs
// can swap the real `tsc` binary for a fake.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"git.home.luguber.info/inful/tscdualbuild/internal/logfields"
)

// DefaultBinary is the compiler executable looked up on PATH.
const DefaultBinary = "tsc"

// ErrCompilerNotFound indicates the compiler executable was not found on PATH.
var ErrCompilerNotFound = errors.New("compiler binary not found")

// Runner runs the compiler once with the given arguments.
//
// A non-nil error means the invocation failed. Implementations return the
// process error as-is so callers can inspect it (e.g. *exec.ExitError).
type Runner interface {
	Run(ctx context.Context, args []string) error
}

// BinaryRunner invokes the compiler binary present on PATH.
type BinaryRunner struct {
	// Binary is the executable name or path; DefaultBinary when empty.
	Binary string
	// Dir is the working directory, normally the project root.
	Dir string
	// Output receives the compiler's diagnostics; os.Stderr when nil.
	Output io.Writer
}

func (b *BinaryRunner) binary() string {
	if b.Binary == "" {
		return DefaultBinary
	}
	return b.Binary
}

func (b *BinaryRunner) Run(ctx context.Context, args []string) error {
	path, err := exec.LookPath(b.binary())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompilerNotFound, err)
	}

	// #nosec G204 -- binary and arguments come from the project's own configuration
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = b.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("Invoking compiler", logfields.Path(path), logfields.Args(args), slog.String("dir", b.Dir))
	runErr := cmd.Run()

	// tsc reports diagnostics on stdout; keep both streams visible to the user.
	out := b.Output
	if out == nil {
		out = os.Stderr
	}
	for _, stream := range []string{stdout.String(), stderr.String()} {
		if strings.TrimSpace(stream) == "" {
			continue
		}
		_, _ = io.WriteString(out, stream)
		if !strings.HasSuffix(stream, "\n") {
			_, _ = io.WriteString(out, "\n")
		}
	}

	if runErr != nil {
		slog.Debug("Compiler exited with failure", logfields.Error(runErr))
		return runErr
	}
	return nil
}

// NoopRunner performs no compilation; used by --dry-run and tests.
type NoopRunner struct{}

func (NoopRunner) Run(_ context.Context, args []string) error {
	slog.Info("Dry run: skipping compiler invocation", logfields.Args(args))
	return nil
}
