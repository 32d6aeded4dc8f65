package testing

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"testing"
)

// RecordingRunner is an in-process compiler.Runner. It records every
// argument vector and creates the requested --outDir under Root, the way
// tsc does.
type RecordingRunner struct {
	Root string
	// FailOn makes Run return Err when any argument equals it.
	FailOn string
	Err    error

	mu    sync.Mutex
	calls [][]string
}

func (r *RecordingRunner) Run(_ context.Context, args []string) error {
	r.mu.Lock()
	r.calls = append(r.calls, slices.Clone(args))
	r.mu.Unlock()

	if r.FailOn != "" && slices.Contains(args, r.FailOn) {
		return r.Err
	}
	if r.Root == "" {
		return nil
	}
	if i := slices.Index(args, "--outDir"); i >= 0 && i+1 < len(args) {
		return os.MkdirAll(filepath.Join(r.Root, args[i+1]), testDirPermissions)
	}
	return nil
}

// Calls returns the recorded argument vectors in invocation order.
func (r *RecordingRunner) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

const fakeCompilerScript = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "Version 5.4.5"
  exit 0
fi
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "--outDir" ]; then out="$a"; fi
  if [ -n "$FAKE_TSC_FAIL" ] && [ "$a" = "$FAKE_TSC_FAIL" ]; then
    echo "$*" >> "$FAKE_TSC_LOG"
    echo "src/index.ts(1,1): error TS1005: ';' expected."
    exit 2
  fi
  prev="$a"
done
echo "$*" >> "$FAKE_TSC_LOG"
if [ -n "$out" ]; then mkdir -p "$out"; fi
`

// FakeCompiler is a shell script standing in for the tsc binary.
type FakeCompiler struct {
	// Path is the executable to pass as the compiler binary.
	Path    string
	logPath string
}

// NewFakeCompiler writes the script and points it at a fresh call log.
// Tests using it are skipped on Windows.
func NewFakeCompiler(t *testing.T) *FakeCompiler {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler is a shell script")
	}
	dir := t.TempDir()
	fc := &FakeCompiler{Path: filepath.Join(dir, "tsc"), logPath: filepath.Join(dir, "calls.log")}
	if err := os.WriteFile(fc.Path, []byte(fakeCompilerScript), testExecPermissions); err != nil {
		t.Fatalf("Failed to write fake compiler: %v", err)
	}
	t.Setenv("FAKE_TSC_LOG", fc.logPath)
	t.Setenv("FAKE_TSC_FAIL", "")
	return fc
}

// FailOn makes the compiler exit with status 2 when an argument equals arg.
func (fc *FakeCompiler) FailOn(t *testing.T, arg string) {
	t.Setenv("FAKE_TSC_FAIL", arg)
}

// Calls returns one space-joined line per compiler invocation.
func (fc *FakeCompiler) Calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(fc.logPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("Failed to read compiler log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}
