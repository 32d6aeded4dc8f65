package compiler

import (
	"context"
	"os/exec"
	"regexp"
	"time"
)

var versionRegex = regexp.MustCompile(`v?(\d+\.\d+\.\d+(?:-[0-9A-Za-z.]+)?)`)

// DetectVersion asks the compiler binary for its version. It returns "" when
// the binary is missing or the output is not recognized.
func DetectVersion(ctx context.Context, binary, dir string) string {
	if binary == "" {
		binary = DefaultBinary
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// #nosec G204 -- binary is the configured compiler
	cmd := exec.CommandContext(ctx, path, "--version")
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return ParseVersion(string(output))
}

// ParseVersion extracts the semantic version from `tsc --version` output ("Version 5.4.5").
func ParseVersion(output string) string {
	if m := versionRegex.FindStringSubmatch(output); len(m) >= 2 {
		return m[1]
	}
	return ""
}
