// Package config resolves the dual-build configuration from the project's
// build-tool config file (tsconfig.json by default) and its package.json.
package config

import (
	"encoding/json"
	"path/filepath"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	// DefaultConfigFile is the build-tool config read when no file is given.
	DefaultConfigFile = "tsconfig.json"
	// SectionKey is the top-level key holding the dual-build settings.
	SectionKey = "tscDualBuild"
	// PackageJSONEnv is set by npm/yarn/pnpm to the invoking package's manifest.
	PackageJSONEnv = "npm_package_json"
)

// TargetConfig describes one code-emitting compiler run.
type TargetConfig struct {
	Module string `json:"module" yaml:"module"`
	OutDir string `json:"outDir" yaml:"outDir"`
}

// TypesConfig describes the declaration-only compiler run.
type TypesConfig struct {
	OutDir string `json:"outDir" yaml:"outDir"`
}

// PackageExports is the `exports` entry of package.json.
type PackageExports struct {
	Import  string `json:"import" yaml:"import"`
	Require string `json:"require" yaml:"require"`
}

// Shape tells whether a declaration build is part of the run.
type Shape string

const (
	ShapeDual      Shape = "dual"
	ShapeDualTypes Shape = "dual+types"
)

// PackageFields is an insertion-ordered view of package.json. Values are kept
// as raw JSON so nested objects round-trip with their original key order.
type PackageFields = orderedmap.OrderedMap[string, json.RawMessage]

// BuildConfig is the resolved configuration of one run. It is built once by
// Load and only read afterwards.
type BuildConfig struct {
	ESM   TargetConfig
	CJS   TargetConfig
	Types *TypesConfig

	Exports PackageExports
	// PackageBase is package.json without its `exports` field.
	PackageBase *PackageFields

	RootDir         string
	ConfigPath      string
	PackageJSONPath string
}

// Shape reports the configuration shape in use.
func (c *BuildConfig) Shape() Shape {
	if c.Types != nil {
		return ShapeDualTypes
	}
	return ShapeDual
}

// HasTypes reports whether a declaration build is configured.
func (c *BuildConfig) HasTypes() bool {
	return c.Types != nil
}

// ResolvePath interprets p relative to the project root.
func (c *BuildConfig) ResolvePath(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.RootDir, p)
}

// PackageFieldNames lists the package.json fields carried into the synthesized manifests.
func (c *BuildConfig) PackageFieldNames() []string {
	if c.PackageBase == nil {
		return nil
	}
	names := make([]string, 0, c.PackageBase.Len())
	for pair := c.PackageBase.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}
