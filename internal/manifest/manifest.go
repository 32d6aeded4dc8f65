// Package manifest synthesizes the per-output package.json files that tell a
// module loader whether a build directory holds ES modules or CommonJS.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"git.home.luguber.info/inful/tscdualbuild/internal/config"
	"git.home.luguber.info/inful/tscdualbuild/internal/foundation/errors"
)

// FileName is the manifest written into each code output directory.
const FileName = "package.json"

// ModuleType is the package.json "type" value.
type ModuleType string

const (
	TypeModule   ModuleType = "module"
	TypeCommonJS ModuleType = "commonjs"
)

// Target is one manifest to synthesize.
type Target struct {
	Name   string // "esm" or "cjs", used in logs and metrics
	OutDir string
	Type   ModuleType
	Main   string
}

// Targets returns the ESM and CJS manifests for the given exports, in write order.
func Targets(exports config.PackageExports, esmOutDir, cjsOutDir string) []Target {
	return []Target{
		{Name: "esm", OutDir: esmOutDir, Type: TypeModule, Main: exports.Import},
		{Name: "cjs", OutDir: cjsOutDir, Type: TypeCommonJS, Main: exports.Require},
	}
}

// Synthesize copies base and sets "type" and "main". Fields already present in
// base keep their position; new ones are appended. base is not modified.
func Synthesize(base *config.PackageFields, typ ModuleType, main string) (*config.PackageFields, error) {
	out := orderedmap.New[string, json.RawMessage]()
	if base != nil {
		for pair := base.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, pair.Value)
		}
	}

	typeJSON, err := marshalString(string(typ))
	if err != nil {
		return nil, err
	}
	mainJSON, err := marshalString(main)
	if err != nil {
		return nil, err
	}
	out.Set("type", typeJSON)
	out.Set("main", mainJSON)
	return out, nil
}

// Render serializes fields as JSON indented by two spaces, without a trailing newline.
func Render(fields *config.PackageFields) ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	i := 0
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		if i > 0 {
			compact.WriteByte(',')
		}
		key, err := marshalString(pair.Key)
		if err != nil {
			return nil, err
		}
		compact.Write(key)
		compact.WriteByte(':')
		compact.Write(pair.Value)
		i++
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("indent manifest: %w", err)
	}
	return out.Bytes(), nil
}

// Build synthesizes and renders the manifest of one target.
func Build(base *config.PackageFields, t Target) ([]byte, error) {
	fields, err := Synthesize(base, t.Type, t.Main)
	if err != nil {
		return nil, err
	}
	return Render(fields)
}

// Write replaces <dir>/package.json with data and returns the written path.
// The directory must already exist.
func Write(dir string, data []byte) (string, error) {
	path := filepath.Join(dir, FileName)
	// #nosec G306 -- package.json is published content and must be world-readable
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, fmt.Sprintf("write %s", path)).
			Fatal().
			WithContext(errors.ContextPath, path).
			Build()
	}
	return path, nil
}

// WriteTargetManifests writes the ESM and CJS manifests, ESM first. The first
// failing write aborts and is returned.
func WriteTargetManifests(base *config.PackageFields, exports config.PackageExports, esmOutDir, cjsOutDir string) ([]string, error) {
	written := make([]string, 0, 2)
	for _, t := range Targets(exports, esmOutDir, cjsOutDir) {
		data, err := Build(base, t)
		if err != nil {
			return written, err
		}
		path, err := Write(t.OutDir, data)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// marshalString encodes s as a JSON string without HTML escaping.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode %q: %w", s, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
