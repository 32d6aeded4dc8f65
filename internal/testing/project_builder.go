package testing

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"git.home.luguber.info/inful/tscdualbuild/internal/config"
)

// ProjectBuilder provides a fluent interface for creating package roots with
// a build config and a package manifest.
type ProjectBuilder struct {
	t          *testing.T
	configFile string
	section    map[string]any
	rawConfig  string
	pkgFields  []packageField
	rawPackage string
}

type packageField struct {
	key string
	raw string
}

// NewProjectBuilder starts from the minimal dual build: ES2020 into dist/esm,
// CommonJS into dist/cjs, package "pkg" exporting ./index.mjs and ./index.cjs.
func NewProjectBuilder(t *testing.T) *ProjectBuilder {
	return &ProjectBuilder{
		t:          t,
		configFile: config.DefaultConfigFile,
		section: map[string]any{
			"esm": map[string]any{"module": "ES2020", "outDir": "dist/esm"},
			"cjs": map[string]any{"module": "CommonJS", "outDir": "dist/cjs"},
		},
		pkgFields: []packageField{
			{key: "name", raw: `"pkg"`},
			{key: "exports", raw: `{"import":"./index.mjs","require":"./index.cjs"}`},
		},
	}
}

// WithConfigFile changes the name of the build config file.
func (pb *ProjectBuilder) WithConfigFile(name string) *ProjectBuilder {
	pb.configFile = name
	return pb
}

// WithESM sets the ESM target.
func (pb *ProjectBuilder) WithESM(module, outDir string) *ProjectBuilder {
	pb.section["esm"] = map[string]any{"module": module, "outDir": outDir}
	return pb
}

// WithCJS sets the CJS target.
func (pb *ProjectBuilder) WithCJS(module, outDir string) *ProjectBuilder {
	pb.section["cjs"] = map[string]any{"module": module, "outDir": outDir}
	return pb
}

// WithTypes adds a declaration build.
func (pb *ProjectBuilder) WithTypes(outDir string) *ProjectBuilder {
	pb.section["types"] = map[string]any{"outDir": outDir}
	return pb
}

// WithSectionValue sets an arbitrary key of the tscDualBuild section; a nil
// value removes it.
func (pb *ProjectBuilder) WithSectionValue(key string, value any) *ProjectBuilder {
	if value == nil {
		delete(pb.section, key)
		return pb
	}
	pb.section[key] = value
	return pb
}

// WithRawConfig replaces the generated build config with content.
func (pb *ProjectBuilder) WithRawConfig(content string) *ProjectBuilder {
	pb.rawConfig = content
	return pb
}

// WithPackageField sets a package.json field to raw JSON. Existing fields
// keep their position; new ones are appended.
func (pb *ProjectBuilder) WithPackageField(key, raw string) *ProjectBuilder {
	for i := range pb.pkgFields {
		if pb.pkgFields[i].key == key {
			pb.pkgFields[i].raw = raw
			return pb
		}
	}
	pb.pkgFields = append(pb.pkgFields, packageField{key: key, raw: raw})
	return pb
}

// WithExports sets exports.import and exports.require.
func (pb *ProjectBuilder) WithExports(importPath, requirePath string) *ProjectBuilder {
	data, err := json.Marshal(map[string]string{"import": importPath, "require": requirePath})
	if err != nil {
		pb.t.Fatalf("Failed to marshal exports: %v", err)
	}
	return pb.WithPackageField("exports", string(data))
}

// WithRawPackageJSON replaces the generated package.json with content.
func (pb *ProjectBuilder) WithRawPackageJSON(content string) *ProjectBuilder {
	pb.rawPackage = content
	return pb
}

// Build writes the project into a fresh temporary directory.
func (pb *ProjectBuilder) Build() *Project {
	pb.t.Helper()
	root := pb.t.TempDir()
	p := &Project{
		Root:        root,
		ConfigFile:  pb.configFile,
		ConfigPath:  filepath.Join(root, pb.configFile),
		PackageJSON: filepath.Join(root, "package.json"),
	}

	if err := os.MkdirAll(filepath.Dir(p.ConfigPath), testDirPermissions); err != nil {
		pb.t.Fatalf("Failed to create config directory: %v", err)
	}
	writeFile(pb.t, p.ConfigPath, pb.renderConfig())
	writeFile(pb.t, p.PackageJSON, pb.renderPackage())
	return p
}

// renderConfig emits a build config with a comment and trailing commas, the
// way hand-edited tsconfig files look.
func (pb *ProjectBuilder) renderConfig() string {
	if pb.rawConfig != "" {
		return pb.rawConfig
	}
	section, err := json.MarshalIndent(pb.section, "  ", "  ")
	if err != nil {
		pb.t.Fatalf("Failed to marshal build section: %v", err)
	}
	return "{\n" +
		"  // written by ProjectBuilder\n" +
		"  \"compilerOptions\": {\"strict\": true},\n" +
		"  \"" + config.SectionKey + "\": " + string(section) + ",\n" +
		"}\n"
}

func (pb *ProjectBuilder) renderPackage() string {
	if pb.rawPackage != "" {
		return pb.rawPackage
	}
	parts := make([]string, 0, len(pb.pkgFields))
	for _, f := range pb.pkgFields {
		parts = append(parts, "  \""+f.key+"\": "+f.raw)
	}
	return "{\n" + strings.Join(parts, ",\n") + "\n}\n"
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), testFilePermissions); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// Project is a package root written by ProjectBuilder.
type Project struct {
	Root        string
	// ConfigFile is the build config relative to Root.
	ConfigFile  string
	ConfigPath  string
	PackageJSON string
}

// LoadOptions points config.Load at the project.
func (p *Project) LoadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFile: p.ConfigFile, PackageJSON: p.PackageJSON}
}

// Path joins elements onto the project root.
func (p *Project) Path(elem ...string) string {
	return filepath.Join(append([]string{p.Root}, elem...)...)
}

// Files returns assertions rooted at the project.
func (p *Project) Files(t *testing.T) *FileAssertions {
	return NewFileAssertions(t, p.Root)
}
