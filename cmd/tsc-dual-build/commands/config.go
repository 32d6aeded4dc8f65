package commands

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/tscdualbuild/internal/config"
	"git.home.luguber.info/inful/tscdualbuild/internal/manifest"
)

// ConfigCmd implements the 'config' command.
type ConfigCmd struct {
	ConfigFile   string `arg:"" name:"config-file" optional:"" default:"tsconfig.json" help:"Build config holding the tscDualBuild section, relative to the package root"`
	RequireTypes bool   `name:"require-types" help:"Fail unless a types section with an outDir is configured"`
	Format       string `enum:"yaml,json" default:"yaml" help:"Output format (yaml|json)"`
}

type configView struct {
	Shape         string                `json:"shape" yaml:"shape"`
	RootDir       string                `json:"rootDir" yaml:"rootDir"`
	ConfigFile    string                `json:"configFile" yaml:"configFile"`
	PackageJSON   string                `json:"packageJson" yaml:"packageJson"`
	ESM           config.TargetConfig   `json:"esm" yaml:"esm"`
	CJS           config.TargetConfig   `json:"cjs" yaml:"cjs"`
	Types         *config.TypesConfig   `json:"types,omitempty" yaml:"types,omitempty"`
	Exports       config.PackageExports `json:"exports" yaml:"exports"`
	Manifests     []manifestView        `json:"manifests" yaml:"manifests"`
	PackageFields []string              `json:"packageFields" yaml:"packageFields"`
}

type manifestView struct {
	Path string `json:"path" yaml:"path"`
	Type string `json:"type" yaml:"type"`
	Main string `json:"main" yaml:"main"`
}

func newConfigView(cfg *config.BuildConfig) configView {
	v := configView{
		Shape:         string(cfg.Shape()),
		RootDir:       cfg.RootDir,
		ConfigFile:    cfg.ConfigPath,
		PackageJSON:   cfg.PackageJSONPath,
		ESM:           cfg.ESM,
		CJS:           cfg.CJS,
		Types:         cfg.Types,
		Exports:       cfg.Exports,
		PackageFields: cfg.PackageFieldNames(),
	}
	for _, t := range manifest.Targets(cfg.Exports, cfg.ResolvePath(cfg.ESM.OutDir), cfg.ResolvePath(cfg.CJS.OutDir)) {
		v.Manifests = append(v.Manifests, manifestView{
			Path: filepath.Join(t.OutDir, manifest.FileName),
			Type: string(t.Type),
			Main: t.Main,
		})
	}
	return v
}

func (c *ConfigCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.LoadOptions(c.ConfigFile, c.RequireTypes))
	if err != nil {
		return err
	}
	view := newConfigView(cfg)
	out := g.stdout()

	switch c.Format {
	case "json":
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	default:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		return enc.Close()
	}
}
