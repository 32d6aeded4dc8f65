package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"git.home.luguber.info/inful/tscdualbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/tscdualbuild/internal/logfields"
)

// LoadOptions are the inputs of Load. Nothing is read from the process
// environment; the CLI fills PackageJSON from npm_package_json.
type LoadOptions struct {
	// ConfigFile is the build-tool config, relative to the project root unless absolute.
	ConfigFile string
	// PackageJSON is the path of the package manifest; its directory is the project root.
	PackageJSON string
	// RequireTypes makes the types section mandatory even when it is absent.
	RequireTypes bool
}

// Load reads, validates and merges the build config and package manifest.
// Every required field is checked before Load returns, so no build step can
// start with an incomplete configuration.
func Load(opts LoadOptions) (*BuildConfig, error) {
	if opts.PackageJSON == "" {
		return nil, errors.ConfigError(PackageJSONEnv + " is not set (run through your package manager or pass --package-json)").
			WithContext(errors.ContextField, PackageJSONEnv).
			Build()
	}
	configPath, pkgPath, err := opts.Paths()
	if err != nil {
		return nil, err
	}

	cfg := &BuildConfig{
		RootDir:         filepath.Dir(pkgPath),
		ConfigPath:      configPath,
		PackageJSONPath: pkgPath,
	}

	slog.Debug("Loading build configuration", logfields.File(configPath))
	if err := loadBuildSection(cfg, configPath, opts.RequireTypes); err != nil {
		return nil, err
	}

	slog.Debug("Loading package manifest", logfields.File(pkgPath))
	if err := loadPackage(cfg, pkgPath); err != nil {
		return nil, err
	}

	if err := validateOutDirs(cfg, fieldChecker{file: filepath.Base(configPath), path: configPath}); err != nil {
		return nil, err
	}

	warnUnknownModules(cfg)
	return cfg, nil
}

// Paths returns the absolute paths of the build config and package manifest.
// The config file is resolved against the directory of the package manifest.
func (opts LoadOptions) Paths() (configPath, pkgPath string, err error) {
	pkgPath, err = filepath.Abs(opts.PackageJSON)
	if err != nil {
		return "", "", errors.WrapError(err, errors.CategoryFileSystem, "resolve package.json path").
			Fatal().
			WithContext(errors.ContextPath, opts.PackageJSON).
			Build()
	}
	configPath = opts.ConfigFile
	if configPath == "" {
		configPath = DefaultConfigFile
	}
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(filepath.Dir(pkgPath), configPath)
	}
	return configPath, pkgPath, nil
}

func loadBuildSection(cfg *BuildConfig, configPath string, requireTypes bool) error {
	std, err := readRelaxed(configPath)
	if err != nil {
		return err
	}
	top, err := decodeObject(configPath, std)
	if err != nil {
		return err
	}

	fc := fieldChecker{file: filepath.Base(configPath), path: configPath}
	section, err := fc.object(top, SectionKey, SectionKey)
	if err != nil {
		return err
	}

	if cfg.ESM, err = loadTarget(fc, section, "esm"); err != nil {
		return err
	}
	if cfg.CJS, err = loadTarget(fc, section, "cjs"); err != nil {
		return err
	}

	if requireTypes || present(section, "types") {
		types, err := fc.object(section, "types", SectionKey+".types")
		if err != nil {
			return err
		}
		outDir, err := fc.str(types, "outDir", SectionKey+".types.outDir")
		if err != nil {
			return err
		}
		cfg.Types = &TypesConfig{OutDir: outDir}
	}
	return nil
}

func loadTarget(fc fieldChecker, section object, name string) (TargetConfig, error) {
	prefix := SectionKey + "." + name
	target, err := fc.object(section, name, prefix)
	if err != nil {
		return TargetConfig{}, err
	}
	module, err := fc.str(target, "module", prefix+".module")
	if err != nil {
		return TargetConfig{}, err
	}
	outDir, err := fc.str(target, "outDir", prefix+".outDir")
	if err != nil {
		return TargetConfig{}, err
	}
	return TargetConfig{Module: module, OutDir: outDir}, nil
}

func loadPackage(cfg *BuildConfig, pkgPath string) error {
	std, err := readRelaxed(pkgPath)
	if err != nil {
		return err
	}
	top, err := decodeObject(pkgPath, std)
	if err != nil {
		return err
	}

	fc := fieldChecker{file: filepath.Base(pkgPath), path: pkgPath}
	exports, err := fc.object(top, "exports", "exports")
	if err != nil {
		return err
	}
	if cfg.Exports.Import, err = fc.str(exports, "import", "exports.import"); err != nil {
		return err
	}
	if cfg.Exports.Require, err = fc.str(exports, "require", "exports.require"); err != nil {
		return err
	}

	base := orderedmap.New[string, json.RawMessage]()
	if err := base.UnmarshalJSON(std); err != nil {
		return parseError(pkgPath, err)
	}
	base.Delete("exports")
	cfg.PackageBase = base
	return nil
}

// validateOutDirs rejects configurations whose outputs would overwrite each other.
func validateOutDirs(cfg *BuildConfig, fc fieldChecker) error {
	esm := cfg.ResolvePath(cfg.ESM.OutDir)
	cjs := cfg.ResolvePath(cfg.CJS.OutDir)
	if esm == cjs {
		return sameDirError(fc, SectionKey+".esm.outDir", SectionKey+".cjs.outDir", cfg.CJS.OutDir)
	}
	if cfg.Types == nil {
		return nil
	}
	types := cfg.ResolvePath(cfg.Types.OutDir)
	switch types {
	case esm:
		return sameDirError(fc, SectionKey+".esm.outDir", SectionKey+".types.outDir", cfg.Types.OutDir)
	case cjs:
		return sameDirError(fc, SectionKey+".cjs.outDir", SectionKey+".types.outDir", cfg.Types.OutDir)
	}
	return nil
}

func sameDirError(fc fieldChecker, a, b, dir string) error {
	return errors.ConfigError(fmt.Sprintf("%s %s and %s must differ (both resolve to %q)", fc.file, a, b, dir)).
		WithContext(errors.ContextField, b).
		WithContext(errors.ContextFile, fc.path).
		Build()
}
