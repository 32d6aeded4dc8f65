package config

import (
	"log/slog"

	"git.home.luguber.info/inful/tscdualbuild/internal/foundation/normalization"
	"git.home.luguber.info/inful/tscdualbuild/internal/logfields"
)

// ModuleFamily groups tsc --module values by the module system they emit.
type ModuleFamily string

const (
	FamilyUnknown  ModuleFamily = ""
	FamilyESM      ModuleFamily = "esm"
	FamilyCommonJS ModuleFamily = "commonjs"
	// FamilyNode covers node16/node18/nodenext, which pick per file from package.json "type".
	FamilyNode  ModuleFamily = "node"
	FamilyOther ModuleFamily = "other"
)

var moduleNormalizer = normalization.NewNormalizer("module format", map[string]ModuleFamily{
	"none":     FamilyOther,
	"commonjs": FamilyCommonJS,
	"amd":      FamilyOther,
	"umd":      FamilyOther,
	"system":   FamilyOther,
	"es6":      FamilyESM,
	"es2015":   FamilyESM,
	"es2020":   FamilyESM,
	"es2022":   FamilyESM,
	"esnext":   FamilyESM,
	"node16":   FamilyNode,
	"node18":   FamilyNode,
	"node20":   FamilyNode,
	"nodenext": FamilyNode,
	"preserve": FamilyOther,
}, FamilyUnknown)

// ModuleFamilyOf classifies a tsc --module value (case-insensitive).
func ModuleFamilyOf(module string) ModuleFamily {
	return moduleNormalizer.Normalize(module)
}

// warnUnknownModules flags suspicious module settings. The values are still
// passed to the compiler unchanged; tsc has the final say.
func warnUnknownModules(cfg *BuildConfig) {
	check := func(target string, tc TargetConfig, want ModuleFamily) {
		if !moduleNormalizer.IsKnown(tc.Module) {
			slog.Warn("Unrecognized module format; passing it to the compiler as-is",
				logfields.Target(target), logfields.Module(tc.Module),
				slog.Any("known", moduleNormalizer.ValidKeys()))
			return
		}
		switch family := ModuleFamilyOf(tc.Module); family {
		case want, FamilyNode:
		default:
			slog.Warn("Module format does not match the target's module system",
				logfields.Target(target), logfields.Module(tc.Module), slog.String("family", string(family)))
		}
	}
	check("esm", cfg.ESM, FamilyESM)
	check("cjs", cfg.CJS, FamilyCommonJS)
}
