package build

import (
	"context"
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/tscdualbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/tscdualbuild/internal/logfields"
	"git.home.luguber.info/inful/tscdualbuild/internal/manifest"
	"git.home.luguber.info/inful/tscdualbuild/internal/observability"
)

func stageWriteManifests(ctx context.Context, bs *BuildState) error {
	cfg := bs.Config
	esmDir := cfg.ResolvePath(cfg.ESM.OutDir)
	cjsDir := cfg.ResolvePath(cfg.CJS.OutDir)
	targets := manifest.Targets(cfg.Exports, esmDir, cjsDir)

	if bs.opts.DryRun {
		for _, t := range targets {
			data, err := manifest.Build(cfg.PackageBase, t)
			if err != nil {
				return errors.InternalError("render package manifest").WithCause(err).
					WithContext(errors.ContextTarget, t.Name).Build()
			}
			path := filepath.Join(t.OutDir, manifest.FileName)
			fmt.Fprintf(bs.opts.Out, "Dry run: would write %s\n%s\n", path, data)
			observability.InfoContext(ctx, "Dry run: skipping manifest write",
				logfields.Target(t.Name), logfields.Path(path))
		}
		return nil
	}

	fmt.Fprintf(bs.opts.Out, "Writing package manifests to %s and %s\n", cfg.ESM.OutDir, cfg.CJS.OutDir)
	written, err := manifest.WriteTargetManifests(cfg.PackageBase, cfg.Exports, esmDir, cjsDir)
	for i, path := range written {
		bs.Report.Manifests = append(bs.Report.Manifests, path)
		bs.opts.Recorder.IncManifestWritten(targets[i].Name)
		observability.InfoContext(ctx, "Wrote package manifest",
			logfields.Target(targets[i].Name), logfields.Path(path))
	}
	return err
}
