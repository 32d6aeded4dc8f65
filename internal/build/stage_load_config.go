package build

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/tscdualbuild/internal/compiler"
	"git.home.luguber.info/inful/tscdualbuild/internal/config"
	"git.home.luguber.info/inful/tscdualbuild/internal/logfields"
	"git.home.luguber.info/inful/tscdualbuild/internal/observability"
)

func stageLoadConfig(ctx context.Context, bs *BuildState) error {
	cfg, err := config.Load(bs.opts.Load)
	if err != nil {
		return err
	}
	bs.Config = cfg

	bs.runner = bs.opts.Runner
	if bs.runner == nil {
		if bs.opts.DryRun {
			bs.runner = compiler.NoopRunner{}
		} else {
			bs.runner = &compiler.BinaryRunner{Binary: bs.opts.Compiler, Dir: cfg.RootDir}
			bs.Report.CompilerVersion = compiler.DetectVersion(ctx, bs.opts.Compiler, cfg.RootDir)
		}
	}

	observability.InfoContext(ctx, "Configuration loaded",
		slog.String("shape", string(cfg.Shape())),
		logfields.Path(cfg.RootDir),
		slog.String("compiler_version", bs.Report.CompilerVersion))
	return nil
}
