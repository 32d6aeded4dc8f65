// Package build orchestrates a dual build: it loads the configuration, runs
// the compiler for each target in a fixed order and writes the per-target
// package manifests.
package build

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/tscdualbuild/internal/compiler"
	"git.home.luguber.info/inful/tscdualbuild/internal/config"
	"git.home.luguber.info/inful/tscdualbuild/internal/logfields"
	"git.home.luguber.info/inful/tscdualbuild/internal/metrics"
	"git.home.luguber.info/inful/tscdualbuild/internal/observability"
)

// Options configure a Builder.
type Options struct {
	// Load locates the build config and package manifest.
	Load config.LoadOptions
	// Project is the compiler project passed with -p; compiler.DefaultProject when empty.
	Project string
	// Compiler is the compiler binary used when Runner is nil.
	Compiler string
	// Runner overrides the compiler invocation. When nil a compiler.BinaryRunner
	// rooted at the project directory is used (compiler.NoopRunner on dry runs).
	Runner compiler.Runner
	// DryRun validates everything and renders manifests without writing them.
	DryRun   bool
	Recorder metrics.Recorder
	Observer BuildObserver
	// Out receives progress lines; os.Stdout when nil.
	Out io.Writer
}

// Builder runs the dual-build pipeline. A Builder may be reused for
// several sequential runs; each Run reloads the configuration.
type Builder struct {
	opts Options
}

// New creates a Builder.
func New(opts Options) *Builder {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Project == "" {
		opts.Project = compiler.DefaultProject
	}
	return &Builder{opts: opts}
}

// BuildState is the mutable state shared by the stages of one run.
type BuildState struct {
	Config *config.BuildConfig
	Report *Report

	runner compiler.Runner
	opts   *Options
	obs    BuildObserver
}

func (bs *BuildState) observer() BuildObserver {
	if bs.obs == nil {
		return NoopObserver{}
	}
	return bs.obs
}

// Run executes load_config, build_esm, build_cjs, the optional build_types
// stage and write_manifests. The returned report is never nil.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	report := NewReport(uuid.NewString())
	report.DryRun = b.opts.DryRun
	ctx = observability.WithRunID(ctx, report.RunID)

	obs := b.observer()
	bs := &BuildState{
		Report: report,
		opts:   &b.opts,
		obs:    obs,
	}

	observability.InfoContext(ctx, "Starting dual build",
		logfields.File(b.opts.Load.ConfigFile),
		logfields.Path(b.opts.Load.PackageJSON))

	err := RunStages(ctx, bs, NewPipeline().Add(StageLoadConfig, stageLoadConfig).Build())
	if err == nil {
		report.Shape = bs.Config.Shape()
		stages := NewPipeline().
			Add(StageBuildESM, stageBuildESM).
			Add(StageBuildCJS, stageBuildCJS).
			AddIf(bs.Config.HasTypes(), StageBuildTypes, stageBuildTypes).
			Add(StageWriteManifests, stageWriteManifests).
			Build()
		err = RunStages(ctx, bs, stages)
	}

	report.Finish(err)
	obs.OnBuildComplete(report)

	if err != nil {
		observability.ErrorContext(ctx, "Dual build failed", logfields.Error(err), logfields.Result(string(report.Outcome)))
		return report, err
	}
	observability.InfoContext(ctx, "Dual build completed", slog.String("summary", report.Summary()))
	return report, nil
}

func (b *Builder) observer() BuildObserver {
	obs := multiObserver{RecorderObserver{Recorder: b.opts.Recorder}}
	if b.opts.Observer != nil {
		obs = append(obs, b.opts.Observer)
	}
	return obs
}
