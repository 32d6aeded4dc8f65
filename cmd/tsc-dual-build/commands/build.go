package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/tscdualbuild/internal/build"
	"git.home.luguber.info/inful/tscdualbuild/internal/logfields"
	"git.home.luguber.info/inful/tscdualbuild/internal/metrics"
	"git.home.luguber.info/inful/tscdualbuild/internal/watch"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	ConfigFile   string `arg:"" name:"config-file" optional:"" default:"tsconfig.json" help:"Build config holding the tscDualBuild section, relative to the package root"`
	Project      string `short:"p" help:"Compiler project passed to every tsc run" default:"tsconfig.json"`
	TSC          string `name:"tsc" env:"TSC_DUAL_BUILD_TSC" default:"tsc" help:"Compiler binary"`
	RequireTypes bool   `name:"require-types" help:"Fail unless a types section with an outDir is configured"`
	DryRun       bool   `name:"dry-run" help:"Validate and print what would happen without compiling or writing"`
	Report       string `help:"Write a JSON build report to this file" type:"path"`
	MetricsFile  string `name:"metrics-file" help:"Write Prometheus metrics in text format to this file" type:"path"`
	Watch        bool   `short:"w" help:"Rebuild whenever the build config or package.json changes"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return b.run(ctx, g, root)
}

func (b *BuildCmd) run(ctx context.Context, g *Global, root *CLI) error {
	out := g.stdout()
	load := root.LoadOptions(b.ConfigFile, b.RequireTypes)

	var prom *metrics.PrometheusRecorder
	var rec metrics.Recorder = metrics.NoopRecorder{}
	if b.MetricsFile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		rec = prom
	}

	builder := build.New(build.Options{
		Load:     load,
		Project:  b.Project,
		Compiler: b.TSC,
		DryRun:   b.DryRun,
		Recorder: rec,
		Out:      out,
	})

	err := b.runOnce(ctx, builder, prom, out)
	// Without a package manifest there is nothing to watch.
	if !b.Watch || load.PackageJSON == "" {
		return err
	}
	if err != nil {
		logger(g).Error("Initial build failed", logfields.Error(err))
	}

	configPath, pkgPath, err := load.Paths()
	if err != nil {
		return err
	}
	w, err := watch.New([]string{configPath, pkgPath}, func(ctx context.Context) error {
		return b.runOnce(ctx, builder, prom, out)
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Watching for changes (press Ctrl-C to stop)")
	return w.Run(ctx)
}

// runOnce runs the pipeline and persists the optional report and metrics,
// whether or not the build succeeded.
func (b *BuildCmd) runOnce(ctx context.Context, builder *build.Builder, prom *metrics.PrometheusRecorder, out io.Writer) error {
	report, err := builder.Run(ctx)

	if b.Report != "" {
		if werr := report.WriteJSON(b.Report); werr != nil {
			slog.Warn("Failed to write build report", logfields.Path(b.Report), logfields.Error(werr))
		} else {
			slog.Debug("Build report written", logfields.Path(b.Report))
		}
	}
	if prom != nil {
		if werr := prom.WriteTextfile(b.MetricsFile); werr != nil {
			slog.Warn("Failed to write metrics file", logfields.Path(b.MetricsFile), logfields.Error(werr))
		}
	}

	if err != nil {
		return err
	}
	if b.DryRun {
		fmt.Fprintln(out, "Dry run complete; nothing was compiled or written")
	} else {
		fmt.Fprintf(out, "Dual build complete (%s)\n", report.Shape)
	}
	return nil
}

func logger(g *Global) *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}
