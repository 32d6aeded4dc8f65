package build

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/tscdualbuild/internal/compiler"
	"git.home.luguber.info/inful/tscdualbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/tscdualbuild/internal/logfields"
	"git.home.luguber.info/inful/tscdualbuild/internal/observability"
)

// Target names used in reports, logs and metrics.
const (
	TargetESM   = "esm"
	TargetCJS   = "cjs"
	TargetTypes = "types"
)

func stageBuildESM(ctx context.Context, bs *BuildState) error {
	t := bs.Config.ESM
	return bs.compile(ctx, TargetESM, "ESM", t.Module, t.OutDir,
		compiler.TargetArgs(bs.opts.Project, t.Module, t.OutDir))
}

func stageBuildCJS(ctx context.Context, bs *BuildState) error {
	t := bs.Config.CJS
	return bs.compile(ctx, TargetCJS, "CJS", t.Module, t.OutDir,
		compiler.TargetArgs(bs.opts.Project, t.Module, t.OutDir))
}

func stageBuildTypes(ctx context.Context, bs *BuildState) error {
	outDir := bs.Config.Types.OutDir
	return bs.compile(ctx, TargetTypes, "type declarations", "", outDir,
		compiler.DeclarationArgs(bs.opts.Project, outDir))
}

// compile runs the compiler once. A failure is returned as a build error
// whose cause is the runner's error, untouched.
func (bs *BuildState) compile(ctx context.Context, target, label, module, outDir string, args []string) error {
	if module != "" {
		fmt.Fprintf(bs.opts.Out, "Building %s (module %s) into %s\n", label, module, outDir)
	} else {
		fmt.Fprintf(bs.opts.Out, "Building %s into %s\n", label, outDir)
	}
	observability.InfoContext(ctx, "Running compiler",
		logfields.Target(target),
		logfields.Module(module),
		logfields.OutDir(outDir))

	t0 := time.Now()
	err := bs.runner.Run(ctx, args)
	dur := time.Since(t0)

	bs.Report.AddInvocation(Invocation{Target: target, Args: args, Duration: dur, Success: err == nil})
	bs.opts.Recorder.ObserveCompilerDuration(target, dur, err == nil)

	if err != nil {
		observability.ErrorContext(ctx, "Compiler failed",
			logfields.Target(target),
			logfields.Error(err),
			logfields.DurationMS(float64(dur.Microseconds())/1000))
		return errors.BuildError(fmt.Sprintf("%s build failed", label)).
			WithCause(err).
			WithContext(errors.ContextTarget, target).
			Build()
	}
	return nil
}
