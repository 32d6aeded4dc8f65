package commands

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/tscdualbuild/internal/foundation/errors"
	testenv "git.home.luguber.info/inful/tscdualbuild/internal/testing"
)

func parse(t *testing.T, args ...string) (*kong.Context, *CLI) {
	t.Helper()
	for _, env := range []string{"npm_package_json", "TSC_DUAL_BUILD_TSC", "TSC_DUAL_BUILD_LOG_LEVEL"} {
		t.Setenv(env, "") // restores the original value on cleanup
		require.NoError(t, os.Unsetenv(env))
	}

	cli := &CLI{logOutput: io.Discard}
	parser, err := kong.New(cli,
		kong.Name("tsc-dual-build"),
		kong.Vars{"version": "test"},
		kong.Exit(func(code int) { t.Fatalf("unexpected exit %d", code) }),
	)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return ctx, cli
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ctx, _ := parse(t, args...)
	var out bytes.Buffer
	err := ctx.Run(&Global{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Stdout: &out})
	return out.String(), err
}

func TestBuildIsDefaultCommand(t *testing.T) {
	ctx, cli := parse(t, "custom.json", "--dry-run")
	assert.True(t, strings.HasPrefix(ctx.Command(), "build"), ctx.Command())
	assert.Equal(t, "custom.json", cli.Build.ConfigFile)
	assert.True(t, cli.Build.DryRun)

	ctx, cli = parse(t)
	assert.True(t, strings.HasPrefix(ctx.Command(), "build"), ctx.Command())
	assert.Equal(t, "tsconfig.json", cli.Build.ConfigFile)
	assert.Equal(t, "tsc", cli.Build.TSC)
	assert.Equal(t, "tsconfig.json", cli.Build.Project)
}

func TestBuildEndToEnd(t *testing.T) {
	tsc := testenv.NewFakeCompiler(t)
	p := testenv.NewProjectBuilder(t).WithPackageField("version", `"1.2.3"`).Build()
	reportPath := filepath.Join(t.TempDir(), "report.json")
	metricsPath := filepath.Join(t.TempDir(), "metrics.prom")

	out, err := run(t, "--package-json", p.PackageJSON, "build", "--tsc", tsc.Path, "--report", reportPath, "--metrics-file", metricsPath)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"--pretty -p tsconfig.json --module ES2020 --outDir dist/esm",
		"--pretty -p tsconfig.json --module CommonJS --outDir dist/cjs",
	}, tsc.Calls(t))

	p.Files(t).
		AssertFileContent("dist/esm/package.json", "{\n  \"name\": \"pkg\",\n  \"version\": \"1.2.3\",\n  \"type\": \"module\",\n  \"main\": \"./index.mjs\"\n}").
		AssertManifest("dist/cjs", "commonjs", "./index.cjs")

	assert.Contains(t, out, "Building ESM (module ES2020) into dist/esm")
	assert.Contains(t, out, "Dual build complete (dual)")

	var report map[string]any
	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "success", report["outcome"])
	assert.Len(t, report["manifests"], 2)

	metricsText, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metricsText), `tsc_dual_build_manifests_written_total{target="esm"} 1`)
	assert.Contains(t, string(metricsText), `tsc_dual_build_build_outcomes_total{outcome="success"} 1`)
}

func TestBuildCompilerFailure(t *testing.T) {
	tsc := testenv.NewFakeCompiler(t)
	tsc.FailOn(t, "ES2020")
	p := testenv.NewProjectBuilder(t).Build()
	reportPath := filepath.Join(t.TempDir(), "report.json")

	_, err := run(t, "--package-json", p.PackageJSON, "build", "--tsc", tsc.Path, "--report", reportPath)
	require.Error(t, err)

	var exitErr *exec.ExitError
	require.True(t, stderrors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.ExitCode())
	assert.Equal(t, errors.CategoryBuild, errors.GetCategory(err))

	assert.Len(t, tsc.Calls(t), 1)
	p.Files(t).AssertFileNotExists("dist/esm/package.json")

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "failed", report["outcome"])
	assert.NotEmpty(t, report["error"])
}

func TestBuildDryRunWritesNothing(t *testing.T) {
	tsc := testenv.NewFakeCompiler(t)
	p := testenv.NewProjectBuilder(t).Build()

	out, err := run(t, "--package-json", p.PackageJSON, "build", "--tsc", tsc.Path, "--dry-run")
	require.NoError(t, err)

	assert.Empty(t, tsc.Calls(t))
	assert.NoDirExists(t, p.Path("dist"))
	assert.Contains(t, out, "Dry run complete")
}

func TestBuildWithoutPackageJSON(t *testing.T) {
	_, err := run(t, "build", "--dry-run")
	require.Error(t, err)

	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryConfig, ce.Category())
	assert.Equal(t, "npm_package_json", ce.Field())
}

func TestBuildWatchStopsOnCancel(t *testing.T) {
	tsc := testenv.NewFakeCompiler(t)
	p := testenv.NewProjectBuilder(t).Build()
	_, cli := parse(t, "--package-json", p.PackageJSON, "build", "--tsc", tsc.Path, "--watch")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := cli.Build.run(ctx, &Global{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Stdout: &out}, cli)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Watching for changes")
	assert.Empty(t, tsc.Calls(t))
}

func TestConfigCommand(t *testing.T) {
	p := testenv.NewProjectBuilder(t).WithPackageField("version", `"1.2.3"`).Build()

	out, err := run(t, "--package-json", p.PackageJSON, "config", "--format", "json")
	require.NoError(t, err)

	var view configView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "dual", view.Shape)
	assert.Equal(t, p.Root, view.RootDir)
	assert.Equal(t, "ES2020", view.ESM.Module)
	assert.Equal(t, "dist/cjs", view.CJS.OutDir)
	assert.Nil(t, view.Types)
	assert.Equal(t, []string{"name", "version"}, view.PackageFields)
	require.Len(t, view.Manifests, 2)
	assert.Equal(t, p.Path("dist", "esm", "package.json"), view.Manifests[0].Path)
	assert.Equal(t, "commonjs", view.Manifests[1].Type)

	out, err = run(t, "--package-json", p.PackageJSON, "config")
	require.NoError(t, err)
	var asYAML map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &asYAML))
	assert.Equal(t, "dual", asYAML["shape"])
	assert.Equal(t, map[string]any{"import": "./index.mjs", "require": "./index.cjs"}, asYAML["exports"])
}

func TestAfterApplyLogging(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	cli := &CLI{LogLevel: "WARNING", LogFormat: "json", logOutput: &buf}
	require.NoError(t, cli.AfterApply())

	ctx := context.Background()
	assert.False(t, slog.Default().Enabled(ctx, slog.LevelInfo))
	assert.True(t, slog.Default().Enabled(ctx, slog.LevelWarn))
	slog.Warn("hello")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))

	cli = &CLI{LogLevel: "error", Verbose: true, logOutput: io.Discard}
	require.NoError(t, cli.AfterApply())
	assert.True(t, slog.Default().Enabled(ctx, slog.LevelDebug))
}
