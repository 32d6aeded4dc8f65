// Package commands implements the tsc-dual-build command line.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/tscdualbuild/internal/config"
)

// Global is shared by every command.
type Global struct {
	Logger *slog.Logger
	// Stdout receives progress and command output; os.Stdout when nil.
	Stdout io.Writer
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Verbose     bool             `short:"v" help:"Enable verbose logging and full error chains"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`
	PackageJSON string           `name:"package-json" env:"npm_package_json" help:"Package manifest of the project to build (set by npm, yarn and pnpm)"`
	LogLevel    string           `name:"log-level" env:"TSC_DUAL_BUILD_LOG_LEVEL" help:"Log level (debug|info|warn|error); -v forces debug"`
	LogFormat   string           `name:"log-format" enum:"text,json" default:"text" help:"Log output format (text|json)"`

	Build  BuildCmd  `cmd:"" default:"withargs" help:"Compile the ESM and CJS builds and write their package.json manifests"`
	Config ConfigCmd `cmd:"" help:"Print the resolved configuration without building"`

	logOutput io.Writer
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := config.NormalizeLogLevel(c.LogLevel)
	if c.Verbose {
		level = config.LogLevelDebug
	}

	out := c.logOutput
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level.SlogLevel()}

	var handler slog.Handler
	switch config.NormalizeLogFormat(c.LogFormat) {
	case config.LogFormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// LoadOptions builds config.LoadOptions from global and per-command flags.
func (c *CLI) LoadOptions(configFile string, requireTypes bool) config.LoadOptions {
	return config.LoadOptions{
		ConfigFile:   configFile,
		PackageJSON:  c.PackageJSON,
		RequireTypes: requireTypes,
	}
}
