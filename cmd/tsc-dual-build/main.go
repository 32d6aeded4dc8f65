package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/tscdualbuild/cmd/tsc-dual-build/commands"
	"git.home.luguber.info/inful/tscdualbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/tscdualbuild/internal/version"
)

func main() {
	// Variables already in the environment win over .env.
	_ = godotenv.Load()

	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("tsc-dual-build"),
		kong.Description("Build a TypeScript package as ES modules and CommonJS, with per-output package.json manifests."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	err := ctx.Run(&commands.Global{Logger: slog.Default(), Stdout: os.Stdout})
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
