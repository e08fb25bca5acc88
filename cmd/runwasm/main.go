// Command runwasm builds a Rust crate for the browser and serves it locally.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/runwasm/cmd/runwasm/commands"
	"git.home.luguber.info/inful/runwasm/internal/foundation/errors"
	"git.home.luguber.info/inful/runwasm/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cli := &commands.CLI{}
	parser, err := kong.New(cli,
		kong.Name("runwasm"),
		kong.Description("Build a cargo target for wasm32-unknown-unknown, bundle it with wasm-bindgen and serve it."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	if err != nil {
		panic(err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		parser.FatalIfErrorf(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global := &commands.Global{Ctx: ctx, Logger: slog.Default()}
	if err := kctx.Run(global, cli); err != nil {
		return errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).Report(err, os.Stderr)
	}
	return 0
}
