package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play in the terminal"`
	Serve    ServeCmd         `cmd:"" help:"Run the WebSocket play server"`
	Simulate SimulateCmd      `cmd:"" help:"Play levels with bots and report move statistics"`
	Levels   LevelsCmd        `cmd:"" help:"Inspect level catalogs"`
	Scores   ScoresCmd        `cmd:"" help:"Inspect or reset best scores"`
}

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("tilematch"),
		kong.Description("Tile matching memory game"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.Bind(&cli.Globals),
		kong.BindTo(sigCtx, (*context.Context)(nil)),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
