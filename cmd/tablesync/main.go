package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config   string `short:"c" type:"path" env:"TABLESYNC_CONFIG" help:"Path to a YAML config file (defaults to ./tablesync.yaml when present)."`
	EnvFile  string `name:"env-file" default:".env" help:".env file loaded before the environment is read."`
	LogLevel string `name:"log-level" help:"Override the configured log level (debug, info, warn, error)."`
}

type cli struct {
	Globals

	Sources    sourcesCmd    `cmd:"" help:"List registered data sources."`
	Sync       syncCmd       `cmd:"" help:"Upload several sources in one run."`
	SyncSource syncSourceCmd `cmd:"" name:"sync-source" help:"Upload a single source to its table."`
	Rows       rowsCmd       `cmd:"" help:"Print the rows currently stored in a table."`
	Clear      clearCmd      `cmd:"" help:"Delete every row of a table."`
	History    historyCmd    `cmd:"" help:"Show the most recent uploads."`
	Export     exportCmd     `cmd:"" help:"Write formatted source rows to an .xlsx workbook."`
	Scaffold   scaffoldCmd   `cmd:"" help:"Add a source entry to a sources manifest."`
	Serve      serveCmd      `cmd:"" help:"Serve the sync API and run the auto-sync job."`
	Watch      watchCmd      `cmd:"" help:"Stream sync events from a running server."`
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("tablesync"),
		kong.Description("Push dashboard data sources into remote tables."),
		kong.UsageOnError(),
	)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))
	err := kctx.Run(&c.Globals)
	kctx.FatalIfErrorf(err)
}
