package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-tablesync/components/tablesync"
	"github.com/goliatone/go-tablesync/components/tablesync/commands"
	"github.com/goliatone/go-tablesync/components/tablesync/queries"
	"github.com/goliatone/go-tablesync/pkg/xlsxexport"
)

// withApp loads the app, runs fn and releases resources.
func withApp(ctx context.Context, g *Globals, fn func(*app) error) (err error) {
	a, err := g.load(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(context.Background()); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}

type sourcesCmd struct {
	Enabled bool `help:"Only list enabled sources."`
}

func (cmd *sourcesCmd) Run(ctx context.Context, g *Globals) error {
	return withApp(ctx, g, func(a *app) error {
		sources, err := a.executor.Sources(ctx, queries.SourcesInput{EnabledOnly: cmd.Enabled})
		if err != nil {
			return err
		}
		printSources(os.Stdout, sources)
		return nil
	})
}

type syncCmd struct {
	IDs  []string `arg:"" optional:"" name:"source" help:"Source ids (default: every enabled source)."`
	Mode string   `short:"m" default:"append" enum:"append,sync" help:"append inserts rows, sync clears the table first."`
}

func (cmd *syncCmd) Run(ctx context.Context, g *Globals) error {
	return withApp(ctx, g, func(a *app) error {
		var report tablesync.BulkReport
		err := a.executor.SyncSources(ctx, commands.SyncSourcesInput{
			SourceIDs: cmd.IDs,
			Mode:      tablesync.Mode(cmd.Mode),
			Report:    &report,
		})
		if err != nil {
			return err
		}
		printReport(os.Stdout, report)
		if failed := report.Failed(); len(failed) > 0 {
			return fmt.Errorf("tablesync: %d of %d sources failed", len(failed), report.Total)
		}
		return nil
	})
}

type syncSourceCmd struct {
	ID   string `arg:"" name:"source" help:"Source id."`
	Mode string `short:"m" default:"sync" enum:"append,sync" help:"append inserts rows, sync clears the table first."`
}

func (cmd *syncSourceCmd) Run(ctx context.Context, g *Globals) error {
	return withApp(ctx, g, func(a *app) error {
		var result tablesync.SyncResult
		err := a.executor.SyncSource(ctx, commands.SyncSourceInput{
			SourceID: cmd.ID,
			Mode:     tablesync.Mode(cmd.Mode),
			Result:   &result,
		})
		if err != nil {
			return err
		}
		printResult(os.Stdout, cmd.ID, result)
		return nil
	})
}

type rowsCmd struct {
	Table string `arg:"" help:"Remote table name (e.g. dashboard_statsTable)."`
}

func (cmd *rowsCmd) Run(ctx context.Context, g *Globals) error {
	return withApp(ctx, g, func(a *app) error {
		rows, err := a.executor.Rows(ctx, queries.ListRowsInput{Table: cmd.Table})
		if err != nil {
			return err
		}
		printRows(os.Stdout, rows)
		return nil
	})
}

type clearCmd struct {
	Table string `arg:"" help:"Remote table name."`
}

func (cmd *clearCmd) Run(ctx context.Context, g *Globals) error {
	return withApp(ctx, g, func(a *app) error {
		client, err := a.requireClient()
		if err != nil {
			return err
		}
		if err := commands.NewClearTableCommand(client, a.telemetry).Execute(ctx, commands.ClearTableInput{Table: cmd.Table}); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s cleared %s\n", okMark("✓"), bold(cmd.Table))
		return nil
	})
}

type historyCmd struct {
	Limit int `short:"n" default:"10" help:"Number of records to show (at most 10)."`
}

func (cmd *historyCmd) Run(ctx context.Context, g *Globals) error {
	return withApp(ctx, g, func(a *app) error {
		records, err := a.executor.History(ctx, queries.HistoryInput{Limit: cmd.Limit})
		if err != nil {
			return err
		}
		printHistory(os.Stdout, records)
		return nil
	})
}

type exportCmd struct {
	File string   `arg:"" type:"path" help:"Destination .xlsx file."`
	IDs  []string `arg:"" optional:"" name:"source" help:"Source ids (default: every enabled source)."`
}

func (cmd *exportCmd) Run(ctx context.Context, g *Globals) error {
	return withApp(ctx, g, func(a *app) error {
		sheets := xlsxexport.Collect(ctx, a.registry, cmd.IDs)
		if len(sheets) == 0 {
			return fmt.Errorf("tablesync: no source data to export")
		}
		if err := xlsxexport.Save(cmd.File, sheets); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s wrote %d sheets to %s\n", okMark("✓"), len(sheets), cmd.File)
		return nil
	})
}
