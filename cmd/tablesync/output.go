package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/goliatone/go-tablesync/components/tablesync"
	"github.com/goliatone/go-tablesync/components/tablesync/queries"
	"github.com/goliatone/go-tablesync/pkg/xlsxexport"
)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
	dim      = color.New(color.Faint).SprintFunc()
	bold     = color.New(color.Bold).SprintFunc()
)

func printReport(w io.Writer, report tablesync.BulkReport) {
	for _, res := range report.Results {
		if res.Success {
			msg := ""
			if res.Response != nil {
				msg = res.Response.Message
			}
			fmt.Fprintf(w, "%s %s %s\n", okMark("✓"), bold(res.SourceID), dim(msg))
			continue
		}
		fmt.Fprintf(w, "%s %s %s\n", failMark("✗"), bold(res.SourceID), res.Error)
	}
	summary := color.New(color.FgGreen)
	if report.SuccessCount < report.Total {
		summary = color.New(color.FgYellow)
	}
	if report.SuccessCount == 0 && report.Total > 0 {
		summary = color.New(color.FgRed)
	}
	summary.Fprintln(w, report.Message)
}

func printResult(w io.Writer, sourceID string, result tablesync.SyncResult) {
	fmt.Fprintf(w, "%s %s %s\n", okMark("✓"), bold(sourceID), result.Message)
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s %s\n", failMark("!"), e)
		}
	}
}

func printSources(w io.Writer, sources []queries.SourceInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tTABLE\tENABLED\tNAME")
	for _, src := range sources {
		enabled := okMark("yes")
		if !src.Enabled {
			enabled = dim("no")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", src.ID, src.Type, src.Table, enabled, src.Name)
	}
	tw.Flush()
}

func printHistory(w io.Writer, records []tablesync.SyncRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, dim("no uploads recorded"))
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FINISHED\tSOURCE\tTABLE\tMODE\tROWS\tSTATUS")
	for _, rec := range records {
		status := okMark(string(rec.Status))
		if rec.Status != tablesync.SyncStatusSucceeded {
			status = failMark(string(rec.Status))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			rec.FinishedAt.Format("2006-01-02 15:04:05"), rec.SourceID, rec.Table, rec.Mode, rec.RowCount, status)
	}
	tw.Flush()
}

func printRows(w io.Writer, rows []tablesync.TableRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, dim("table is empty"))
		return
	}
	cols := xlsxexport.Columns(rows)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(cols, "\t")))
	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, col := range cols {
			if v, ok := row[col]; ok && v != nil {
				cells[i] = fmt.Sprint(v)
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}
