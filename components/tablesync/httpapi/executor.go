package httpapi

import (
	"context"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-tablesync/components/tablesync"
	"github.com/goliatone/go-tablesync/components/tablesync/commands"
	"github.com/goliatone/go-tablesync/components/tablesync/queries"
)

// Executor is the transport-neutral surface of the sync API.
type Executor interface {
	SyncSources(ctx context.Context, input commands.SyncSourcesInput) error
	SyncSource(ctx context.Context, input commands.SyncSourceInput) error
	Sources(ctx context.Context, input queries.SourcesInput) ([]queries.SourceInfo, error)
	Rows(ctx context.Context, input queries.ListRowsInput) ([]tablesync.TableRow, error)
	History(ctx context.Context, input queries.HistoryInput) ([]tablesync.SyncRecord, error)
}

// CommandExecutor adapts go-command commanders and queriers into an Executor.
type CommandExecutor struct {
	SyncSourcesCommander gocommand.Commander[commands.SyncSourcesInput]
	SyncSourceCommander  gocommand.Commander[commands.SyncSourceInput]
	SourcesQuerier       gocommand.Querier[queries.SourcesInput, []queries.SourceInfo]
	RowsQuerier          gocommand.Querier[queries.ListRowsInput, []tablesync.TableRow]
	HistoryQuerier       gocommand.Querier[queries.HistoryInput, []tablesync.SyncRecord]
}

var _ Executor = (*CommandExecutor)(nil)

var errNotConfigured = errors.New("httpapi: operation not configured")

func (e *CommandExecutor) SyncSources(ctx context.Context, input commands.SyncSourcesInput) error {
	if e.SyncSourcesCommander == nil {
		return errNotConfigured
	}
	return e.SyncSourcesCommander.Execute(ctx, input)
}

func (e *CommandExecutor) SyncSource(ctx context.Context, input commands.SyncSourceInput) error {
	if e.SyncSourceCommander == nil {
		return errNotConfigured
	}
	return e.SyncSourceCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Sources(ctx context.Context, input queries.SourcesInput) ([]queries.SourceInfo, error) {
	if e.SourcesQuerier == nil {
		return nil, errNotConfigured
	}
	return e.SourcesQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Rows(ctx context.Context, input queries.ListRowsInput) ([]tablesync.TableRow, error) {
	if e.RowsQuerier == nil {
		return nil, errNotConfigured
	}
	return e.RowsQuerier.Query(ctx, input)
}

func (e *CommandExecutor) History(ctx context.Context, input queries.HistoryInput) ([]tablesync.SyncRecord, error) {
	if e.HistoryQuerier == nil {
		return nil, errNotConfigured
	}
	return e.HistoryQuerier.Query(ctx, input)
}

// StatusFor maps sync errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case tablesync.IsInvalidInput(err):
		return http.StatusBadRequest
	case errors.Is(err, tablesync.ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, tablesync.ErrSyncInProgress):
		return http.StatusConflict
	case errors.Is(err, errNotConfigured), errors.Is(err, tablesync.ErrWriterNotConfigured):
		return http.StatusNotImplemented
	case tablesync.IsTransport(err):
		return http.StatusBadGateway
	}
	if _, ok := tablesync.IsAPI(err); ok {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
