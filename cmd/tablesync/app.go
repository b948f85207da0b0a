package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/goliatone/go-tablesync/components/tablesync"
	"github.com/goliatone/go-tablesync/components/tablesync/commands"
	"github.com/goliatone/go-tablesync/components/tablesync/httpapi"
	"github.com/goliatone/go-tablesync/components/tablesync/queries"
	"github.com/goliatone/go-tablesync/pkg/analytics"
	"github.com/goliatone/go-tablesync/pkg/config"
	"github.com/goliatone/go-tablesync/pkg/employees"
	"github.com/goliatone/go-tablesync/pkg/events"
	"github.com/goliatone/go-tablesync/pkg/history"
	"github.com/goliatone/go-tablesync/pkg/logging"
	"github.com/goliatone/go-tablesync/pkg/redislock"
	"github.com/goliatone/go-tablesync/pkg/sheets"
	"github.com/goliatone/go-tablesync/pkg/tables"
)

const defaultConfigFile = "tablesync.yaml"

// app holds every wired collaborator for one CLI invocation.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	registry  *tablesync.Registry
	client    tablesync.TableClient
	broadcast *tablesync.BroadcastHook
	service   *tablesync.Service
	autoSync  *tablesync.AutoSyncer
	telemetry tablesync.Telemetry
	executor  *httpapi.CommandExecutor
	closers   []func(context.Context) error
}

// logTelemetry records command and service events as debug log lines.
type logTelemetry struct {
	logger *slog.Logger
}

func (t logTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	args := make([]any, 0, len(payload)*2)
	for k, v := range payload {
		args = append(args, k, v)
	}
	t.logger.Debug(event, args...)
}

func (g *Globals) load(ctx context.Context) (*app, error) {
	if err := config.LoadDotEnv(g.EnvFile); err != nil {
		return nil, err
	}
	path := g.Config
	if path == "" && config.Exists(defaultConfigFile) {
		path = defaultConfigFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	a := &app{cfg: cfg, logger: logging.Setup(cfg.Log.Level, cfg.Log.Format)}
	a.telemetry = logTelemetry{logger: a.logger}
	if err := a.wire(ctx); err != nil {
		return nil, errors.Join(err, a.Close(context.Background()))
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg := a.cfg

	var staff tablesync.EmployeeStore = tablesync.NewInMemoryEmployeeStore()
	if cfg.Employees.PostgresURL != "" {
		pool, err := employees.Connect(ctx, cfg.Employees.PostgresURL)
		if err != nil {
			return err
		}
		a.onClose(func(context.Context) error { pool.Close(); return nil })
		staff = employees.NewPostgresStore(pool)
	}

	validator := tablesync.NewJSONSchemaValidator()
	a.registry = tablesync.NewRegistry().WithLogger(a.logger)
	if cfg.Sources.Defaults {
		if err := tablesync.RegisterDefaultSources(a.registry, staff); err != nil {
			return err
		}
	}
	if cfg.Analytics.BaseURL != "" {
		pages, err := analytics.NewHTTPClient(analytics.HTTPConfig{
			BaseURL: cfg.Analytics.BaseURL,
			APIKey:  cfg.Analytics.APIKey,
		})
		if err != nil {
			return err
		}
		if err := analytics.Register(a.registry, pages, analytics.PageQuery{Range: cfg.Analytics.Range}); err != nil {
			return err
		}
	}
	if cfg.Sources.Manifest != "" {
		doc, err := tablesync.ReadManifest(cfg.Sources.Manifest)
		if err != nil {
			return err
		}
		if err := doc.Register(a.registry, validator, nil); err != nil {
			return err
		}
	}
	if err := a.registry.ApplyHooks(); err != nil {
		return err
	}

	client, err := a.tableClient(ctx)
	if err != nil {
		return err
	}
	a.client = client

	store, err := a.historyStore(ctx)
	if err != nil {
		return err
	}

	var locker tablesync.Locker
	if cfg.Lock.Store == "redis" {
		rdb := redislock.NewClient(cfg.Lock.RedisAddr, cfg.Lock.RedisPassword, cfg.Lock.RedisDB)
		a.onClose(func(context.Context) error { return rdb.Close() })
		locker = redislock.New(rdb, redislock.Options{TTL: cfg.Lock.TTL, Logger: a.logger})
	}

	a.broadcast = tablesync.NewBroadcastHook()
	hooks := tablesync.MultiHook{a.broadcast}
	if len(cfg.Events.Brokers) > 0 {
		producer, err := events.NewProducer(cfg.Events.Brokers)
		if err != nil {
			return err
		}
		hook := events.NewKafkaHook(producer, cfg.Events.Topic)
		a.onClose(func(context.Context) error { return hook.Close() })
		hooks = append(hooks, hook)
	}

	opts := tablesync.Options{
		Sources:   a.registry,
		Locker:    locker,
		History:   store,
		Hook:      hooks,
		Validator: validator,
		Telemetry: a.telemetry,
		Logger:    a.logger,
	}
	if client != nil {
		opts.Writer = client
	}
	a.service = tablesync.NewService(opts)
	a.autoSync = tablesync.NewAutoSyncer(a.service, tablesync.AutoSyncOptions{
		Interval:  cfg.AutoSync.Interval,
		SourceIDs: cfg.AutoSync.Sources,
		Telemetry: a.telemetry,
		Logger:    a.logger,
	})

	a.executor = &httpapi.CommandExecutor{
		SyncSourcesCommander: commands.NewSyncSourcesCommand(a.service, a.telemetry),
		SyncSourceCommander:  commands.NewSyncSourceCommand(a.service, a.telemetry),
		SourcesQuerier:       queries.NewSourcesQuery(a.registry),
		HistoryQuerier:       queries.NewHistoryQuery(a.service),
	}
	if client != nil {
		a.executor.RowsQuerier = queries.NewListRowsQuery(client)
	}
	return nil
}

// tableClient builds the configured backend. A botpress backend without
// credentials yields nil so read-only commands still work.
func (a *app) tableClient(ctx context.Context) (tablesync.TableClient, error) {
	cfg := a.cfg
	switch cfg.Backend {
	case config.BackendMemory:
		return tables.NewMockClient(), nil
	case config.BackendSheets:
		srv, err := sheets.NewService(ctx, cfg.Sheets)
		if err != nil {
			return nil, err
		}
		return sheets.New(srv, cfg.Sheets.SpreadsheetID, a.logger)
	default:
		if err := cfg.Table.Validate(); err != nil {
			a.logger.Warn("table service credentials missing, writes disabled", "error", err)
			return nil, nil
		}
		return tables.NewHTTPClient(tables.HTTPConfig{
			TableSyncConfig: cfg.Table.TableSyncConfig,
			HTTPClient:      &http.Client{Timeout: cfg.Table.Timeout},
			Logger:          a.logger,
		})
	}
}

func (a *app) historyStore(ctx context.Context) (tablesync.HistoryStore, error) {
	if a.cfg.History.Store != "mongo" {
		return tablesync.NewInMemoryHistoryStore(a.cfg.History.Limit), nil
	}
	store, disconnect, err := history.Connect(ctx, a.cfg.History.Config)
	if err != nil {
		return nil, err
	}
	a.onClose(disconnect)
	return store, nil
}

// requireClient fails when no table backend is configured.
func (a *app) requireClient() (tablesync.TableClient, error) {
	if a.client == nil {
		return nil, fmt.Errorf("tablesync: %w (set table.token and table.workspace_id)", tablesync.ErrWriterNotConfigured)
	}
	return a.client, nil
}

func (a *app) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
