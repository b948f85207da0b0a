package gorouter

import (
	"errors"
	"net/http"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-tablesync/components/tablesync"
	"github.com/goliatone/go-tablesync/components/tablesync/httpapi"
	"github.com/goliatone/go-tablesync/components/tablesync/queries"
)

// Config wires go-router with the sync API and the progress WebSocket.
type Config[T any] struct {
	Router    router.Router[T]
	API       httpapi.Executor
	Broadcast *tablesync.BroadcastHook
	BasePath  string
	Routes    RouteConfig
}

// RouteConfig customizes the relative paths of the sync endpoints.
type RouteConfig struct {
	Sync       string
	SourceSync string
	Sources    string
	Rows       string
	History    string
	WebSocket  string
}

// DefaultBasePath is the group every route is mounted under.
const DefaultBasePath = "/api/tablesync"

// Register mounts the sync routes (JSON API and WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.API == nil && cfg.Broadcast == nil {
		return errors.New("gorouter: api or broadcast hook is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = DefaultBasePath
	}

	group := cfg.Router.Group(base)
	if cfg.API != nil {
		registerAPI(group, cfg.API, routes)
	}
	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, routes RouteConfig) {
	r.Post(routes.Sync, router.WrapHandler(func(ctx router.Context) error {
		req, err := httpapi.DecodeSyncRequest(ctx.Body())
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		report, err := runBulk(ctx.Context(), api, req, ctx.Query("mode"))
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, report)
	}))

	r.Post(routes.SourceSync, router.WrapHandler(func(ctx router.Context) error {
		req, err := httpapi.DecodeSyncRequest(ctx.Body())
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		result, err := runSource(ctx.Context(), api, ctx.Param("id"), req, ctx.Query("mode"))
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, result)
	}))

	r.Get(routes.Sources, router.WrapHandler(func(ctx router.Context) error {
		sources, err := api.Sources(ctx.Context(), queries.SourcesInput{EnabledOnly: ctx.Query("enabled") == "true"})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, sources)
	}))

	r.Get(routes.Rows, router.WrapHandler(func(ctx router.Context) error {
		table := ctx.Param("table")
		rows, err := api.Rows(ctx.Context(), queries.ListRowsInput{Table: table})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"table": table, "rows": rows})
	}))

	r.Get(routes.History, router.WrapHandler(func(ctx router.Context) error {
		records, err := api.History(ctx.Context(), queries.HistoryInput{Limit: httpapi.ParseLimit(ctx.Query("limit"))})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, records)
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *tablesync.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Sync == "" {
		routes.Sync = "/sync"
	}
	if routes.SourceSync == "" {
		routes.SourceSync = "/sources/:id/sync"
	}
	if routes.Sources == "" {
		routes.Sources = "/sources"
	}
	if routes.Rows == "" {
		routes.Rows = "/tables/:table/rows"
	}
	if routes.History == "" {
		routes.History = "/history"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
