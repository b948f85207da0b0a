package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-tablesync/components/tablesync/gorouter"
	"github.com/goliatone/go-tablesync/components/tablesync/httpapi"
)

const shutdownTimeout = 10 * time.Second

type serveCmd struct {
	Addr     string `help:"Listen address (overrides server.addr)."`
	BasePath string `name:"base-path" default:"/api/tablesync" help:"Path prefix of the sync API."`
	NoAuto   bool   `name:"no-auto-sync" help:"Do not start the periodic sync job."`
	NetHTTP  bool   `name:"net-http" help:"Serve with net/http instead of fiber (adds an SSE stream at /events)."`
}

type runningServer struct {
	serve    func(addr string) error
	shutdown func(ctx context.Context) error
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals) error {
	return withApp(ctx, g, func(a *app) error {
		srv, err := cmd.server(a)
		if err != nil {
			return err
		}

		if !cmd.NoAuto && a.cfg.AutoSync.Interval > 0 {
			go a.autoSync.Run(ctx)
			a.logger.Info("auto sync scheduled", "interval", a.cfg.AutoSync.Interval, "sources", a.cfg.AutoSync.Sources)
		}

		addr := cmd.Addr
		if addr == "" {
			addr = a.cfg.Server.Addr
		}
		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.serve(addr)
		}()
		a.logger.Info("sync api ready", "addr", addr, "base_path", cmd.BasePath, "backend", a.cfg.Backend, "net_http", cmd.NetHTTP)

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			a.logger.Info("server stopped")
			return nil
		}
	})
}

func (cmd *serveCmd) server(a *app) (runningServer, error) {
	if cmd.NetHTTP {
		httpServer := &http.Server{
			Handler:           httpapi.NewServeMux(a.executor, a.broadcast, cmd.BasePath),
			ReadHeaderTimeout: 5 * time.Second,
		}
		return runningServer{
			serve: func(addr string) error {
				httpServer.Addr = addr
				return httpServer.ListenAndServe()
			},
			shutdown: httpServer.Shutdown,
		}, nil
	}

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:    server.Router(),
		API:       a.executor,
		Broadcast: a.broadcast,
		BasePath:  cmd.BasePath,
	}); err != nil {
		return runningServer{}, err
	}
	return runningServer{serve: server.Serve, shutdown: server.Shutdown}, nil
}
