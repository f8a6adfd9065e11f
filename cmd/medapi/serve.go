package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastbmktdev/medical-by-fastb-sub001/app/routes"
	"github.com/fastbmktdev/medical-by-fastb-sub001/app/services"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/router"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/server"
)

func serveCmd(dir *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the route modules and serve the API",
		Long: `Discover route modules, mount them on the host router and serve
until SIGINT or SIGTERM.

A module that fails to load is logged and skipped. A missing routes
directory or two modules claiming the same method and path abort startup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *dir, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides server.addr)")
	return cmd
}

func runServe(parent context.Context, dir, addr string) error {
	cfg, err := loadConfig(dir)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := setupTracing(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	svc, err := newServices(cfg)
	if err != nil {
		return err
	}
	services.Set(svc)

	discovered, err := router.NewScanner(cfg.RoutesPath(), logger).Discover()
	if err != nil {
		return err
	}

	srv := server.New(serverConfig(cfg), logger)
	if err := srv.Mount(routes.Manifest, discovered); err != nil {
		return err
	}

	return srv.Run(ctx)
}
