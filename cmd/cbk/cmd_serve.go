package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lupertojoele-max/cbk-sub000/internal/catalog"
	"github.com/lupertojoele-max/cbk-sub000/internal/server"
	"github.com/lupertojoele-max/cbk-sub000/internal/version"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return runServe(a)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func runServe(a *app) error {
	logger := a.logger
	logger.Info("CBK catalog starting", zap.String("version", version.Short()))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	engine, src, err := a.engine(catalog.NewMetrics(reg))
	if err != nil {
		return err
	}
	// Load eagerly so a broken document stops the server before it listens.
	products, err := engine.Products()
	if err != nil {
		return err
	}
	for _, w := range src.Warnings() {
		logger.Warn("catalog warning",
			zap.String("product_id", w.ProductID),
			zap.String("field", w.Field),
			zap.String("message", w.Message),
		)
	}
	logger.Info("catalog loaded",
		zap.Int("products", len(products)),
		zap.Int("pages", len(engine.Rules().Pages())),
	)

	srv := server.New(server.Options{
		Addr:         a.cfg.Server.Addr,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}, logger, reg, catalog.NewHandler(engine, logger))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}
	logger.Info("CBK catalog stopped")
	return nil
}
