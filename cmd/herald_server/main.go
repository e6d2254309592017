package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Avi18971911/Herald/internal/config"
	"github.com/Avi18971911/Herald/pkg/eventlog"
	"github.com/Avi18971911/Herald/pkg/server/router"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

type options struct {
	Config string `short:"c" long:"config" description:"Path to a herald.yaml configuration file"`
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var opts options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		logger.Fatal("Failed to parse flags", zap.Error(err))
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	failures, err := eventlog.NewPrometheusFailureRecorder(reg)
	if err != nil {
		logger.Fatal("Failed to register failure counter", zap.Error(err))
	}

	a, cleanupAgent, err := startAgent(ctx, cfg, reg, logger)
	if err != nil {
		logger.Fatal("Failed to start agent", zap.Error(err))
	}

	console := eventlog.NewLogrusConsoleSink(
		eventlog.NewConsoleLogger(cfg.Console.Format, cfg.Console.Level, os.Stdout),
	)
	el := eventlog.NewEventLoggerImpl(a, console, logger, eventlog.WithFailureRecorder(failures))
	r := router.CreateRouter(
		el,
		a,
		reg,
		router.Delays{Api: cfg.Server.ApiDelay, Render: cfg.Server.RenderDelay},
		logger,
	)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting webserver", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			logger.Error("Stopped listening to webserver", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down webserver", zap.Error(err))
	}
	cleanupAgent(shutdownCtx)
	logger.Info("Webserver stopped")
}
