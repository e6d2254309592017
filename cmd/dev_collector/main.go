package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/Avi18971911/Herald/internal/config"
	"github.com/Avi18971911/Herald/pkg/collector"
	"github.com/jessevdk/go-flags"
	protoLogs "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	_ "google.golang.org/grpc/encoding/gzip"
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

	listener, err := net.Listen("tcp", cfg.Collector.Addr)
	if err != nil {
		logger.Fatal("Failed to listen", zap.String("addr", cfg.Collector.Addr), zap.Error(err))
	}

	srv := grpc.NewServer()
	logServiceServer := collector.NewLogServiceServerImpl(logger, collector.NewZapLogSink(logger))
	protoLogs.RegisterLogsServiceServer(srv, logServiceServer)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		logger.Info("Shutdown signal received, stopping gRPC server")
		srv.GracefulStop()
	}()

	logger.Info("gRPC service started, listening for OpenTelemetry logs...", zap.String("addr", cfg.Collector.Addr))
	if err := srv.Serve(listener); err != nil {
		logger.Fatal("Failed to serve", zap.Error(err))
	}
}
