package main

import (
	"context"
	"fmt"

	"github.com/Avi18971911/Herald/internal/config"
	"github.com/Avi18971911/Herald/pkg/agent"
	agentModel "github.com/Avi18971911/Herald/pkg/agent/model"
	"github.com/Avi18971911/Herald/pkg/event_bus"
	elastic "github.com/Avi18971911/Herald/pkg/exporter/elasticsearch"
	"github.com/Avi18971911/Herald/pkg/exporter/otlp"
	"github.com/Avi18971911/Herald/pkg/write_buffer"
	"github.com/asaskevich/EventBus"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type monitoringAgent interface {
	agent.Agent
	agent.TransactionStarter
}

type discardExporter struct{}

func (discardExporter) Export(context.Context, []agentModel.CustomEvent) error { return nil }

// startAgent builds the agent and the pipeline behind it: custom events go
// over the bus into a write buffer that flushes to the configured exporter.
// The returned cleanup drains the pipeline and must run after the HTTP server
// has stopped.
func startAgent(
	ctx context.Context,
	cfg *config.Config,
	reg prometheus.Registerer,
	logger *zap.Logger,
) (monitoringAgent, func(ctx context.Context), error) {
	if !cfg.Agent.Enabled {
		logger.Info("Agent disabled, telemetry goes to the console only")
		return agent.DisabledAgent{}, func(context.Context) {}, nil
	}

	exporter, closeExporter, err := newExporter(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return startPipeline(ctx, cfg, exporter, closeExporter, reg, logger)
}

// startPipeline wires an enabled agent to exporter. closeExporter runs on
// cleanup, or right away when wiring fails.
func startPipeline(
	ctx context.Context,
	cfg *config.Config,
	exporter write_buffer.Exporter[agentModel.CustomEvent],
	closeExporter func(),
	reg prometheus.Registerer,
	logger *zap.Logger,
) (monitoringAgent, func(ctx context.Context), error) {
	tp, err := agent.InitTracerProvider(ctx, cfg.ServiceName, cfg.Tracing.Endpoint)
	if err != nil {
		closeExporter()
		return nil, nil, fmt.Errorf("failed to initialize tracer provider: %w", err)
	}
	recorder, err := agent.NewPrometheusRecorder(reg)
	if err != nil {
		closeExporter()
		return nil, nil, err
	}
	errorCollector, err := agent.NewErrorCollector(cfg.Agent.ErrorDedupeWindow)
	if err != nil {
		closeExporter()
		return nil, nil, err
	}

	buffer := write_buffer.NewWriteBufferImpl[agentModel.CustomEvent](exporter, cfg.Agent.BufferSize, logger)
	bus := event_bus.NewJsonBus[agentModel.CustomEvent, agentModel.CustomEvent](EventBus.New(), logger)
	err = bus.Subscribe(
		agent.CustomEventTopic,
		func(event agentModel.CustomEvent) error {
			buffer.WriteToBuffer([]agentModel.CustomEvent{event})
			return nil
		},
		false,
	)
	if err != nil {
		errorCollector.Close()
		closeExporter()
		return nil, nil, err
	}

	bufferCtx, stopBuffer := context.WithCancel(context.Background())
	bufferDone := make(chan struct{})
	go func() {
		defer close(bufferDone)
		buffer.Start(bufferCtx, cfg.Agent.FlushInterval)
	}()

	a := agent.NewAgentImpl(tp.Tracer(cfg.ServiceName), bus, recorder, errorCollector, logger)
	logger.Info(
		"Agent started",
		zap.String("exporter", cfg.Agent.Exporter),
		zap.Int("buffer_size", cfg.Agent.BufferSize),
		zap.Duration("flush_interval", cfg.Agent.FlushInterval),
	)

	cleanup := func(ctx context.Context) {
		bus.WaitAsync()
		stopBuffer()
		select {
		case <-bufferDone:
		case <-ctx.Done():
			logger.Warn("Timed out waiting for the final flush", zap.Error(ctx.Err()))
		}
		errorCollector.Close()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("Failed to shut down tracer provider", zap.Error(err))
		}
		closeExporter()
	}
	return a, cleanup, nil
}

func newExporter(
	cfg *config.Config,
	logger *zap.Logger,
) (write_buffer.Exporter[agentModel.CustomEvent], func(), error) {
	switch cfg.Agent.Exporter {
	case config.ExporterElasticsearch:
		es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: cfg.Elastic.Addresses})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
		}
		bs := elastic.NewBootstrapper(es, cfg.Elastic.Retries, elastic.DefaultWaitTime, logger)
		if err := bs.BootstrapElasticsearch(); err != nil {
			return nil, nil, fmt.Errorf("failed to bootstrap elasticsearch: %w", err)
		}
		return elastic.NewExporter(elastic.NewEventClientImpl(es, elastic.Async)), func() {}, nil
	case config.ExporterOtlp:
		conn, err := otlp.Dial(cfg.Otlp.Endpoint)
		if err != nil {
			return nil, nil, err
		}
		closeConn := func() {
			if err := conn.Close(); err != nil {
				logger.Error("Failed to close OTLP connection", zap.Error(err))
			}
		}
		return otlp.NewExporter(conn, cfg.ServiceName), closeConn, nil
	default:
		return discardExporter{}, func() {}, nil
	}
}
