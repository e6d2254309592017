package main

import (
	"context"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/Avi18971911/Herald/internal/config"
	"github.com/Avi18971911/Herald/pkg/agent"
	agentModel "github.com/Avi18971911/Herald/pkg/agent/model"
	"github.com/Avi18971911/Herald/pkg/eventlog"
	"github.com/Avi18971911/Herald/pkg/eventlog/model"
	"github.com/Avi18971911/Herald/pkg/exporter/otlp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(enabled bool) *config.Config {
	return &config.Config{
		ServiceName: "herald-test",
		Agent: config.AgentConfig{
			Enabled:       enabled,
			Exporter:      config.ExporterNone,
			BufferSize:    2,
			FlushInterval: time.Hour,
		},
	}
}

type capturingExporter struct {
	mu     sync.Mutex
	events []agentModel.CustomEvent
}

func (ce *capturingExporter) Export(_ context.Context, events []agentModel.CustomEvent) error {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	ce.events = append(ce.events, events...)
	return nil
}

func (ce *capturingExporter) find(eventType string, key string, value interface{}) (agentModel.CustomEvent, bool) {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	for _, event := range ce.events {
		if event.Type == eventType && event.Attributes[key] == value {
			return event, true
		}
	}
	return agentModel.CustomEvent{}, false
}

type countingFailures struct {
	mu     sync.Mutex
	counts map[string]int
}

func (cf *countingFailures) ForwardFailure(operation string) {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	cf.counts[operation]++
}

func TestStartPipeline(t *testing.T) {
	t.Run("Delivers facade events to the exporter with typed attributes", func(t *testing.T) {
		exporter := &capturingExporter{}
		closed := false
		a, cleanup, err := startPipeline(
			context.Background(),
			testConfig(true),
			exporter,
			func() { closed = true },
			prometheus.NewRegistry(),
			zap.NewNop(),
		)
		require.NoError(t, err)
		failures := &countingFailures{counts: map[string]int{}}
		console := eventlog.NewLogrusConsoleSink(eventlog.NewConsoleLogger("text", "debug", io.Discard))
		el := eventlog.NewEventLoggerImpl(a, console, zap.NewNop(), eventlog.WithFailureRecorder(failures))

		ctx, txn := a.StartTransaction(context.Background(), "GET /api/test")
		el.LogApiCall(ctx, "/api/test", "GET", 200, 42*time.Millisecond)
		el.RecordMetric(ctx, "nan.metric", math.NaN(), "")
		el.Info(ctx, "ratio computed", model.Attributes{"ratio": math.Inf(1)})
		txn.End(200)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		cleanup(shutdownCtx)

		assert.Empty(t, failures.counts)
		assert.True(t, closed)
		require.Len(t, exporter.events, 4)

		apiCall, ok := exporter.find(model.AppLogEventType, "message", "API Call: GET /api/test")
		require.True(t, ok)
		assert.Equal(t, int64(200), apiCall.Attributes["status"])
		assert.Equal(t, "42ms", apiCall.Attributes["duration"])
		assert.Equal(t, true, apiCall.Attributes["success"])
		assert.Equal(t, txn.Id, apiCall.TransactionId)

		responseTime, ok := exporter.find(model.CustomMetricEventType, "metricName", "api.response_time.get")
		require.True(t, ok)
		assert.EqualValues(t, 42, responseTime.Attributes["value"])

		nanMetric, ok := exporter.find(model.CustomMetricEventType, "metricName", "nan.metric")
		require.True(t, ok)
		assert.Contains(t, nanMetric.Attributes, "value")
		assert.Nil(t, nanMetric.Attributes["value"])

		ratio, ok := exporter.find(model.AppLogEventType, "message", "ratio computed")
		require.True(t, ok)
		assert.Contains(t, ratio.Attributes, "ratio")
		assert.Nil(t, ratio.Attributes["ratio"])

		request := otlp.ToExportLogsRequest("herald-test", []agentModel.CustomEvent{apiCall})
		for _, kv := range request.ResourceLogs[0].ScopeLogs[0].LogRecords[0].Attributes {
			if kv.Key == "status" {
				assert.Equal(t, int64(200), kv.Value.GetIntValue())
			}
		}
	})
}

func TestStartAgent(t *testing.T) {
	t.Run("Returns a disabled agent when switched off", func(t *testing.T) {
		a, cleanup, err := startAgent(context.Background(), testConfig(false), prometheus.NewRegistry(), zap.NewNop())

		require.NoError(t, err)
		assert.IsType(t, agent.DisabledAgent{}, a)
		assert.NotPanics(t, func() { cleanup(context.Background()) })
	})

	t.Run("Runs events through the pipeline and drains it", func(t *testing.T) {
		a, cleanup, err := startAgent(context.Background(), testConfig(true), prometheus.NewRegistry(), zap.NewNop())
		require.NoError(t, err)

		ctx, txn := a.StartTransaction(context.Background(), "GET /api/test")
		for i := 0; i < 5; i++ {
			require.NoError(t, a.RecordCustomEvent(ctx, "AppLog", map[string]interface{}{"i": i}))
		}
		require.NoError(t, a.RecordMetric(ctx, "api.test.calls", 1))
		txn.End(200)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		cleanup(shutdownCtx)
		assert.NoError(t, shutdownCtx.Err())
	})

	t.Run("Fails when the metric is already registered", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		_, err := agent.NewPrometheusRecorder(reg)
		require.NoError(t, err)

		_, _, err = startAgent(context.Background(), testConfig(true), reg, zap.NewNop())

		assert.Error(t, err)
	})
}
