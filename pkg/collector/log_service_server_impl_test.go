package collector

import (
	"context"
	"testing"
	"time"

	"github.com/Avi18971911/Herald/pkg/collector/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protoLogs "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonv1 "go.opentelemetry.io/proto/otlp/common/v1"
	v1 "go.opentelemetry.io/proto/otlp/logs/v1"
	"go.uber.org/zap"
)

func TestLogServiceServerImpl_Export(t *testing.T) {
	var collected []model.CollectedLog
	server := NewLogServiceServerImpl(zap.NewNop(), func(log model.CollectedLog) {
		collected = append(collected, log)
	})
	timestamp := time.Date(2025, 2, 2, 2, 2, 2, 0, time.UTC)

	_, err := server.Export(context.Background(), &protoLogs.ExportLogsServiceRequest{
		ResourceLogs: []*v1.ResourceLogs{{
			ScopeLogs: []*v1.ScopeLogs{{
				Scope: &commonv1.InstrumentationScope{Name: "herald"},
				LogRecords: []*v1.LogRecord{{
					TimeUnixNano:   uint64(timestamp.UnixNano()),
					SeverityNumber: v1.SeverityNumber_SEVERITY_NUMBER_WARN,
					Body:           &commonv1.AnyValue{Value: &commonv1.AnyValue_StringValue{StringValue: "disk low"}},
					Attributes: []*commonv1.KeyValue{
						{Key: "count", Value: &commonv1.AnyValue{Value: &commonv1.AnyValue_IntValue{IntValue: 3}}},
					},
					TraceId: []byte{0xab, 0xcd},
				}},
			}},
		}},
	})

	require.NoError(t, err)
	require.Len(t, collected, 1)
	assert.Equal(t, "herald", collected[0].Service)
	assert.Equal(t, model.WarnLevel, collected[0].Severity)
	assert.Equal(t, "disk low", collected[0].Message)
	assert.Equal(t, "abcd", collected[0].TraceId)
	assert.Equal(t, int64(3), collected[0].Attributes["count"])
	assert.True(t, timestamp.Equal(collected[0].Timestamp))
	assert.Equal(t, generateLogId(collected[0].Timestamp, "disk low"), collected[0].Id)
}

func TestGetSeverity(t *testing.T) {
	assert.Equal(t, model.InfoLevel, getSeverity(v1.SeverityNumber_SEVERITY_NUMBER_UNSPECIFIED))
	assert.Equal(t, model.DebugLevel, getSeverity(v1.SeverityNumber_SEVERITY_NUMBER_TRACE))
	assert.Equal(t, model.ErrorLevel, getSeverity(v1.SeverityNumber_SEVERITY_NUMBER_FATAL))
}
