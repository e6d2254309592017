package collector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/Avi18971911/Herald/pkg/collector/model"
	protoLogs "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonv1 "go.opentelemetry.io/proto/otlp/common/v1"
	v1 "go.opentelemetry.io/proto/otlp/logs/v1"
	"go.uber.org/zap"
)

// LogSink receives every record the collector accepts.
type LogSink func(log model.CollectedLog)

// LogServiceServerImpl is a development OTLP logs receiver. It does no
// processing of its own beyond handing records to the sink.
type LogServiceServerImpl struct {
	protoLogs.UnimplementedLogsServiceServer
	sink   LogSink
	logger *zap.Logger
}

func NewLogServiceServerImpl(logger *zap.Logger, sink LogSink) *LogServiceServerImpl {
	logger.Info("Creating new LogServiceServerImpl")
	return &LogServiceServerImpl{
		sink:   sink,
		logger: logger,
	}
}

// NewZapLogSink writes each collected record as a structured zap entry.
func NewZapLogSink(logger *zap.Logger) LogSink {
	return func(log model.CollectedLog) {
		logger.Info("Collected log record",
			zap.String("id", log.Id),
			zap.Time("timestamp", log.Timestamp),
			zap.String("severity", string(log.Severity)),
			zap.String("message", log.Message),
			zap.String("service", log.Service),
			zap.String("trace_id", log.TraceId),
			zap.String("span_id", log.SpanId),
			zap.Any("attributes", log.Attributes),
		)
	}
}

func (lss *LogServiceServerImpl) Export(
	ctx context.Context,
	req *protoLogs.ExportLogsServiceRequest,
) (*protoLogs.ExportLogsServiceResponse, error) {
	received := 0
	for _, resourceLogs := range req.ResourceLogs {
		for _, scopeLog := range resourceLogs.ScopeLogs {
			serviceName := scopeLog.GetScope().GetName()
			for _, log := range scopeLog.LogRecords {
				lss.sink(typeLog(log, serviceName))
				received++
			}
		}
	}
	lss.logger.Debug("Accepted OTLP logs export", zap.Int("records", received))
	return &protoLogs.ExportLogsServiceResponse{}, nil
}

func typeLog(log *v1.LogRecord, serviceName string) model.CollectedLog {
	timestamp := time.Unix(0, int64(log.TimeUnixNano)).UTC()
	message := log.Body.GetStringValue()
	attributes := make(map[string]interface{}, len(log.Attributes))
	for _, kv := range log.Attributes {
		attributes[kv.Key] = fromAnyValue(kv.Value)
	}
	return model.CollectedLog{
		Id:         generateLogId(timestamp, message),
		Timestamp:  timestamp,
		Severity:   getSeverity(log.SeverityNumber),
		Message:    message,
		Service:    serviceName,
		TraceId:    hex.EncodeToString(log.TraceId),
		SpanId:     hex.EncodeToString(log.SpanId),
		Attributes: attributes,
	}
}

func fromAnyValue(value *commonv1.AnyValue) interface{} {
	switch v := value.GetValue().(type) {
	case *commonv1.AnyValue_StringValue:
		return v.StringValue
	case *commonv1.AnyValue_BoolValue:
		return v.BoolValue
	case *commonv1.AnyValue_IntValue:
		return v.IntValue
	case *commonv1.AnyValue_DoubleValue:
		return v.DoubleValue
	default:
		return nil
	}
}

func getSeverity(severityNumber v1.SeverityNumber) model.Level {
	switch severityNumber {
	case v1.SeverityNumber_SEVERITY_NUMBER_UNSPECIFIED:
		return model.InfoLevel
	case v1.SeverityNumber_SEVERITY_NUMBER_TRACE:
		return model.DebugLevel
	case v1.SeverityNumber_SEVERITY_NUMBER_DEBUG:
		return model.DebugLevel
	case v1.SeverityNumber_SEVERITY_NUMBER_INFO:
		return model.InfoLevel
	case v1.SeverityNumber_SEVERITY_NUMBER_WARN:
		return model.WarnLevel
	case v1.SeverityNumber_SEVERITY_NUMBER_ERROR:
		return model.ErrorLevel
	case v1.SeverityNumber_SEVERITY_NUMBER_FATAL:
		return model.ErrorLevel
	default:
		return model.InfoLevel
	}
}

func generateLogId(timeStamp time.Time, message string) string {
	data := fmt.Sprintf("%s:%s", timeStamp.Format(time.StampNano), message)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
