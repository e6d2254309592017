package otlp

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Avi18971911/Herald/pkg/agent/model"
	protoLogs "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonv1 "go.opentelemetry.io/proto/otlp/common/v1"
	logsv1 "go.opentelemetry.io/proto/otlp/logs/v1"
	resourcev1 "go.opentelemetry.io/proto/otlp/resource/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	EventTypeKey     = "event.type"
	TransactionIdKey = "transaction.id"
	serviceNameKey   = "service.name"
)

// Exporter ships custom events as OTLP log records to a collector.
type Exporter struct {
	client      protoLogs.LogsServiceClient
	serviceName string
}

func NewExporter(conn grpc.ClientConnInterface, serviceName string) *Exporter {
	return &Exporter{
		client:      protoLogs.NewLogsServiceClient(conn),
		serviceName: serviceName,
	}
}

// Dial opens a plaintext connection to a collector. The connection is lazy,
// so an absent collector surfaces as export errors rather than here.
func Dial(endpoint string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP client for %s: %w", endpoint, err)
	}
	return conn, nil
}

func (e *Exporter) Export(ctx context.Context, events []model.CustomEvent) error {
	if len(events) == 0 {
		return nil
	}
	_, err := e.client.Export(ctx, ToExportLogsRequest(e.serviceName, events))
	if err != nil {
		return fmt.Errorf("failed to export %d events over OTLP: %w", len(events), err)
	}
	return nil
}

func ToExportLogsRequest(serviceName string, events []model.CustomEvent) *protoLogs.ExportLogsServiceRequest {
	records := make([]*logsv1.LogRecord, len(events))
	for i, event := range events {
		records[i] = toLogRecord(event)
	}
	return &protoLogs.ExportLogsServiceRequest{
		ResourceLogs: []*logsv1.ResourceLogs{
			{
				Resource: &resourcev1.Resource{
					Attributes: []*commonv1.KeyValue{keyValue(serviceNameKey, serviceName)},
				},
				ScopeLogs: []*logsv1.ScopeLogs{
					{
						Scope:      &commonv1.InstrumentationScope{Name: serviceName},
						LogRecords: records,
					},
				},
			},
		},
	}
}

func toLogRecord(event model.CustomEvent) *logsv1.LogRecord {
	severityNumber, severityText := severityOf(event)
	body := event.Type
	if message, ok := event.Attributes["message"].(string); ok {
		body = message
	}

	attributes := []*commonv1.KeyValue{keyValue(EventTypeKey, event.Type)}
	if event.TransactionId != "" {
		attributes = append(attributes, keyValue(TransactionIdKey, event.TransactionId))
	}
	keys := make([]string, 0, len(event.Attributes))
	for key := range event.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		attributes = append(attributes, keyValue(key, event.Attributes[key]))
	}

	timestamp := uint64(event.Timestamp.UnixNano())
	return &logsv1.LogRecord{
		TimeUnixNano:         timestamp,
		ObservedTimeUnixNano: timestamp,
		SeverityNumber:       severityNumber,
		SeverityText:         severityText,
		Body:                 anyValue(body),
		Attributes:           attributes,
		TraceId:              decodeId(event.TraceId),
		SpanId:               decodeId(event.SpanId),
	}
}

func severityOf(event model.CustomEvent) (logsv1.SeverityNumber, string) {
	if event.Type == model.TransactionErrorEventType {
		return logsv1.SeverityNumber_SEVERITY_NUMBER_ERROR, "ERROR"
	}
	switch event.Attributes["level"] {
	case "warn":
		return logsv1.SeverityNumber_SEVERITY_NUMBER_WARN, "WARN"
	case "error":
		return logsv1.SeverityNumber_SEVERITY_NUMBER_ERROR, "ERROR"
	default:
		return logsv1.SeverityNumber_SEVERITY_NUMBER_INFO, "INFO"
	}
}

func keyValue(key string, value interface{}) *commonv1.KeyValue {
	return &commonv1.KeyValue{Key: key, Value: anyValue(value)}
}

func anyValue(value interface{}) *commonv1.AnyValue {
	switch v := value.(type) {
	case string:
		return &commonv1.AnyValue{Value: &commonv1.AnyValue_StringValue{StringValue: v}}
	case bool:
		return &commonv1.AnyValue{Value: &commonv1.AnyValue_BoolValue{BoolValue: v}}
	case int:
		return &commonv1.AnyValue{Value: &commonv1.AnyValue_IntValue{IntValue: int64(v)}}
	case int32:
		return &commonv1.AnyValue{Value: &commonv1.AnyValue_IntValue{IntValue: int64(v)}}
	case int64:
		return &commonv1.AnyValue{Value: &commonv1.AnyValue_IntValue{IntValue: v}}
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return &commonv1.AnyValue{Value: &commonv1.AnyValue_IntValue{IntValue: i}}
		}
		if f, err := v.Float64(); err == nil {
			return &commonv1.AnyValue{Value: &commonv1.AnyValue_DoubleValue{DoubleValue: f}}
		}
		return &commonv1.AnyValue{Value: &commonv1.AnyValue_StringValue{StringValue: v.String()}}
	case float32:
		return &commonv1.AnyValue{Value: &commonv1.AnyValue_DoubleValue{DoubleValue: float64(v)}}
	case float64:
		return &commonv1.AnyValue{Value: &commonv1.AnyValue_DoubleValue{DoubleValue: v}}
	case nil:
		return &commonv1.AnyValue{}
	default:
		return &commonv1.AnyValue{Value: &commonv1.AnyValue_StringValue{StringValue: fmt.Sprint(v)}}
	}
}

func decodeId(id string) []byte {
	if id == "" {
		return nil
	}
	decoded, err := hex.DecodeString(id)
	if err != nil {
		return nil
	}
	return decoded
}
