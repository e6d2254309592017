package agent

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"time"

	"github.com/Avi18971911/Herald/pkg/agent/model"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const maxEventTypeLength = 255

var validEventType = regexp.MustCompile(`^[a-zA-Z0-9_: ]+$`)

type EventPublisher interface {
	Publish(topic string, arg model.CustomEvent) error
}

type MetricRecorder interface {
	Observe(name string, value float64)
}

type AgentImpl struct {
	tracer    trace.Tracer
	publisher EventPublisher
	metrics   MetricRecorder
	errors    *ErrorCollector
	logger    *zap.Logger
	now       func() time.Time
}

func NewAgentImpl(
	tracer trace.Tracer,
	publisher EventPublisher,
	metrics MetricRecorder,
	errorCollector *ErrorCollector,
	logger *zap.Logger,
) *AgentImpl {
	return &AgentImpl{
		tracer:    tracer,
		publisher: publisher,
		metrics:   metrics,
		errors:    errorCollector,
		logger:    logger,
		now:       time.Now,
	}
}

func (a *AgentImpl) StartTransaction(ctx context.Context, name string) (context.Context, *Transaction) {
	id := uuid.NewString()
	ctx, span := a.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindServer))
	span.SetAttributes(attribute.String("transaction.id", id))
	txn := newTransaction(id, name, span)
	return PutTransactionInContext(ctx, txn), txn
}

func (a *AgentImpl) RecordCustomEvent(
	ctx context.Context,
	eventType string,
	params map[string]interface{},
) error {
	if len(eventType) > maxEventTypeLength || !validEventType.MatchString(eventType) {
		return fmt.Errorf("rejected custom event %q: %w", eventType, ErrInvalidEventType)
	}
	return a.publish(ctx, eventType, params)
}

func (a *AgentImpl) RecordMetric(ctx context.Context, name string, value float64) error {
	if name == "" {
		return ErrEmptyMetricName
	}
	a.metrics.Observe(name, value)
	return nil
}

func (a *AgentImpl) NoticeError(ctx context.Context, err error, params map[string]interface{}) error {
	if err == nil {
		return ErrNilError
	}
	txn, _ := GetTransactionFromContext(ctx)
	transactionId, transactionName := "", ""
	if txn != nil {
		transactionId, transactionName = txn.Id, txn.Name
	}

	errorClass := fmt.Sprintf("%T", err)
	// Repeats are only collapsed inside one transaction.
	if txn != nil && !a.errors.ShouldReport(transactionId+"|"+errorClass+"|"+err.Error()) {
		a.logger.Debug(
			"Suppressing duplicate error within dedupe window",
			zap.String("transaction_id", transactionId),
			zap.Error(err),
		)
		return nil
	}

	if txn != nil {
		txn.span.RecordError(err, trace.WithAttributes(toAttributes(params)...))
		txn.span.SetStatus(codes.Error, err.Error())
	}

	payload := make(map[string]interface{}, len(params)+3)
	for key, value := range params {
		payload[key] = value
	}
	payload["error.message"] = err.Error()
	payload["error.class"] = errorClass
	payload["transactionName"] = transactionName
	return a.publish(ctx, model.TransactionErrorEventType, payload)
}

func (a *AgentImpl) AddCustomAttribute(ctx context.Context, key string, value interface{}) error {
	if key == "" {
		return ErrEmptyAttributeKey
	}
	txn, err := GetTransactionFromContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to add custom attribute %s: %w", key, err)
	}
	txn.span.SetAttributes(toAttribute(key, value))
	return nil
}

func (a *AgentImpl) publish(ctx context.Context, eventType string, params map[string]interface{}) error {
	event := model.CustomEvent{
		Type:       eventType,
		Timestamp:  a.now().UTC(),
		Attributes: withFiniteNumbers(params),
	}
	if txn, err := GetTransactionFromContext(ctx); err == nil {
		spanContext := txn.span.SpanContext()
		event.TransactionId = txn.Id
		if spanContext.IsValid() {
			event.TraceId = spanContext.TraceID().String()
			event.SpanId = spanContext.SpanID().String()
		}
		txn.span.AddEvent(eventType, trace.WithAttributes(toAttributes(params)...))
	}
	if err := a.publisher.Publish(CustomEventTopic, event); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// withFiniteNumbers copies params with NaN and infinite floats replaced by nil,
// since JSON has no encoding for them.
func withFiniteNumbers(params map[string]interface{}) map[string]interface{} {
	if params == nil {
		return nil
	}
	finite := make(map[string]interface{}, len(params))
	for key, value := range params {
		finite[key] = finiteValue(value)
	}
	return finite
}

func finiteValue(value interface{}) interface{} {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil
		}
	case map[string]interface{}:
		return withFiniteNumbers(v)
	case []interface{}:
		finite := make([]interface{}, len(v))
		for i, nested := range v {
			finite[i] = finiteValue(nested)
		}
		return finite
	}
	return value
}

func toAttributes(params map[string]interface{}) []attribute.KeyValue {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	attributes := make([]attribute.KeyValue, 0, len(keys))
	for _, key := range keys {
		attributes = append(attributes, toAttribute(key, params[key]))
	}
	return attributes
}

func toAttribute(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int32:
		return attribute.Int64(key, int64(v))
	case int64:
		return attribute.Int64(key, v)
	case float32:
		return attribute.Float64(key, float64(v))
	case float64:
		return attribute.Float64(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
