package agent

import (
	"context"
	"errors"
)

// CustomEventTopic is the event bus topic custom events are published on.
const CustomEventTopic = "agent.custom_event"

// Agent is the monitoring backend client the application forwards telemetry to.
// Transport, batching and retry happen behind it.
type Agent interface {
	RecordCustomEvent(ctx context.Context, eventType string, params map[string]interface{}) error
	RecordMetric(ctx context.Context, name string, value float64) error
	NoticeError(ctx context.Context, err error, params map[string]interface{}) error
	AddCustomAttribute(ctx context.Context, key string, value interface{}) error
}

// TransactionStarter opens units of work that attributes and errors attach to.
type TransactionStarter interface {
	StartTransaction(ctx context.Context, name string) (context.Context, *Transaction)
}

var (
	ErrInvalidEventType  = errors.New("event type must be 1-255 characters of letters, digits, '_', ':' or spaces")
	ErrEmptyMetricName   = errors.New("metric name must not be empty")
	ErrEmptyAttributeKey = errors.New("attribute key must not be empty")
	ErrNilError          = errors.New("cannot notice a nil error")
)
