package agent

import (
	"context"

	"go.opentelemetry.io/otel/trace/noop"
)

// DisabledAgent drops everything. Used when the agent is switched off.
type DisabledAgent struct{}

func (DisabledAgent) StartTransaction(ctx context.Context, name string) (context.Context, *Transaction) {
	ctx, span := noop.NewTracerProvider().Tracer("").Start(ctx, name)
	txn := newTransaction("", name, span)
	return PutTransactionInContext(ctx, txn), txn
}

func (DisabledAgent) RecordCustomEvent(context.Context, string, map[string]interface{}) error {
	return nil
}

func (DisabledAgent) RecordMetric(context.Context, string, float64) error { return nil }

func (DisabledAgent) NoticeError(context.Context, error, map[string]interface{}) error { return nil }

func (DisabledAgent) AddCustomAttribute(context.Context, string, interface{}) error { return nil }
