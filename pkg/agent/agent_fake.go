package agent

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/trace/noop"
)

type RecordedEvent struct {
	Type   string
	Params map[string]interface{}
}

type RecordedMetric struct {
	Name  string
	Value float64
}

type RecordedError struct {
	Err    error
	Params map[string]interface{}
}

type RecordedAttribute struct {
	TransactionId string
	Key           string
	Value         interface{}
}

// FakeAgent keeps every call in memory. Setting Err makes every call fail with
// it and setting Panic makes every call panic.
type FakeAgent struct {
	Err   error
	Panic bool

	mu         sync.Mutex
	events     []RecordedEvent
	metrics    []RecordedMetric
	errors     []RecordedError
	attributes []RecordedAttribute
	nextId     int
}

func NewFakeAgent() *FakeAgent {
	return &FakeAgent{}
}

func (fa *FakeAgent) StartTransaction(ctx context.Context, name string) (context.Context, *Transaction) {
	fa.mu.Lock()
	fa.nextId++
	id := fmt.Sprintf("fake-%d", fa.nextId)
	fa.mu.Unlock()
	ctx, span := noop.NewTracerProvider().Tracer("fake").Start(ctx, name)
	txn := newTransaction(id, name, span)
	return PutTransactionInContext(ctx, txn), txn
}

func (fa *FakeAgent) RecordCustomEvent(ctx context.Context, eventType string, params map[string]interface{}) error {
	if err := fa.fail(); err != nil {
		return err
	}
	fa.mu.Lock()
	defer fa.mu.Unlock()
	fa.events = append(fa.events, RecordedEvent{Type: eventType, Params: params})
	return nil
}

func (fa *FakeAgent) RecordMetric(ctx context.Context, name string, value float64) error {
	if err := fa.fail(); err != nil {
		return err
	}
	fa.mu.Lock()
	defer fa.mu.Unlock()
	fa.metrics = append(fa.metrics, RecordedMetric{Name: name, Value: value})
	return nil
}

func (fa *FakeAgent) NoticeError(ctx context.Context, err error, params map[string]interface{}) error {
	if failure := fa.fail(); failure != nil {
		return failure
	}
	fa.mu.Lock()
	defer fa.mu.Unlock()
	fa.errors = append(fa.errors, RecordedError{Err: err, Params: params})
	return nil
}

func (fa *FakeAgent) AddCustomAttribute(ctx context.Context, key string, value interface{}) error {
	if err := fa.fail(); err != nil {
		return err
	}
	transactionId := ""
	if txn, err := GetTransactionFromContext(ctx); err == nil {
		transactionId = txn.Id
	}
	fa.mu.Lock()
	defer fa.mu.Unlock()
	fa.attributes = append(fa.attributes, RecordedAttribute{TransactionId: transactionId, Key: key, Value: value})
	return nil
}

func (fa *FakeAgent) Events() []RecordedEvent {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	return append([]RecordedEvent(nil), fa.events...)
}

// EventsOfType filters recorded events by type, preserving order.
func (fa *FakeAgent) EventsOfType(eventType string) []RecordedEvent {
	var filtered []RecordedEvent
	for _, event := range fa.Events() {
		if event.Type == eventType {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

func (fa *FakeAgent) Metrics() []RecordedMetric {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	return append([]RecordedMetric(nil), fa.metrics...)
}

func (fa *FakeAgent) Errors() []RecordedError {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	return append([]RecordedError(nil), fa.errors...)
}

func (fa *FakeAgent) Attributes() []RecordedAttribute {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	return append([]RecordedAttribute(nil), fa.attributes...)
}

func (fa *FakeAgent) fail() error {
	if fa.Panic {
		panic("fake agent failure")
	}
	return fa.Err
}
