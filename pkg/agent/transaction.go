package agent

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const transactionKey contextKey = "transaction"

// Transaction is one unit of work, backed by a span.
type Transaction struct {
	Id   string
	Name string
	span trace.Span
}

func newTransaction(id string, name string, span trace.Span) *Transaction {
	return &Transaction{Id: id, Name: name, span: span}
}

func (t *Transaction) Span() trace.Span {
	return t.span
}

// End records the response status and closes the span. Statuses >= 500 mark
// the span as failed.
func (t *Transaction) End(status int) {
	t.span.SetAttributes(attribute.Int("http.status_code", status))
	if status >= 500 {
		t.span.SetStatus(codes.Error, "server error")
	}
	t.span.End()
}

func GetTransactionFromContext(ctx context.Context) (*Transaction, error) {
	if txn, ok := ctx.Value(transactionKey).(*Transaction); ok && txn != nil {
		return txn, nil
	}
	return nil, ErrNoTransaction
}

func PutTransactionInContext(ctx context.Context, txn *Transaction) context.Context {
	return context.WithValue(ctx, transactionKey, txn)
}

var ErrNoTransaction = errors.New("no transaction in context")
