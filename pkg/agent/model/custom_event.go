package model

import (
	"bytes"
	"encoding/json"
	"time"
)

const TransactionErrorEventType = "TransactionError"

// CustomEvent is a schema-less record bound for the event search backend.
type CustomEvent struct {
	Type          string                 `json:"event_type"`
	Timestamp     time.Time              `json:"timestamp"`
	TransactionId string                 `json:"transaction_id,omitempty"`
	TraceId       string                 `json:"trace_id,omitempty"`
	SpanId        string                 `json:"span_id,omitempty"`
	Attributes    map[string]interface{} `json:"attributes"`
}

// UnmarshalJSON keeps integral attribute values as int64. Everything else
// numeric decodes to float64.
func (e *CustomEvent) UnmarshalJSON(data []byte) error {
	type plain CustomEvent
	var decoded plain
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return err
	}
	for key, value := range decoded.Attributes {
		decoded.Attributes[key] = normalizeNumbers(value)
	}
	*e = CustomEvent(decoded)
	return nil
}

func normalizeNumbers(value interface{}) interface{} {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]interface{}:
		for key, nested := range v {
			v[key] = normalizeNumbers(nested)
		}
		return v
	case []interface{}:
		for i, nested := range v {
			v[i] = normalizeNumbers(nested)
		}
		return v
	default:
		return value
	}
}
