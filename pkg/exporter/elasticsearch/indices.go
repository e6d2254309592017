package elasticsearch

import (
	agentModel "github.com/Avi18971911/Herald/pkg/agent/model"
	eventModel "github.com/Avi18971911/Herald/pkg/eventlog/model"
)

const (
	AppLogIndexName           = "app_log_index"
	CustomMetricIndexName     = "custom_metric_index"
	TransactionErrorIndexName = "transaction_error_index"
	CustomEventIndexName      = "custom_event_index"
)

// IndexFor routes an event type to its index. Unknown types share one index.
func IndexFor(eventType string) string {
	switch eventType {
	case eventModel.AppLogEventType:
		return AppLogIndexName
	case eventModel.CustomMetricEventType:
		return CustomMetricIndexName
	case agentModel.TransactionErrorEventType:
		return TransactionErrorIndexName
	default:
		return CustomEventIndexName
	}
}

var eventIndexNames = []string{
	AppLogIndexName,
	CustomMetricIndexName,
	TransactionErrorIndexName,
	CustomEventIndexName,
}

// Attributes are schema-less, so they are mapped as a flattened field to keep
// differently typed values under one key from conflicting.
var eventIndex = map[string]interface{}{
	"settings": map[string]interface{}{
		"number_of_shards":   1,
		"number_of_replicas": 1,
	},
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"event_type": map[string]interface{}{
				"type": "keyword",
			},
			"timestamp": map[string]interface{}{
				"type": "date",
			},
			"transaction_id": map[string]interface{}{
				"type": "keyword",
			},
			"trace_id": map[string]interface{}{
				"type": "keyword",
			},
			"span_id": map[string]interface{}{
				"type": "keyword",
			},
			"attributes": map[string]interface{}{
				"type": "flattened",
			},
		},
	},
}
