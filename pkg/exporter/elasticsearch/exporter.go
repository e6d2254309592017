package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Avi18971911/Herald/pkg/agent/model"
)

// Exporter writes custom events into the index matching their type.
type Exporter struct {
	client EventClient
}

func NewExporter(client EventClient) *Exporter {
	return &Exporter{client: client}
}

func (e *Exporter) Export(ctx context.Context, events []model.CustomEvent) error {
	metaMap, dataMap, err := ToMetaAndDataMap(events)
	if err != nil {
		return fmt.Errorf("error converting events to meta and data map: %w", err)
	}
	if len(dataMap) == 0 {
		return nil
	}
	if err := e.client.BulkIndex(ctx, dataMap, metaMap, ""); err != nil {
		return fmt.Errorf("error bulk indexing %d events: %w", len(events), err)
	}
	return nil
}

func ToMetaAndDataMap(events []model.CustomEvent) ([]MetaMap, []DocumentMap, error) {
	dataMap := make([]DocumentMap, len(events))
	metaMap := make([]MetaMap, len(events))
	for i, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal event to JSON: %w", err)
		}
		var document DocumentMap
		if err := json.Unmarshal(data, &document); err != nil {
			return nil, nil, fmt.Errorf("failed to unmarshal JSON to map: %w", err)
		}
		metaMap[i] = MetaMap{"index": map[string]interface{}{"_index": IndexFor(event.Type)}}
		dataMap[i] = document
	}
	return metaMap, dataMap, nil
}
