package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

type RefreshRate string

const (
	// Wait for the changes made by the request to be made visible by a refresh before replying.
	Wait RefreshRate = "wait_for"
	// Immediate Refresh the relevant primary and replica shards (not the whole index) immediately after the operation occurs.
	Immediate RefreshRate = "true"
	// Async Take no refresh related actions. The changes made by this request will be made visible at some point after the request returns.
	Async RefreshRate = "false"
)

type MetaMap map[string]interface{}
type DocumentMap map[string]interface{}

type EventClient interface {
	// BulkIndex indexes (inserts) multiple documents. Each meta entry may name its own _index,
	// in which case index can be empty.
	// https://www.elastic.co/guide/en/elasticsearch/reference/master/docs-bulk.html
	BulkIndex(ctx context.Context, data []DocumentMap, metaInfo []MetaMap, index string) error
}

type EventClientImpl struct {
	es          *elasticsearch.Client
	refreshRate string
}

func NewEventClientImpl(es *elasticsearch.Client, refreshRate RefreshRate) *EventClientImpl {
	return &EventClientImpl{es: es, refreshRate: string(refreshRate)}
}

func (c *EventClientImpl) BulkIndex(
	ctx context.Context,
	data []DocumentMap,
	metaInfo []MetaMap,
	index string,
) error {
	var buf bytes.Buffer
	for i, d := range data {
		var meta MetaMap
		if metaInfo != nil && i < len(metaInfo) {
			meta = metaInfo[i]
		} else {
			meta = MetaMap{"index": map[string]interface{}{}}
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("error marshaling meta to bulk index: %w", err)
		}
		buf.Write(metaJSON)
		buf.WriteByte('\n')

		dataJSON, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("error marshaling data to bulk index: %w", err)
		}
		buf.Write(dataJSON)
		buf.WriteByte('\n')
	}

	opts := []func(*esapi.BulkRequest){
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithRefresh(c.refreshRate),
	}
	if len(index) > 0 {
		opts = append(opts, c.es.Bulk.WithIndex(index))
	}
	res, err := c.es.Bulk(bytes.NewReader(buf.Bytes()), opts...)
	if err != nil {
		return fmt.Errorf("error bulk indexing: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk index error: %s", res.String())
	}
	return nil
}
