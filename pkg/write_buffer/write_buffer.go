package write_buffer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultWriteQueueSize = 30
const DefaultFlushInterval = 5 * time.Second
const flushTimeOut = 10 * time.Second

type Exporter[ValueType any] interface {
	Export(ctx context.Context, values []ValueType) error
}

type WriteBuffer[ValueType any] interface {
	WriteToBuffer(values []ValueType)
	Flush(ctx context.Context) error
}

// WriteBufferImpl batches values and hands them to an exporter once more than
// size are queued, on every interval tick, and on an explicit Flush. A failed
// batch is logged and dropped.
type WriteBufferImpl[ValueType any] struct {
	writeQueue []ValueType
	exporter   Exporter[ValueType]
	size       int
	logger     *zap.Logger
	mu         sync.Mutex
	flushMu    sync.Mutex
}

func NewWriteBufferImpl[ValueType any](
	exporter Exporter[ValueType],
	size int,
	logger *zap.Logger,
) *WriteBufferImpl[ValueType] {
	if size <= 0 {
		size = DefaultWriteQueueSize
	}
	return &WriteBufferImpl[ValueType]{
		writeQueue: []ValueType{},
		exporter:   exporter,
		size:       size,
		logger:     logger,
	}
}

func (wb *WriteBufferImpl[ValueType]) WriteToBuffer(values []ValueType) {
	wb.mu.Lock()
	wb.writeQueue = append(wb.writeQueue, values...)
	full := len(wb.writeQueue) > wb.size
	wb.mu.Unlock()
	if full {
		go func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeOut)
			defer cancel()
			if err := wb.Flush(flushCtx); err != nil {
				wb.logger.Error("Failed to flush write buffer", zap.Error(err))
			}
		}()
	}
}

// Start flushes every interval until ctx is done, then flushes what is left.
// A non-positive interval falls back to DefaultFlushInterval.
func (wb *WriteBufferImpl[ValueType]) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			finalCtx, cancel := context.WithTimeout(context.Background(), flushTimeOut)
			if err := wb.Flush(finalCtx); err != nil {
				wb.logger.Error("Failed final flush of write buffer", zap.Error(err))
			}
			cancel()
			return
		case <-ticker.C:
			flushCtx, cancel := context.WithTimeout(ctx, flushTimeOut)
			if err := wb.Flush(flushCtx); err != nil {
				wb.logger.Error("Failed periodic flush of write buffer", zap.Error(err))
			}
			cancel()
		}
	}
}

func (wb *WriteBufferImpl[ValueType]) Flush(ctx context.Context) error {
	wb.flushMu.Lock()
	defer wb.flushMu.Unlock()

	wb.mu.Lock()
	batch := wb.writeQueue
	wb.writeQueue = []ValueType{}
	wb.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	if err := wb.exporter.Export(ctx, batch); err != nil {
		return fmt.Errorf("error exporting batch of %d values: %w", len(batch), err)
	}
	return nil
}

func (wb *WriteBufferImpl[ValueType]) Len() int {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	return len(wb.writeQueue)
}
