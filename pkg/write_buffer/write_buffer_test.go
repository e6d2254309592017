package write_buffer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingExporter struct {
	mu      sync.Mutex
	batches [][]int
	err     error
}

func (re *recordingExporter) Export(ctx context.Context, values []int) error {
	re.mu.Lock()
	defer re.mu.Unlock()
	re.batches = append(re.batches, append([]int(nil), values...))
	return re.err
}

func (re *recordingExporter) exported() [][]int {
	re.mu.Lock()
	defer re.mu.Unlock()
	return append([][]int(nil), re.batches...)
}

func TestWriteBufferImpl_Flush(t *testing.T) {
	t.Run("Exports everything queued as one batch", func(t *testing.T) {
		exporter := &recordingExporter{}
		wb := NewWriteBufferImpl[int](exporter, 10, zap.NewNop())
		wb.WriteToBuffer([]int{1, 2})
		wb.WriteToBuffer([]int{3})

		require.NoError(t, wb.Flush(context.Background()))

		assert.Equal(t, [][]int{{1, 2, 3}}, exporter.exported())
		assert.Equal(t, 0, wb.Len())
	})

	t.Run("Does nothing when empty", func(t *testing.T) {
		exporter := &recordingExporter{}
		wb := NewWriteBufferImpl[int](exporter, 10, zap.NewNop())

		require.NoError(t, wb.Flush(context.Background()))

		assert.Empty(t, exporter.exported())
	})

	t.Run("Drops the batch when the export fails", func(t *testing.T) {
		exporter := &recordingExporter{err: errors.New("backend down")}
		wb := NewWriteBufferImpl[int](exporter, 10, zap.NewNop())
		wb.WriteToBuffer([]int{1})

		assert.Error(t, wb.Flush(context.Background()))
		assert.Equal(t, 0, wb.Len())
	})
}

func TestWriteBufferImpl_WriteToBuffer(t *testing.T) {
	t.Run("Flushes asynchronously once the queue exceeds its size", func(t *testing.T) {
		exporter := &recordingExporter{}
		wb := NewWriteBufferImpl[int](exporter, 2, zap.NewNop())

		wb.WriteToBuffer([]int{1, 2})
		assert.Empty(t, exporter.exported())
		wb.WriteToBuffer([]int{3})

		assert.Eventually(t, func() bool {
			return len(exporter.exported()) == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, []int{1, 2, 3}, exporter.exported()[0])
	})
}

func TestWriteBufferImpl_Start(t *testing.T) {
	t.Run("Flushes on every tick and once more on shutdown", func(t *testing.T) {
		exporter := &recordingExporter{}
		wb := NewWriteBufferImpl[int](exporter, 100, zap.NewNop())
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			wb.Start(ctx, 10*time.Millisecond)
			close(done)
		}()

		wb.WriteToBuffer([]int{1})
		assert.Eventually(t, func() bool {
			return len(exporter.exported()) == 1
		}, time.Second, 5*time.Millisecond)

		wb.WriteToBuffer([]int{2})
		cancel()
		<-done

		batches := exporter.exported()
		assert.Equal(t, []int{2}, batches[len(batches)-1])
	})
}
