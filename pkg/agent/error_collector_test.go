package agent

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCollector_ShouldReport(t *testing.T) {
	t.Run("Reports a key once per window", func(t *testing.T) {
		ec, err := NewErrorCollector(time.Minute)
		require.NoError(t, err)
		defer ec.Close()

		assert.True(t, ec.ShouldReport("txn-1|*errors.errorString|boom"))
		assert.False(t, ec.ShouldReport("txn-1|*errors.errorString|boom"))
		assert.True(t, ec.ShouldReport("txn-2|*errors.errorString|boom"))
	})

	t.Run("Reports a key once under concurrent callers", func(t *testing.T) {
		ec, err := NewErrorCollector(time.Minute)
		require.NoError(t, err)
		defer ec.Close()

		var reported atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if ec.ShouldReport("txn-1|*errors.errorString|boom") {
					reported.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), reported.Load())
	})

	t.Run("Reports again once the window passes", func(t *testing.T) {
		ec, err := NewErrorCollector(50 * time.Millisecond)
		require.NoError(t, err)
		defer ec.Close()

		require.True(t, ec.ShouldReport("key"))
		assert.Eventually(t, func() bool {
			return ec.ShouldReport("key")
		}, 3*time.Second, 20*time.Millisecond)
	})

	t.Run("Reports everything without a window", func(t *testing.T) {
		ec, err := NewErrorCollector(0)
		require.NoError(t, err)

		assert.True(t, ec.ShouldReport("key"))
		assert.True(t, ec.ShouldReport("key"))
		assert.NotPanics(t, ec.Close)
	})

	t.Run("Is safe to use when nil", func(t *testing.T) {
		var ec *ErrorCollector

		assert.True(t, ec.ShouldReport("key"))
		assert.NotPanics(t, ec.Close)
	})
}
