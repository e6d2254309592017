package agent

import (
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// ErrorCollector suppresses repeats of the same error inside a time window.
// A nil collector, or one built with a non-positive window, reports everything.
type ErrorCollector struct {
	mu     sync.Mutex
	cache  *ristretto.Cache
	window time.Duration
}

func NewErrorCollector(window time.Duration) (*ErrorCollector, error) {
	if window <= 0 {
		return &ErrorCollector{}, nil
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 16,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create error dedupe cache: %w", err)
	}
	return &ErrorCollector{cache: cache, window: window}, nil
}

func (ec *ErrorCollector) ShouldReport(key string) bool {
	if ec == nil || ec.cache == nil {
		return true
	}
	// Get and Set must not interleave or two callers could both report.
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if _, found := ec.cache.Get(key); found {
		return false
	}
	ec.cache.SetWithTTL(key, struct{}{}, 1, ec.window)
	ec.cache.Wait()
	return true
}

func (ec *ErrorCollector) Close() {
	if ec != nil && ec.cache != nil {
		ec.cache.Close()
	}
}
