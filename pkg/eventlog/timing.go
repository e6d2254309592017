package eventlog

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Avi18971911/Herald/pkg/eventlog/model"
)

// Timing measures one operation. It is single use: only the first Stop emits.
type Timing struct {
	ctx      context.Context
	name     string
	start    time.Time
	el       *EventLoggerImpl
	consumed atomic.Bool
}

func newTiming(ctx context.Context, name string, start time.Time, el *EventLoggerImpl) *Timing {
	return &Timing{ctx: ctx, name: name, start: start, el: el}
}

// Stop records custom.timing.<name> in milliseconds and logs the completion.
// It returns the elapsed time, or zero if the timing was already stopped.
func (t *Timing) Stop() time.Duration {
	if !t.consumed.CompareAndSwap(false, true) {
		return 0
	}
	elapsed := t.el.now().Sub(t.start)
	t.el.RecordMetric(t.ctx, timingMetricPrefix+t.name, float64(elapsed.Milliseconds()), millisecondsUnit)
	t.el.Info(t.ctx, "Timing completed: "+t.name, model.Attributes{
		"duration":  formatMilliseconds(elapsed),
		"operation": t.name,
	})
	return elapsed
}

func (t *Timing) Consumed() bool {
	return t.consumed.Load()
}
