package eventlog

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const forwardFailuresName = "herald_telemetry_forward_failures_total"

// FailureRecorder is told whenever a sink call fails, so degraded telemetry
// is visible without breaking the caller.
type FailureRecorder interface {
	ForwardFailure(operation string)
}

type PrometheusFailureRecorder struct {
	failures *prometheus.CounterVec
}

func NewPrometheusFailureRecorder(reg prometheus.Registerer) (*PrometheusFailureRecorder, error) {
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: forwardFailuresName,
		Help: "Telemetry forwarding calls that failed or panicked, by operation.",
	}, []string{"operation"})
	if err := reg.Register(failures); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", forwardFailuresName, err)
	}
	return &PrometheusFailureRecorder{failures: failures}, nil
}

func (pfr *PrometheusFailureRecorder) ForwardFailure(operation string) {
	pfr.failures.WithLabelValues(operation).Inc()
}

type noopFailureRecorder struct{}

func (noopFailureRecorder) ForwardFailure(string) {}
