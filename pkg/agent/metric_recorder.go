package agent

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const customMetricName = "herald_custom_metric"

// PrometheusRecorder keeps every recorded metric as a summary labelled by name.
type PrometheusRecorder struct {
	values *prometheus.SummaryVec
}

func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	values := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name: customMetricName,
		Help: "Values recorded through the agent, labelled by metric name.",
	}, []string{"name"})
	if err := reg.Register(values); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", customMetricName, err)
	}
	return &PrometheusRecorder{values: values}, nil
}

func (pr *PrometheusRecorder) Observe(name string, value float64) {
	pr.values.WithLabelValues(name).Observe(value)
}
