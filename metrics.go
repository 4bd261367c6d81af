package dynamicinclude

import (
	"github.com/prometheus/client_golang/prometheus"

	typeregistry "github.com/dynamic-include/dynamic-include/pkg/type-registry"
)

// metrics counts dispatch outcomes, labelled by the winning processor
// ("passthrough" when none matched, "error" when processing failed).
type metrics struct {
	dispatches *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer, registry *typeregistry.Registry) *metrics {
	if reg == nil {
		// keep the instruments working without publishing anywhere
		reg = prometheus.NewRegistry()
	}
	m := &metrics{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dynamic_include",
			Name:      "dispatch_total",
			Help:      "Dispatch outcomes by winning request processor.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.dispatches)
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "dynamic_include",
		Name:      "resource_type_providers",
		Help:      "Number of currently registered resource type providers.",
	}, func() float64 {
		return float64(registry.Len())
	}))
	return m
}

func (m *metrics) dispatch(outcome string) {
	m.dispatches.WithLabelValues(outcome).Inc()
}
