package pluginhost

import "github.com/prometheus/client_golang/prometheus"

var (
	metricInstancesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "plcruntime",
		Subsystem: "pluginhost",
		Name:      "instances_loaded",
		Help:      "Number of plugin instances currently registered and healthy.",
	})

	metricInstancesUnhealthy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "plcruntime",
		Subsystem: "pluginhost",
		Name:      "instances_unhealthy",
		Help:      "Number of plugin instances that have faulted and stopped receiving hook calls.",
	})

	metricHookPanics = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "plcruntime",
		Subsystem: "pluginhost",
		Name:      "hook_panics_total",
		Help:      "Number of plugin entry-point invocations recovered from a panic.",
	})
)

func init() {
	prometheus.MustRegister(metricInstancesLoaded, metricInstancesUnhealthy, metricHookPanics)
}
