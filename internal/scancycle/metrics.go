package scancycle

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Process metrics. Exporting these does not change the tick
// algorithm's control flow: a slow or failed scrape is invisible to
// the scan-cycle thread. The collectors are registered once, with
// prometheus.MustRegister from the package's init function; calling
// Initialise again does not register them again.
var (
	metricOverruns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "plcruntime",
		Subsystem: "scancycle",
		Name:      "overruns_total",
		Help:      "Number of ticks whose loop body ran longer than the configured tick period.",
	})

	metricScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "plcruntime",
		Subsystem: "scancycle",
		Name:      "scan_duration_seconds",
		Help:      "Wall time of the tick body, from journal apply through image-lock release.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
	})

	metricLatencySeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "plcruntime",
		Subsystem: "scancycle",
		Name:      "latency_seconds",
		Help:      "Most recent difference between scheduled and actual tick wake-up time.",
	})

	metricTickCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "plcruntime",
		Subsystem: "scancycle",
		Name:      "ticks_total",
		Help:      "Number of completed scan-cycle ticks.",
	})
)

func init() {
	prometheus.MustRegister(metricOverruns, metricScanDuration, metricLatencySeconds, metricTickCounter)
}

func observeScan(d time.Duration) {
	metricScanDuration.Observe(d.Seconds())
	metricTickCounter.Inc()
}

func observeLatency(d time.Duration) {
	metricLatencySeconds.Set(d.Seconds())
}

func observeOverrun() {
	metricOverruns.Inc()
}
