// Package metrics exposes Prometheus collectors for probe outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hazz-dev/kbprobe/internal/probe"
)

var (
	ChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kbprobe",
			Name:      "checks_total",
			Help:      "Total number of probe runs",
		},
		[]string{"probe", "status"},
	)

	CheckDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kbprobe",
			Name:      "check_duration_seconds",
			Help:      "Probe run duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"probe"},
	)

	ProbeUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "kbprobe",
			Name:      "probe_up",
			Help:      "Whether the last run of the probe passed (1) or failed (0)",
		},
		[]string{"probe"},
	)
)

func init() {
	prometheus.MustRegister(ChecksTotal)
	prometheus.MustRegister(CheckDuration)
	prometheus.MustRegister(ProbeUp)
}

// Observe records one probe result.
func Observe(r probe.CheckResult) {
	ChecksTotal.WithLabelValues(r.ProbeName, string(r.Status)).Inc()
	CheckDuration.WithLabelValues(r.ProbeName).Observe(r.Duration.Seconds())

	up := 0.0
	if r.Status == probe.StatusPass {
		up = 1.0
	}
	ProbeUp.WithLabelValues(r.ProbeName).Set(up)
}
