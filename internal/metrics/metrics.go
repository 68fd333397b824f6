// Package metrics exposes Prometheus instrumentation for the scanning
// engine. Registration happens at init time; the collectors are
// package-level so the pipeline can update them without threading a
// registry through every component.
package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// URLsScanned counts completed analyses, regardless of outcome tier.
	URLsScanned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "linkgate_urls_scanned_total",
			Help: "Total number of URLs analyzed by the scoring service.",
		},
	)

	// ThreatsDetected counts analyses that reached the block threshold.
	ThreatsDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "linkgate_threats_detected_total",
			Help: "Total number of analyses at or above the block threshold.",
		},
	)

	// AnalysisFailures counts analyses that ended in a network or
	// malformed-response failure.
	AnalysisFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "linkgate_analysis_failures_total",
			Help: "Total number of failed scoring requests.",
		},
	)

	// InFlight tracks currently outstanding scoring requests.
	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "linkgate_requests_in_flight",
			Help: "Number of scoring requests currently outstanding.",
		},
	)

	// NavigationsDenied counts clicks cancelled by the gate.
	NavigationsDenied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "linkgate_navigations_denied_total",
			Help: "Total number of navigations cancelled by the gate.",
		},
	)
)

func init() {
	prometheus.MustRegister(URLsScanned)
	prometheus.MustRegister(ThreatsDetected)
	prometheus.MustRegister(AnalysisFailures)
	prometheus.MustRegister(InFlight)
	prometheus.MustRegister(NavigationsDenied)
}

// Expose serves the metrics endpoint on addr. Blocks; intended to run
// in its own goroutine.
func Expose(addr string) {
	slog.Info("exposing Prometheus metrics", "address", addr)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics server failed", "error", err)
	}
}
