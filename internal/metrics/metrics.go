package metrics

import (
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()

	forksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "warden",
		Name:      "forks_total",
		Help:      "Total number of children created, by mode (supervised or detached).",
	}, []string{"mode"})

	reapsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "warden",
		Name:      "reaps_total",
		Help:      "Total number of supervised children reaped, by outcome (exited or signaled).",
	}, []string{"outcome"})

	releasesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "warden",
		Name:      "releases_total",
		Help:      "Total number of handles released, tearing down their guard descriptor.",
	})

	activeChildren = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "warden",
		Name:      "active_children",
		Help:      "Supervised children currently held by live handles.",
	})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "warden",
		Name:      "build_info",
		Help:      "Build metadata for the running warden binary.",
	}, []string{"go_version", "vcs", "vcs_revision", "vcs_time", "vcs_modified"})

	buildInfoOnce sync.Once
)

func init() {
	registry.MustRegister(forksTotal, reapsTotal, releasesTotal, activeChildren, buildInfo)
}

// Registry returns the Prometheus registry containing all warden metrics.
func Registry() *prometheus.Registry {
	return registry
}

// RecordFork counts a successful fork in the given mode and, for supervised
// children, tracks it as active until RecordRelease.
func RecordFork(mode string) {
	if mode == "" {
		mode = "supervised"
	}
	forksTotal.WithLabelValues(mode).Inc()
	if mode == "supervised" {
		activeChildren.Inc()
	}
}

// RecordReap counts a reaped child by outcome.
func RecordReap(outcome string) {
	if outcome == "" {
		outcome = "exited"
	}
	reapsTotal.WithLabelValues(outcome).Inc()
}

// RecordRelease counts a handle release.
func RecordRelease() {
	releasesTotal.Inc()
	activeChildren.Dec()
}

// EmitBuildInfo publishes build metadata about the running binary.
func EmitBuildInfo() {
	buildInfoOnce.Do(func() {
		labels := prometheus.Labels{
			"go_version":   runtime.Version(),
			"vcs":          "",
			"vcs_revision": "",
			"vcs_time":     "",
			"vcs_modified": "",
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.GoVersion != "" {
				labels["go_version"] = info.GoVersion
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs":
					labels["vcs"] = setting.Value
				case "vcs.revision":
					labels["vcs_revision"] = setting.Value
				case "vcs.time":
					labels["vcs_time"] = setting.Value
				case "vcs.modified":
					labels["vcs_modified"] = setting.Value
				}
			}
		}
		buildInfo.With(labels).Set(1)
	})
}
