package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	rankLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankwatch_rank_lookups_total",
			Help: "Total rank lookup count by outcome",
		},
		[]string{"outcome"},
	)
	generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankwatch_generations_total",
			Help: "Total narrative generation calls by provider and status",
		},
		[]string{"provider", "status"},
	)
	commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankwatch_commands_total",
			Help: "Total interactive commands handled by command and status",
		},
		[]string{"command", "status"},
	)
	reports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankwatch_reports_total",
			Help: "Total scheduled report runs by delivery status",
		},
		[]string{"status"},
	)
	trackedKeywords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rankwatch_tracked_keywords",
			Help: "Number of keywords loaded from the source in the last run",
		},
	)

	initOnce sync.Once
	enabled  bool
)

// Label values shared across collectors.
const (
	OutcomeRanked   = "ranked"
	OutcomeUnranked = "unranked"
	OutcomeOK       = "ok"
	OutcomeError    = "error"
)

// Init registers the collectors with the default registry. Must be
// called once at startup; recording is a no-op until then.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(rankLookups, generations, commands, reports, trackedKeywords)
		enabled = true
	})
}

func RecordLookup(outcome string) {
	if !enabled {
		return
	}
	rankLookups.WithLabelValues(outcome).Inc()
}

func RecordGeneration(provider, status string) {
	if !enabled {
		return
	}
	generations.WithLabelValues(provider, status).Inc()
}

func RecordCommand(command, status string) {
	if !enabled {
		return
	}
	commands.WithLabelValues(command, status).Inc()
}

func RecordReport(status string) {
	if !enabled {
		return
	}
	reports.WithLabelValues(status).Inc()
}

func SetTrackedKeywords(n int) {
	if !enabled {
		return
	}
	trackedKeywords.Set(float64(n))
}
