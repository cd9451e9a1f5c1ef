// Package metrics exposes ccmonitor's prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

const namespace = "ccmonitor"

// Usage gauges mirror the latest accepted snapshot.
var (
	PercentageUsed = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "usage_percentage",
		Help:      "Share of the token limit used in the current window",
	})

	Tokens = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tokens",
			Help:      "Token counts reported by the collector",
		},
		[]string{"kind"},
	)

	BurnRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "burn_rate_tokens_per_hour",
		Help:      "Current token burn rate",
	})

	ResetSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "time_until_reset_seconds",
		Help:      "Seconds until the usage window resets, -1 when unknown",
	})

	StatusLevel = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "status",
			Help:      "1 for the active usage status tier, 0 otherwise",
		},
		[]string{"status"},
	)
)

// Counters for the live monitor.
var (
	RefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Snapshot refresh attempts by result",
		},
		[]string{"result"},
	)

	LogEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_entries_total",
			Help:      "Live log entries appended by severity",
		},
		[]string{"severity"},
	)
)

func init() {
	prometheus.MustRegister(PercentageUsed, Tokens, BurnRate, ResetSeconds, StatusLevel)
	prometheus.MustRegister(RefreshesTotal, LogEntriesTotal)
	prometheus.MustRegister(httpRequestDuration, httpRequestsTotal)
}

var statuses = []model.Status{model.StatusSafe, model.StatusWarning, model.StatusCritical}

// ObserveSnapshot updates the usage gauges.
func ObserveSnapshot(s *model.UsageSnapshot, status model.Status) {
	if s == nil {
		return
	}
	PercentageUsed.Set(s.PercentageUsed)
	Tokens.WithLabelValues("used").Set(float64(s.TokensUsed))
	Tokens.WithLabelValues("remaining").Set(float64(s.TokensRemaining))
	Tokens.WithLabelValues("limit").Set(float64(s.TokenLimit))
	BurnRate.Set(s.BurnRate)

	if r := s.EffectiveReset(); r.HasCountdown() {
		ResetSeconds.Set(float64(*r.TimeUntilReset) / 1000)
	} else {
		ResetSeconds.Set(-1)
	}

	for _, st := range statuses {
		v := 0.0
		if st == status {
			v = 1
		}
		StatusLevel.WithLabelValues(string(st)).Set(v)
	}
}

// RecordRefresh counts one refresh attempt.
func RecordRefresh(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	RefreshesTotal.WithLabelValues(result).Inc()
}

// RecordEntry counts one appended log entry.
func RecordEntry(sev model.Severity) {
	LogEntriesTotal.WithLabelValues(string(sev)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
