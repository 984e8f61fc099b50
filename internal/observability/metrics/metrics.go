package metrics

import "github.com/prometheus/client_golang/prometheus"

// Mark-sent outcomes.
const (
	OutcomeMarked      = "marked"
	OutcomeAlreadySent = "already_sent"
	OutcomeNotFound    = "not_found"
	OutcomeError       = "error"
)

// Cross-replica claim results.
const (
	ClaimAcquired    = "acquired"
	ClaimContended   = "contended"
	ClaimUnavailable = "unavailable"
)

// ReminderMetrics exposes gauges and counters for the reminder board.
type ReminderMetrics struct {
	bucketSize     *prometheus.GaugeVec
	refreshTotal   *prometheus.CounterVec
	refreshLatency prometheus.Histogram
	markSentTotal  *prometheus.CounterVec
	claimsTotal    *prometheus.CounterVec
	anomaliesTotal *prometheus.CounterVec
}

func NewReminderMetrics(reg prometheus.Registerer) *ReminderMetrics {
	m := &ReminderMetrics{
		bucketSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "frontdesk",
			Subsystem: "reminders",
			Name:      "bucket_size",
			Help:      "Notifications in each board bucket at the last refresh",
		}, []string{"bucket"}),
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "reminders",
			Name:      "refresh_total",
			Help:      "Board refreshes by result",
		}, []string{"result"}),
		refreshLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "frontdesk",
			Subsystem: "reminders",
			Name:      "refresh_latency_seconds",
			Help:      "Latency of fetching and classifying notifications",
			Buckets:   prometheus.DefBuckets,
		}),
		markSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "reminders",
			Name:      "mark_sent_total",
			Help:      "Mark-sent requests by outcome",
		}, []string{"outcome"}),
		claimsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "reminders",
			Name:      "mark_sent_claims_total",
			Help:      "Cross-replica mark-sent claim attempts by result",
		}, []string{"result"}),
		anomaliesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "reminders",
			Name:      "anomalies_total",
			Help:      "Malformed records excluded from classification",
		}, []string{"field"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bucketSize, m.refreshTotal, m.refreshLatency, m.markSentTotal, m.claimsTotal, m.anomaliesTotal)
	return m
}

func (m *ReminderMetrics) SetBuckets(pending, upcoming int) {
	if m == nil {
		return
	}
	m.bucketSize.WithLabelValues("pending").Set(float64(pending))
	m.bucketSize.WithLabelValues("upcoming").Set(float64(upcoming))
}

func (m *ReminderMetrics) ObserveRefresh(ok bool, seconds float64) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.refreshTotal.WithLabelValues(result).Inc()
	m.refreshLatency.Observe(seconds)
}

func (m *ReminderMetrics) ObserveMarkSent(outcome string) {
	if m == nil {
		return
	}
	m.markSentTotal.WithLabelValues(outcome).Inc()
}

func (m *ReminderMetrics) ObserveClaim(result string) {
	if m == nil {
		return
	}
	m.claimsTotal.WithLabelValues(result).Inc()
}

func (m *ReminderMetrics) ObserveAnomaly(field string) {
	if m == nil {
		return
	}
	m.anomaliesTotal.WithLabelValues(field).Inc()
}
