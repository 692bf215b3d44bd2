package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "backoffice_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	paymentEvents *prometheus.CounterVec

	ledgerBuildTotal   *prometheus.CounterVec
	ledgerBuildLatency *prometheus.HistogramVec

	scheduleBuildTotal   *prometheus.CounterVec
	scheduleBuildLatency *prometheus.HistogramVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	changeEvents *prometheus.CounterVec

	notifyTotal *prometheus.CounterVec
)

// Init registers all service metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		paymentEvents = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payment_events_total",
				Help: "Total payment operations by action and result",
			},
			[]string{"action", "result"},
		)

		ledgerBuildTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ledger_build_total",
				Help: "Total ledger view computations by result",
			},
			[]string{"result"},
		)
		ledgerBuildLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ledger_build_latency_seconds",
				Help:    "Ledger view computation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		scheduleBuildTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "schedule_build_total",
				Help: "Total installment schedule computations by result",
			},
			[]string{"result"},
		)
		scheduleBuildLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "schedule_build_latency_seconds",
				Help:    "Installment schedule computation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total export operations by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		changeEvents = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "change_events_total",
				Help: "Total change-feed events by table",
			},
			[]string{"table"},
		)

		notifyTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notify_total",
				Help: "Total outbound notifications by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			paymentEvents,
			ledgerBuildTotal,
			ledgerBuildLatency,
			scheduleBuildTotal,
			scheduleBuildLatency,
			exportTotal,
			exportLatency,
			changeEvents,
			notifyTotal,
		)
	})
}

// IncPaymentEvent increments the payment operation counter.
func IncPaymentEvent(action, result string) {
	if result == "" {
		result = resultSuccess
	}
	if paymentEvents != nil {
		paymentEvents.WithLabelValues(action, result).Inc()
	}
}

// ObserveLedgerBuild records ledger computation latency and result.
func ObserveLedgerBuild(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if ledgerBuildTotal != nil {
		ledgerBuildTotal.WithLabelValues(result).Inc()
	}
	if ledgerBuildLatency != nil {
		ledgerBuildLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveScheduleBuild records schedule computation latency and result.
func ObserveScheduleBuild(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if scheduleBuildTotal != nil {
		scheduleBuildTotal.WithLabelValues(result).Inc()
	}
	if scheduleBuildLatency != nil {
		scheduleBuildLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveExport records export latency and result per format.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncChangeEvent increments the change-feed counter for a table.
func IncChangeEvent(table string) {
	if table == "" {
		table = "unknown"
	}
	if changeEvents != nil {
		changeEvents.WithLabelValues(table).Inc()
	}
}

// IncNotify increments the notification counter.
func IncNotify(result string) {
	if result == "" {
		result = resultSuccess
	}
	if notifyTotal != nil {
		notifyTotal.WithLabelValues(result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
