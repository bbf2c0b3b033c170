// Package perf is the performance-measurement sink the ATG reports
// per-iteration timing to (spec.md §4.5: "each iteration measures its
// start/stop via the external performance sink"). It is an external
// collaborator the core only talks to through the Sink interface, so
// handler and ATG code never reach for a process-wide metrics
// singleton directly.
package perf

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sink receives timing and outcome events from a station's ATG
// per-connector drivers.
type Sink interface {
	ObserveTransactionStart(stationID string, connectorID int, d time.Duration)
	ObserveTransactionStop(stationID string, connectorID int, d time.Duration)
	ObserveSkip(stationID string, connectorID int)
	SetActiveTransactions(stationID string, count int)
}

var startDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "atg",
	Name:      "transaction_start_seconds",
	Help:      "Time spent in the ATG's startTransaction step, including any Authorize round-trip.",
}, []string{"station_id", "connector_id"})

var stopDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "atg",
	Name:      "transaction_stop_seconds",
	Help:      "Time spent in the ATG's stopTransaction step.",
}, []string{"station_id", "connector_id"})

var skipCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "atg",
	Name:      "transaction_skip_total",
	Help:      "Number of per-connector iterations that drew r >= probabilityOfStart.",
}, []string{"station_id", "connector_id"})

var activeTransactions = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "atg",
	Name:      "transactions_active",
	Help:      "Number of connectors with a running ATG-driven transaction.",
}, []string{"station_id"})

// PrometheusSink is the default Sink, grounded on the teacher pack's
// gauge/counter-vector exposition pattern.
type PrometheusSink struct{}

func NewPrometheusSink() *PrometheusSink { return &PrometheusSink{} }

func (PrometheusSink) ObserveTransactionStart(stationID string, connectorID int, d time.Duration) {
	startDuration.WithLabelValues(stationID, connectorIDLabel(connectorID)).Observe(d.Seconds())
}

func (PrometheusSink) ObserveTransactionStop(stationID string, connectorID int, d time.Duration) {
	stopDuration.WithLabelValues(stationID, connectorIDLabel(connectorID)).Observe(d.Seconds())
}

func (PrometheusSink) ObserveSkip(stationID string, connectorID int) {
	skipCounter.WithLabelValues(stationID, connectorIDLabel(connectorID)).Inc()
}

func (PrometheusSink) SetActiveTransactions(stationID string, count int) {
	activeTransactions.WithLabelValues(stationID).Set(float64(count))
}

func connectorIDLabel(connectorID int) string {
	return strconv.Itoa(connectorID)
}
