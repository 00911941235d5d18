package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records ledger and alerting activity.
// A nil *Metrics (or one built with a nil registerer) is a no-op.
type Metrics struct {
	recalculations   prometheus.Counter
	expensesLogged   prometheus.Counter
	alertsTriggered  *prometheus.CounterVec
	listenerFailures prometheus.Counter
}

// New registers the ledger metrics on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	recalculations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_recalculations_total",
		Help: "Ledger balance recomputations.",
	})
	expensesLogged := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "expenses_logged_total",
		Help: "Expenses attached to a ledger.",
	})
	alertsTriggered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "alerts_triggered_total",
		Help: "Alert notifications produced.",
	}, []string{"periodicity"})
	listenerFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "alert_listener_failures_total",
		Help: "Notification listeners that returned an error or panicked.",
	})
	reg.MustRegister(recalculations, expensesLogged, alertsTriggered, listenerFailures)
	return &Metrics{
		recalculations:   recalculations,
		expensesLogged:   expensesLogged,
		alertsTriggered:  alertsTriggered,
		listenerFailures: listenerFailures,
	}
}

// IncRecalculation counts one ledger recomputation.
func (m *Metrics) IncRecalculation() {
	if m == nil || m.recalculations == nil {
		return
	}
	m.recalculations.Inc()
}

// IncExpenseLogged counts one expense attached to a ledger.
func (m *Metrics) IncExpenseLogged() {
	if m == nil || m.expensesLogged == nil {
		return
	}
	m.expensesLogged.Inc()
}

// IncAlertTriggered counts one notification for the given periodicity.
func (m *Metrics) IncAlertTriggered(periodicity string) {
	if m == nil || m.alertsTriggered == nil {
		return
	}
	m.alertsTriggered.WithLabelValues(normalizeLabel(periodicity)).Inc()
}

// AddListenerFailures counts failed listener invocations.
func (m *Metrics) AddListenerFailures(n int) {
	if m == nil || m.listenerFailures == nil || n <= 0 {
		return
	}
	m.listenerFailures.Add(float64(n))
}

func normalizeLabel(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "unknown"
	}
	return value
}
