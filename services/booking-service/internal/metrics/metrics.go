package metrics

import (
	"net/http"

	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bookingcrown"

// Metrics holds the booking service collectors. It satisfies bookings.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	bookingsWritten *prometheus.CounterVec
	conflicts       *prometheus.CounterVec
	checksSkipped   prometheus.Counter
	expensesWritten *prometheus.CounterVec
	eventsConsumed  *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		bookingsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_written_total",
			Help:      "Bookings created, updated or deleted, by operation and kind.",
		}, []string{"op", "kind"}),
		conflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Writes rejected because the placement collided with another booking.",
		}, []string{"kind"}),
		checksSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflict_checks_skipped_total",
			Help:      "Updates that left the schedule unchanged and skipped the conflict search.",
		}),
		expensesWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_written_total",
			Help:      "Expenses created, updated or deleted, by operation.",
		}, []string{"op"}),
		eventsConsumed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_consumed_total",
			Help:      "Kafka events handled by the owner projection consumer, by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) BookingWritten(op string, kind model.Kind) {
	m.bookingsWritten.WithLabelValues(op, string(kind)).Inc()
}

func (m *Metrics) ConflictDetected(kind model.Kind) {
	m.conflicts.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) ConflictCheckSkipped() {
	m.checksSkipped.Inc()
}

func (m *Metrics) ExpenseWritten(op string) {
	m.expensesWritten.WithLabelValues(op).Inc()
}

// EventConsumed counts consumer outcomes: "applied", "duplicate" or "failed".
func (m *Metrics) EventConsumed(outcome string) {
	m.eventsConsumed.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
