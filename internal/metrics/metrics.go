package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
)

// ClinicMetrics exposes counters for the scheduling core and the HTTP layer.
type ClinicMetrics struct {
	bookingsTotal    *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

func NewClinicMetrics(reg prometheus.Registerer) *ClinicMetrics {
	m := &ClinicMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consultorio",
			Subsystem: "turnos",
			Name:      "bookings_total",
			Help:      "Booking attempts by channel and outcome",
		}, []string{"channel", "outcome"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consultorio",
			Subsystem: "turnos",
			Name:      "transitions_total",
			Help:      "Front-desk workflow transitions by event and outcome",
		}, []string{"event", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "consultorio",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.transitionsTotal, m.requestDuration)
	return m
}

func (m *ClinicMetrics) ObserveBooking(channel, outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(channel, outcome).Inc()
}

func (m *ClinicMetrics) ObserveTransition(event, outcome string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(event, outcome).Inc()
}

func (m *ClinicMetrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, status).Observe(seconds)
}

// Outcome labels an error for the counters: "ok", the business error
// code, or "error".
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var be httperr.BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return "error"
}
