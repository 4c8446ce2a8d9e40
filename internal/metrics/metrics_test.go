package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
)

func TestClinicMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClinicMetrics(reg)

	m.ObserveBooking("staff", "ok")
	m.ObserveBooking("staff", "ok")
	m.ObserveBooking("public", "slot_already_booked")
	m.ObserveTransition("check_in", "ok")
	m.ObserveRequest("GET", "/api/agenda", "200", 0.01)

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				counts[mf.GetName()] += c.GetValue()
			}
		}
	}
	assert.Equal(t, 3.0, counts["consultorio_turnos_bookings_total"])
	assert.Equal(t, 1.0, counts["consultorio_turnos_transitions_total"])
}

func TestClinicMetricsNilSafe(t *testing.T) {
	var m *ClinicMetrics
	m.ObserveBooking("staff", "ok")
	m.ObserveTransition("call", "ok")
	m.ObserveRequest("GET", "/", "200", 0.1)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "slot_not_offered", Outcome(httperr.Validation("slot_not_offered", "")))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}
