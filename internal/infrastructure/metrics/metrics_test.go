package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/metrics"
)

func TestMetrics_NilEsSeguro(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.Transition("new", "manufacturing", "manual")
		m.Custody("assign", true)
		m.Available("Fire-9kg", 3)
		m.TrackDBOperation("x")(time.Now())
		m.HTTPRequest("GET", "/health", "200", time.Millisecond)
	})
}

func TestMetrics_RegistraEnRegistryInyectado(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, "setsco")

	m.Transition("new", "manufacturing", "manual")
	m.Transition("new", "manufacturing", "manual")
	m.SafetyStockAlert("Fire-9kg")
	m.Available("Fire-9kg", 3)

	count, err := testutil.GatherAndCount(reg, "setsco_serial_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "una serie por combinación de etiquetas")

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "setsco_safety_stock_alerts_total")
	assert.Contains(t, names, "setsco_available_serials")
}
