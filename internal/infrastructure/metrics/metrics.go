// Package metrics agrupa los contadores Prometheus del ledger de seriales.
// Todos los métodos aceptan receptor nil (métricas deshabilitadas).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics colectores registrados en un Registerer inyectado.
type Metrics struct {
	transitions     *prometheus.CounterVec
	custody         *prometheus.CounterVec
	historyAppends  *prometheus.CounterVec
	allocations     *prometheus.CounterVec
	batchFailures   *prometheus.CounterVec
	alerts          *prometheus.CounterVec
	availableSerial *prometheus.GaugeVec
	dbOperation     *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registra los colectores con el prefijo (namespace) dado.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "serial_transitions_total",
			Help:      "Total de transiciones de estado de seriales",
		}, []string{"from", "to", "cause"}),
		custody: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "custody_operations_total",
			Help:      "Operaciones de custodia entre empresas por resultado",
		}, []string{"operation", "result"}),
		historyAppends: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_appends_total",
			Help:      "Entradas agregadas al historial por tipo de documento y evento",
		}, []string{"picking_type", "event"}),
		allocations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "production_allocations_total",
			Help:      "Seriales asignados o reasignados por eventos de producción",
		}, []string{"event"}),
		batchFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_failures_total",
			Help:      "Seriales que fallaron dentro de operaciones en lote",
		}, []string{"operation"}),
		alerts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "safety_stock_alerts_total",
			Help:      "Alertas de stock de seguridad emitidas",
		}, []string{"category"}),
		availableSerial: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "available_serials",
			Help:      "Seriales en estado new por categoría (último escaneo)",
		}, []string{"category"}),
		dbOperation: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Duración de transacciones por operación",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total de peticiones HTTP",
		}, []string{"method", "path", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de peticiones HTTP en segundos",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// Transition cuenta una transición de estado.
func (m *Metrics) Transition(from, to, cause string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to, cause).Inc()
}

// Custody cuenta una operación de custodia (assign, receive, reverse) por serial.
func (m *Metrics) Custody(operation string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.custody.WithLabelValues(operation, result).Inc()
}

// HistoryAppend cuenta una entrada nueva del historial.
func (m *Metrics) HistoryAppend(pickingType, event string) {
	if m == nil {
		return
	}
	m.historyAppends.WithLabelValues(pickingType, event).Inc()
}

// Allocation suma n seriales movidos por un evento de producción.
func (m *Metrics) Allocation(event string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.allocations.WithLabelValues(event).Add(float64(n))
}

// BatchFailures suma los fallos por registro de una operación en lote.
func (m *Metrics) BatchFailures(operation string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.batchFailures.WithLabelValues(operation).Add(float64(n))
}

// SafetyStockAlert cuenta una alerta emitida.
func (m *Metrics) SafetyStockAlert(category string) {
	if m == nil {
		return
	}
	m.alerts.WithLabelValues(category).Inc()
}

// Available publica el stock disponible de una categoría.
func (m *Metrics) Available(category string, n int) {
	if m == nil {
		return
	}
	m.availableSerial.WithLabelValues(category).Set(float64(n))
}

// TrackDBOperation devuelve una función que registra la duración desde start.
//
//	defer m.TrackDBOperation("production_completed")(time.Now())
func (m *Metrics) TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		if m == nil {
			return
		}
		m.dbOperation.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// HTTPRequest registra una petición atendida.
func (m *Metrics) HTTPRequest(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
