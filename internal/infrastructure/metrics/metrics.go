// Package metrics expone contadores e histogramas Prometheus del servicio USSD.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jowa-zm/jowa-ussd/internal/application/ussd"
)

const namespace = "jowa"

var _ ussd.Recorder = (*Metrics)(nil)

// Metrics colectores con registro propio (sin estado global, un Metrics por proceso o test).
type Metrics struct {
	registry *prometheus.Registry

	dispatches        *prometheus.CounterVec
	dispatchDuration  *prometheus.HistogramVec
	notificationFails *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	rateLimited       prometheus.Counter
	sessionsPruned    prometheus.Counter
}

// New registra los colectores del servicio y los del runtime de Go.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ussd",
				Name:      "dispatches_total",
				Help:      "Interacciones USSD procesadas por estado resultante y resultado.",
			},
			[]string{"state", "outcome"},
		),
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "ussd",
				Name:      "dispatch_duration_seconds",
				Help:      "Duración de cada interacción USSD, transacción incluida.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms a ~2.5s
			},
			[]string{"outcome"},
		),
		notificationFails: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notifications",
				Name:      "failures_total",
				Help:      "SMS o eventos que no pudieron entregarse.",
			},
			[]string{"channel"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Requests HTTP atendidos.",
			},
			[]string{"method", "path", "status"},
		),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests USSD rechazados por exceso de frecuencia.",
		}),
		sessionsPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "pruned_total",
			Help:      "Sesiones USSD inactivas eliminadas por la limpieza periódica.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.dispatches, m.dispatchDuration, m.notificationFails,
		m.httpRequests, m.rateLimited, m.sessionsPruned,
	)
	return m
}

// Registry registro con todos los colectores.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler endpoint de exposición para /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveDispatch(state, outcome string, elapsed time.Duration) {
	m.dispatches.WithLabelValues(state, outcome).Inc()
	m.dispatchDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) NotificationFailed(channel string) {
	m.notificationFails.WithLabelValues(channel).Inc()
}

// ObserveHTTP cuenta un request por ruta registrada (no por URL cruda).
func (m *Metrics) ObserveHTTP(method, route string, status int) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) RateLimited() { m.rateLimited.Inc() }

func (m *Metrics) SessionsPruned(n int64) { m.sessionsPruned.Add(float64(n)) }
