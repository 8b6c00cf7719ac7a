package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager holds the storefront's Prometheus collectors on a private registry.
type Manager struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal *prometheus.CounterVec
	HTTPLatency       *prometheus.HistogramVec
	CartMutations     prometheus.Counter
	CartSessions      prometheus.Gauge
	OrdersPlaced      prometheus.Counter
	ProductCacheHits  *prometheus.CounterVec
}

func NewManager(namespace string) *Manager {
	if namespace == "" {
		namespace = "storefront"
	}
	registry := prometheus.NewRegistry()

	m := &Manager{
		Registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_latency_seconds",
			Help:      "Latency of HTTP requests by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		CartMutations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Total number of cart add, update and remove operations.",
		}),
		CartSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_sessions",
			Help:      "Number of live in-memory cart sessions.",
		}),
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Total number of orders placed through checkout.",
		}),
		ProductCacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_cache_lookups_total",
			Help:      "Product detail cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPLatency,
		m.CartMutations,
		m.CartSessions,
		m.OrdersPlaced,
		m.ProductCacheHits,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// The recording helpers below accept a nil Manager so components can run
// without metrics in tests.

func (m *Manager) ObserveCacheLookup(result string) {
	if m == nil {
		return
	}
	m.ProductCacheHits.WithLabelValues(result).Inc()
}

func (m *Manager) IncOrdersPlaced() {
	if m == nil {
		return
	}
	m.OrdersPlaced.Inc()
}

func (m *Manager) IncCartMutations() {
	if m == nil {
		return
	}
	m.CartMutations.Inc()
}

func (m *Manager) CartSessionOpened() {
	if m == nil {
		return
	}
	m.CartSessions.Inc()
}

func (m *Manager) CartSessionClosed() {
	if m == nil {
		return
	}
	m.CartSessions.Dec()
}
