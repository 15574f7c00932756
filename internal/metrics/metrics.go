package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so several apps (tests) can coexist in one process.
// All recording methods are safe on a nil receiver.
type Metrics struct {
	Registry   *prometheus.Registry
	Requests   *prometheus.CounterVec
	LatencyMS  *prometheus.HistogramVec
	Checkouts  *prometheus.CounterVec
	Payments   *prometheus.CounterVec
	StockUnits *prometheus.CounterVec
	Swept      prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "checkouts_total",
			Help:      "Checkout attempts by entry point (cart|buy_now|retry) and outcome.",
		}, []string{"entry", "outcome"}),
		Payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "payment_callbacks_total",
			Help:      "Payment callbacks by kind (success|cancel|webhook) and outcome.",
		}, []string{"kind", "outcome"}),
		StockUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "stock_units_total",
			Help:      "Units moved through the stock ledger by direction.",
		}, []string{"type"}),
		Swept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "stale_orders_cancelled_total",
			Help:      "Pending orders cancelled by the stale order sweep.",
		}),
	}
	reg.MustRegister(m.Requests, m.LatencyMS, m.Checkouts, m.Payments, m.StockUnits, m.Swept,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

func (m *Metrics) Checkout(entry, outcome string) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(entry, outcome).Inc()
}

func (m *Metrics) Payment(kind, outcome string) {
	if m == nil {
		return
	}
	m.Payments.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) Stock(typ string, units int) {
	if m == nil {
		return
	}
	m.StockUnits.WithLabelValues(typ).Add(float64(units))
}

func (m *Metrics) Sweep(n int) {
	if m == nil {
		return
	}
	m.Swept.Add(float64(n))
}

// Middleware records request counts and latency per matched route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		c.Locals("start", start)
		err := c.Next()
		if m == nil {
			return err
		}
		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
		return err
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
