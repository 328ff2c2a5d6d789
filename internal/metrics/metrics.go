package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so several servers can live in one test binary.
type Metrics struct {
	service  string
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	statusCategory *prometheus.CounterVec

	OrdersCreated     *prometheus.CounterVec
	PaymentsConfirmed *prometheus.CounterVec
	WebhookEvents     *prometheus.CounterVec
	BolsaPayments     *prometheus.CounterVec
}

func New(service string) *Metrics {
	m := &Metrics{
		service:  service,
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path", "status"}),
		statusCategory: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_status_category_total",
			Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
		}, []string{"service", "category"}),
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders created, by payment method",
		}, []string{"payment_method"}),
		PaymentsConfirmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_confirmed_total",
			Help: "Orders moved to paid, by provider",
		}, []string{"provider"}),
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Webhook deliveries, by provider, event type and result",
		}, []string{"provider", "type", "result"}),
		BolsaPayments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bolsa_payments_total",
			Help: "Bolsa Uniforme payments, by status transition",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.statusCategory,
		m.OrdersCreated,
		m.PaymentsConfirmed,
		m.WebhookEvents,
		m.BolsaPayments,
	)
	return m
}

func statusCategory(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return ""
	}
}

// Middleware records request count, latency and status category per route.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			method := c.Request().Method
			path := c.Path()
			statusStr := strconv.Itoa(status)

			m.requests.WithLabelValues(m.service, method, path, statusStr).Inc()
			m.duration.WithLabelValues(m.service, method, path, statusStr).Observe(time.Since(start).Seconds())
			if cat := statusCategory(status); cat != "" {
				m.statusCategory.WithLabelValues(m.service, cat).Inc()
			}
			return err
		}
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// The helpers below accept a nil receiver so services can run without a registry in tests.

func (m *Metrics) OrderCreated(method string) {
	if m == nil {
		return
	}
	m.OrdersCreated.WithLabelValues(method).Inc()
}

func (m *Metrics) PaymentConfirmed(provider string) {
	if m == nil {
		return
	}
	m.PaymentsConfirmed.WithLabelValues(provider).Inc()
}

func (m *Metrics) WebhookEvent(provider, typ, result string) {
	if m == nil {
		return
	}
	m.WebhookEvents.WithLabelValues(provider, typ, result).Inc()
}

func (m *Metrics) BolsaPayment(status string) {
	if m == nil {
		return
	}
	m.BolsaPayments.WithLabelValues(status).Inc()
}
