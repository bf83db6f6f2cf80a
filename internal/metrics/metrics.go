package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels shared by the auth counters.
const (
	ResultSuccess   = "success"
	ResultDuplicate = "duplicate"
	ResultInvalid   = "invalid"
	ResultError     = "error"
)

// Metrics holds the service collectors, already curried with the service label.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds prometheus.ObserverVec
	AuthRegistrationsTotal     *prometheus.CounterVec
	AuthLoginsTotal            *prometheus.CounterVec
	TokensIssuedTotal          *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewRegistry returns a registry preloaded with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// New builds the collectors for serviceName and registers them on reg.
func New(serviceName string, reg *prometheus.Registry) *Metrics {
	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	registrations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"service", "result"},
	)
	logins := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"service", "result"},
	)
	tokens := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Total number of access tokens issued.",
		},
		[]string{"service", "flow"},
	)

	reg.MustRegister(httpRequests, httpDuration, registrations, logins, tokens)

	service := prometheus.Labels{"service": serviceName}
	return &Metrics{
		HTTPRequestsTotal:          httpRequests.MustCurryWith(service),
		HTTPRequestDurationSeconds: httpDuration.MustCurryWith(service),
		AuthRegistrationsTotal:     registrations.MustCurryWith(service),
		AuthLoginsTotal:            logins.MustCurryWith(service),
		TokensIssuedTotal:          tokens.MustCurryWith(service),
		gatherer:                   reg,
	}
}

// Registration counts one registration attempt.
func (m *Metrics) Registration(result string) {
	if m == nil {
		return
	}
	m.AuthRegistrationsTotal.WithLabelValues(result).Inc()
}

// Login counts one login attempt.
func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.AuthLoginsTotal.WithLabelValues(result).Inc()
}

// TokenIssued counts an access token handed out by flow (register or login).
func (m *Metrics) TokenIssued(flow string) {
	if m == nil {
		return
	}
	m.TokensIssuedTotal.WithLabelValues(flow).Inc()
}

// Request records one served HTTP request.
func (m *Metrics) Request(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDurationSeconds.WithLabelValues(method, path).Observe(seconds)
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
}
