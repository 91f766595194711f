// Package telemetry exposes Prometheus metrics for the HTTP server, the
// access policy, logins, the FAQ responder and the connection pool.
package telemetry

import (
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hms"

// Outcome labels shared by counters.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeLimited  = "rate_limited"
	OutcomeMatched  = "matched"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
	OutcomeEmpty    = "empty"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	inflight     prometheus.Gauge
	authAttempts *prometheus.CounterVec
	denials      *prometheus.CounterVec
	faqLookups   *prometheus.CounterVec
	chatSessions prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status_code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served",
		}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Login attempts by kind and outcome",
		}, []string{"kind", "outcome"}),
		denials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policy_denials_total",
			Help:      "Requests refused by the access policy",
		}, []string{"rule"}),
		faqLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faq_lookups_total",
			Help:      "Chatbot questions by outcome",
		}, []string{"outcome"}),
		chatSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chat_sessions_active",
			Help:      "Open chatbot websocket sessions",
		}),
	}
	m.registry.MustRegister(
		m.requests, m.duration, m.inflight,
		m.authAttempts, m.denials, m.faqLookups, m.chatSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WatchPool exports pool statistics as gauges sampled at scrape time.
func (m *Metrics) WatchPool(pool *pgxpool.Pool) {
	gauge := func(name, help string, fn func(*pgxpool.Stat) int32) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(fn(pool.Stat())) })
	}
	m.registry.MustRegister(
		gauge("total_conns", "Connections open in the pool", (*pgxpool.Stat).TotalConns),
		gauge("acquired_conns", "Connections checked out by requests", (*pgxpool.Stat).AcquiredConns),
		gauge("idle_conns", "Idle connections", (*pgxpool.Stat).IdleConns),
		gauge("max_conns", "Configured pool ceiling", (*pgxpool.Stat).MaxConns),
	)
}

// PolicyDenied counts a refusal by the named policy rule.
func (m *Metrics) PolicyDenied(rule string) {
	m.denials.WithLabelValues(rule).Inc()
}

// AuthAttempt counts one admin or patient login.
func (m *Metrics) AuthAttempt(kind, outcome string) {
	m.authAttempts.WithLabelValues(kind, outcome).Inc()
}

// FAQLookup counts one chatbot question.
func (m *Metrics) FAQLookup(outcome string) {
	m.faqLookups.WithLabelValues(outcome).Inc()
}

// ChatOpened and ChatClosed track websocket chat sessions.
func (m *Metrics) ChatOpened() { m.chatSessions.Inc() }
func (m *Metrics) ChatClosed() { m.chatSessions.Dec() }

// Middleware records request counts and latency by route pattern.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.inflight.Inc()
			start := time.Now()

			err := next(c)

			m.inflight.Dec()
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil {
				status = 500
			}
			method := c.Request().Method
			m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
