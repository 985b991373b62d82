package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
)

type PrometheusAdapter struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	statusesTotal   *prometheus.CounterVec
	evaluations     prometheus.Counter
}

func NewPrometheusAdapter() *PrometheusAdapter {
	registry := prometheus.NewRegistry()

	p := &PrometheusAdapter{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		statusesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maintenance_statuses_total",
				Help: "Maintenance statuses produced by evaluations, by state",
			},
			[]string{"status"},
		),
		evaluations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "maintenance_evaluations_total",
				Help: "Number of maintenance evaluations run",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.requestsTotal,
		p.requestDuration,
		p.statusesTotal,
		p.evaluations,
	)

	return p
}

func (p *PrometheusAdapter) RecordMetrics(c *gin.Context, start time.Time) {
	path := c.FullPath()
	if path == "" {
		path = "unmatched"
	}
	method := c.Request.Method

	p.requestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
	p.requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
}

func (p *PrometheusAdapter) RecordEvaluation(statuses []domain.MaintenanceStatus) {
	p.evaluations.Inc()
	for _, st := range statuses {
		p.statusesTotal.WithLabelValues(string(st.Status)).Inc()
	}
}

func (p *PrometheusAdapter) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
