// Package metrics defines the Prometheus collectors for the advisor.
// Record methods are safe on a nil *Metrics so tests and tools can run
// without a registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPDurationSeconds *prometheus.HistogramVec

	// Recommendation flow metrics
	RecommendationsTotal          *prometheus.CounterVec
	RecommendationDurationSeconds *prometheus.HistogramVec
	SubjectFilterDropped          *prometheus.CounterVec

	// LLM metrics
	LLMRequestsTotal   *prometheus.CounterVec
	LLMDurationSeconds *prometheus.HistogramVec
	LLMTokensTotal     *prometheus.CounterVec
	ToolCallsTotal     *prometheus.CounterVec
	ToolResultRecords  prometheus.Histogram

	// Catalog metrics
	CatalogMajors *prometheus.GaugeVec
	ExportsTotal  *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
	RateLimiterActive  *prometheus.GaugeVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gaokao_http_requests_total",
				Help: "Total HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "status"},
		),

		HTTPDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gaokao_http_duration_seconds",
				Help:    "HTTP request duration in seconds by route",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60},
			},
			[]string{"route"},
		),

		RecommendationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gaokao_recommendations_total",
				Help: "Recommendation requests by source and result",
			},
			[]string{"source", "result"}, // source: llm, catalog; result: ok, validation_error, upstream_error, ...
		),

		RecommendationDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gaokao_recommendation_duration_seconds",
				Help:    "End-to-end recommendation duration in seconds by source",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 20, 40, 60},
			},
			[]string{"source"},
		),

		SubjectFilterDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gaokao_subject_filter_dropped_total",
				Help: "Records removed because the student's subjects cannot satisfy them",
			},
			[]string{"stage"}, // stage: tool, final, catalog
		),

		LLMRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gaokao_llm_requests_total",
				Help: "Model calls by provider and outcome",
			},
			[]string{"provider", "outcome"}, // outcome: ok, error, timeout
		),

		LLMDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gaokao_llm_duration_seconds",
				Help:    "Single model call duration in seconds by provider",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
			},
			[]string{"provider"},
		),

		LLMTokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gaokao_llm_tokens_total",
				Help: "Tokens reported by the provider",
			},
			[]string{"provider", "kind"}, // kind: prompt, completion
		),

		ToolCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gaokao_tool_calls_total",
				Help: "Tool invocations requested by the model",
			},
			[]string{"tool", "status"}, // status: ok, invalid_args, unknown_tool
		),

		ToolResultRecords: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gaokao_tool_result_records",
				Help:    "Number of admission records returned per tool invocation",
				Buckets: []float64{0, 1, 5, 10, 20, 40, 80},
			},
		),

		CatalogMajors: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gaokao_catalog_majors",
				Help: "Admission records loaded into the catalog",
			},
			[]string{"backend"},
		),

		ExportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gaokao_exports_total",
				Help: "Spreadsheet exports by status",
			},
			[]string{"status"},
		),

		RateLimiterDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gaokao_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"},
		),

		RateLimiterActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gaokao_rate_limiter_active_keys",
				Help: "Clients currently tracked by a keyed rate limiter",
			},
			[]string{"limiter_type"},
		),
	}
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(route, method, status string, duration float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	m.HTTPDurationSeconds.WithLabelValues(route).Observe(duration)
}

// RecordRecommendation records a finished recommendation flow.
func (m *Metrics) RecordRecommendation(source, result string, duration float64) {
	if m == nil {
		return
	}
	m.RecommendationsTotal.WithLabelValues(source, result).Inc()
	m.RecommendationDurationSeconds.WithLabelValues(source).Observe(duration)
}

// RecordSubjectFiltered records records dropped for subject incompatibility.
func (m *Metrics) RecordSubjectFiltered(stage string, dropped int) {
	if m == nil || dropped <= 0 {
		return
	}
	m.SubjectFilterDropped.WithLabelValues(stage).Add(float64(dropped))
}

// RecordLLMRequest records one model call.
func (m *Metrics) RecordLLMRequest(provider, outcome string, duration float64) {
	if m == nil {
		return
	}
	m.LLMRequestsTotal.WithLabelValues(provider, outcome).Inc()
	m.LLMDurationSeconds.WithLabelValues(provider).Observe(duration)
}

// RecordLLMTokens records token usage; zero counts are skipped.
func (m *Metrics) RecordLLMTokens(provider string, prompt, completion int64) {
	if m == nil {
		return
	}
	if prompt > 0 {
		m.LLMTokensTotal.WithLabelValues(provider, "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		m.LLMTokensTotal.WithLabelValues(provider, "completion").Add(float64(completion))
	}
}

// RecordToolCall records a tool invocation and, on success, its result size.
func (m *Metrics) RecordToolCall(tool, status string, records int) {
	if m == nil {
		return
	}
	m.ToolCallsTotal.WithLabelValues(tool, status).Inc()
	if status == "ok" {
		m.ToolResultRecords.Observe(float64(records))
	}
}

// SetCatalogSize sets the loaded record count for a backend.
func (m *Metrics) SetCatalogSize(backend string, n int) {
	if m == nil {
		return
	}
	m.CatalogMajors.WithLabelValues(backend).Set(float64(n))
}

// RecordExport records a spreadsheet export.
func (m *Metrics) RecordExport(status string) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(status).Inc()
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	if m == nil {
		return
	}
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// SetRateLimiterActive sets the number of tracked keys for a limiter.
func (m *Metrics) SetRateLimiterActive(limiterType string, n int) {
	if m == nil {
		return
	}
	m.RateLimiterActive.WithLabelValues(limiterType).Set(float64(n))
}
