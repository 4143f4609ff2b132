// Package metrics はPrometheusメトリクスの登録と公開を提供します。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stock_forecast"

// Recorder はアプリケーションのメトリクスをまとめて保持します。
// 専用のレジストリを使うので、テストごとに独立したインスタンスを作れます。
type Recorder struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	trainings        *prometheus.CounterVec
	trainingDuration prometheus.Histogram
}

// New creates a Recorder with its own registry, including Go runtime and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"route", "method", "class"},
		),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests",
		}),
		trainings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_trainings_total",
				Help:      "Total number of simulated model trainings",
			},
			[]string{"result"},
		),
		trainingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_training_seconds",
			Help:      "Time spent generating and persisting a forecast",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.httpRequests, r.httpDuration, r.httpInFlight,
		r.trainings, r.trainingDuration,
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler returns the /metrics HTTP handler.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveTraining records the outcome and latency of one training run.
func (r *Recorder) ObserveTraining(success bool, elapsed time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	r.trainings.WithLabelValues(result).Inc()
	r.trainingDuration.Observe(elapsed.Seconds())
}

// RequestStarted increments the in-flight gauge. Call RequestFinished when done.
func (r *Recorder) RequestStarted() { r.httpInFlight.Inc() }

// RequestFinished records one completed HTTP request. route should be a templated path.
func (r *Recorder) RequestFinished(route, method string, status int, elapsed time.Duration) {
	r.httpInFlight.Dec()
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route, method, statusClass(status)).Observe(elapsed.Seconds())
}

func statusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
