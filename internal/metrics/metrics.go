package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	namespace = "mapgen"

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	generationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagram_generation_total",
			Help:      "Number of diagram generation requests by outcome",
		},
		[]string{"dialect", "status"},
	)

	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "diagram_generation_duration_seconds",
			Help:      "Diagram pipeline duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"dialect", "status"},
	)

	oracleRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_requests_total",
			Help:      "Number of calls to the text generation service",
		},
		[]string{"provider", "status"},
	)

	imagesInjectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagram_images_injected_total",
			Help:      "Number of images spliced into mind maps",
		},
		[]string{"phase"},
	)

	cacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagram_cache_total",
			Help:      "Diagram cache lookups by result",
		},
		[]string{"result"},
	)
)

func HttpRequestsTotal(method, path, code string) {
	httpRequestsTotal.With(prometheus.Labels{
		"method": method,
		"path":   path,
		"code":   code,
	}).Inc()
}

func HttpRequestDuration(method, path string, duration time.Duration) {
	httpRequestDuration.With(prometheus.Labels{
		"method": method,
		"path":   path,
	}).Observe(duration.Seconds())
}

func GenerationTotal(dialect, status string) {
	generationTotal.With(prometheus.Labels{
		"dialect": dialect,
		"status":  status,
	}).Inc()
}

func GenerationDuration(dialect, status string, duration time.Duration) {
	generationDuration.With(prometheus.Labels{
		"dialect": dialect,
		"status":  status,
	}).Observe(duration.Seconds())
}

func OracleRequestsTotal(provider, status string) {
	oracleRequestsTotal.With(prometheus.Labels{
		"provider": provider,
		"status":   status,
	}).Inc()
}

func ImagesInjected(phase string, n int) {
	if n <= 0 {
		return
	}
	imagesInjectedTotal.With(prometheus.Labels{"phase": phase}).Add(float64(n))
}

func CacheLookup(result string) {
	cacheTotal.With(prometheus.Labels{"result": result}).Inc()
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &statusResponseWriter{w, http.StatusOK}
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		HttpRequestsTotal(r.Method, r.URL.Path, strconv.Itoa(ww.status))
		HttpRequestDuration(r.Method, r.URL.Path, duration)
	})
}

type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
