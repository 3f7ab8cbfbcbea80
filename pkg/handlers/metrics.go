// This file wires request instrumentation: a prometheus counter per path
// and status plus a structured access log line per request. The /metrics
// endpoint itself is registered in cmd/web.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodlist_http_requests_total",
		Help: "HTTP requests served, by path and status code.",
	}, []string{"path", "status"})

	pipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodlist_pipeline_runs_total",
		Help: "Playlist pipeline runs, by outcome.",
	}, []string{"outcome"})
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Metrics counts and logs every request after the wrapped handler finishes.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		requestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.status)).Inc()
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}
