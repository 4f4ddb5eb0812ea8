package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BotUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "adminbot", Name: "updates_total", Help: "Processed telegram updates",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "adminbot", Name: "handler_errors_total", Help: "Handler errors",
	})
	APIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "adminbot", Name: "api_requests_total", Help: "School API requests by operation and outcome",
	}, []string{"op", "outcome"})
	APIDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "adminbot", Name: "api_request_seconds", Help: "School API request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	SessionStorePing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "adminbot", Name: "session_db_ping_seconds", Help: "Session DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(BotUpdates, HandlerErrors, APIRequests, APIDuration, SessionStorePing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveAPIRequest(op, outcome string, d time.Duration) {
	APIRequests.WithLabelValues(op, outcome).Inc()
	APIDuration.WithLabelValues(op).Observe(d.Seconds())
}

func ObserveSessionPing(d time.Duration) { SessionStorePing.Observe(d.Seconds()) }
