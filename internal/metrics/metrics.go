// Package metrics registers the prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

var (
	// ProxyRequests counts requests forwarded to upstream servers, by kind
	// and upstream status code.
	ProxyRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediamaster_proxy_requests_total",
		Help: "Requests forwarded to upstream servers.",
	}, []string{"type", "status"})

	// ProxyErrors counts proxy requests that never produced an upstream
	// response (transport failures, disabled or unknown instances).
	ProxyErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediamaster_proxy_errors_total",
		Help: "Proxy requests that failed before an upstream response.",
	}, []string{"type", "reason"})

	// ReportFanoutFailures counts per-instance fetch failures during report
	// aggregation. These do not fail the report; the instance is omitted.
	ReportFanoutFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediamaster_report_fanout_failures_total",
		Help: "Per-instance fetch failures during report aggregation.",
	}, []string{"report"})

	// HealthChecks counts health poller probe outcomes by classification.
	HealthChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediamaster_health_checks_total",
		Help: "Connection test outcomes from the health poller.",
	}, []string{"status"})
)

// Handler returns the /metrics endpoint handler.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
