package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(messagesForwardedTotal, messagesFailedTotal, rateLimitWaitSeconds, runsTotal)
}

var messagesForwardedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "forward_messages_forwarded_total",
		Help: "Total number of messages successfully relocated.",
	},
)

var messagesFailedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "forward_messages_failed_total",
		Help: "Total number of per-message relocation failures, labeled by reason.",
	},
	[]string{"reason"}, // 'not_found', 'forbidden', 'other'
)

var rateLimitWaitSeconds = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "forward_rate_limit_wait_seconds_total",
		Help: "Total seconds spent waiting out FLOOD_WAIT signals.",
	},
)

var runsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "forward_runs_total",
		Help: "Total number of forward runs, labeled by terminal status.",
	},
	[]string{"status"}, // 'completed', 'aborted'
)

func IncForwarded()           { messagesForwardedTotal.Inc() }
func IncFailed(reason string) { messagesFailedTotal.WithLabelValues(reason).Inc() }
func IncRun(status string)    { runsTotal.WithLabelValues(status).Inc() }

func AddRateLimitWait(d time.Duration) { rateLimitWaitSeconds.Add(d.Seconds()) }
