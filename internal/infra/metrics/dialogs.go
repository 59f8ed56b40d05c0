package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dialogsTotal) }

var dialogsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "forward_dialogs_total",
		Help: "Total number of forward dialogs, labeled by outcome.",
	},
	[]string{"event"}, // 'started', 'cancelled', 'completed', 'gated'
)

func IncDialog(event string) { dialogsTotal.WithLabelValues(event).Inc() }
