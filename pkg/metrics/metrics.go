package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	placementEngine = "placement_engine"

	notificationsSentTotal      = "notifications_sent_total"
	notificationsFailedTotal    = "notifications_failed_total"
	notificationsScheduledTotal = "notifications_scheduled_total"
	approvalRequestsTotal       = "approval_requests_total"
	engineRunsTotal             = "engine_runs_total"

	// Labels
	categoryLabel = "category"
	priorityLabel = "priority"
)

var notificationLabels = []string{categoryLabel}

var notificationsSentMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: placementEngine,
		Name:      notificationsSentTotal,
		Help:      "number of scheduled notifications delivered",
	},
	notificationLabels,
)

var notificationsFailedMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: placementEngine,
		Name:      notificationsFailedTotal,
		Help:      "number of notification deliveries that failed and were left pending",
	},
	notificationLabels,
)

var notificationsScheduledMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: placementEngine,
		Name:      notificationsScheduledTotal,
		Help:      "number of scheduled notifications created by the scanners",
	},
	notificationLabels,
)

var approvalRequestsMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: placementEngine,
		Name:      approvalRequestsTotal,
		Help:      "number of approval requests routed, by priority",
	},
	[]string{priorityLabel},
)

var engineRunsMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: placementEngine,
		Name:      engineRunsTotal,
		Help:      "number of completed engine runs (flush + discover)",
	},
)

func IncreaseNotificationsSentMetric(category string) {
	notificationsSentMetric.With(prometheus.Labels{categoryLabel: category}).Inc()
}

func IncreaseNotificationsFailedMetric(category string) {
	notificationsFailedMetric.With(prometheus.Labels{categoryLabel: category}).Inc()
}

func IncreaseNotificationsScheduledMetric(category string) {
	notificationsScheduledMetric.With(prometheus.Labels{categoryLabel: category}).Inc()
}

func IncreaseApprovalRequestsMetric(priority string) {
	approvalRequestsMetric.With(prometheus.Labels{priorityLabel: priority}).Inc()
}

func IncreaseEngineRunsMetric() {
	engineRunsMetric.Inc()
}

func init() {
	prometheus.MustRegister(
		notificationsSentMetric,
		notificationsFailedMetric,
		notificationsScheduledMetric,
		approvalRequestsMetric,
		engineRunsMetric,
	)
}
