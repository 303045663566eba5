// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the recognition service.
var (
	// Ledger counters.
	PointsAllocatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_allocated_total",
			Help: "Total points moved from admin budgets into manager pools",
		},
		[]string{"kind"},
	)

	RewardsIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewards_issued_total",
			Help: "Total number of rewards issued",
		},
		[]string{"giver_role"},
	)

	PointsIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_issued_total",
			Help: "Total points issued to employees",
		},
		[]string{"giver_role"},
	)

	RedemptionsRequestedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redemptions_requested_total",
			Help: "Total number of redemption requests created",
		},
	)

	RedemptionsResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redemptions_resolved_total",
			Help: "Total number of redemptions resolved",
		},
		[]string{"status"},
	)

	LedgerRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_rejections_total",
			Help: "Total ledger operations rejected by a business rule",
		},
		[]string{"operation", "kind"},
	)

	// Histograms.
	RedemptionPointsRequested = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "redemption_points_requested",
			Help:    "Points required by requested redemptions",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10 to ~5k points
		},
	)

	// Push delivery.
	PushNotificationsSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "push_notifications_sent_total",
			Help: "Total push notifications accepted by the push service",
		},
	)

	PushNotificationsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_notifications_failed_total",
			Help: "Total failed push notification deliveries",
		},
		[]string{"reason"},
	)

	// Scheduler metrics.
	SchedulerJobsRunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_run_total",
			Help: "Total scheduler job executions",
		},
		[]string{"status"},
	)

	SchedulerRemindersSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_reminders_sent_total",
			Help: "Total successful pending redemption reminders sent",
		},
	)

	SchedulerPendingRedemptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_pending_redemptions",
			Help: "Number of overdue pending redemptions in last reminder",
		},
	)

	SchedulerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_last_run_timestamp",
			Help: "Unix timestamp of last scheduler run",
		},
	)

	SchedulerJobDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheduler_job_duration_seconds",
			Help:    "Time taken to execute scheduler reminder job",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
	)

	// HTTP metrics.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordPointsAllocated records points moved into a manager pool.
// kind is "initial" or "increment".
func RecordPointsAllocated(kind string, points int64) {
	PointsAllocatedTotal.WithLabelValues(kind).Add(float64(points))
}

// RecordRewardIssued records an issued reward and its points.
func RecordRewardIssued(giverRole string, points int64) {
	RewardsIssuedTotal.WithLabelValues(giverRole).Inc()
	PointsIssuedTotal.WithLabelValues(giverRole).Add(float64(points))
}

// RecordRedemptionRequested records a new redemption request.
func RecordRedemptionRequested(points int64) {
	RedemptionsRequestedTotal.Inc()
	RedemptionPointsRequested.Observe(float64(points))
}

// RecordRedemptionResolved records a redemption reaching a terminal status.
func RecordRedemptionResolved(status string) {
	RedemptionsResolvedTotal.WithLabelValues(status).Inc()
}

// RecordLedgerRejection records an operation refused by a ledger rule.
func RecordLedgerRejection(operation, kind string) {
	LedgerRejectionsTotal.WithLabelValues(operation, kind).Inc()
}

// RecordPushSent records a delivered push notification.
func RecordPushSent() {
	PushNotificationsSentTotal.Inc()
}

// RecordPushFailed records a failed push notification.
func RecordPushFailed(reason string) {
	PushNotificationsFailedTotal.WithLabelValues(reason).Inc()
}

// RecordSchedulerJobRun records a scheduler job execution.
func RecordSchedulerJobRun(status string) {
	SchedulerJobsRunTotal.WithLabelValues(status).Inc()
}

// RecordSchedulerReminderSent records a successful reminder.
func RecordSchedulerReminderSent() {
	SchedulerRemindersSentTotal.Inc()
}

// SetSchedulerPendingRedemptions sets the number of overdue redemptions in the last run.
func SetSchedulerPendingRedemptions(count int) {
	SchedulerPendingRedemptions.Set(float64(count))
}

// SetSchedulerLastRun sets the timestamp of the last scheduler run.
func SetSchedulerLastRun() {
	SchedulerLastRunTimestamp.SetToCurrentTime()
}

// ObserveSchedulerJobDuration observes the duration of a scheduler job.
func ObserveSchedulerJobDuration(seconds float64) {
	SchedulerJobDurationSeconds.Observe(seconds)
}

// RecordHTTPRequest records a served request. route is the matched route
// pattern, not the raw path, to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, status int, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDurationSeconds.WithLabelValues(method, route).Observe(seconds)
}
