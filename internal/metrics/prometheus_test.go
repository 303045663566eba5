package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordPointsAllocated(t *testing.T) {
	PointsAllocatedTotal.Reset()

	RecordPointsAllocated("initial", 500)
	RecordPointsAllocated("increment", 100)
	RecordPointsAllocated("increment", 50)

	if got := testutil.ToFloat64(PointsAllocatedTotal.WithLabelValues("initial")); got != 500 {
		t.Errorf("Expected initial allocation = 500, got %f", got)
	}
	if got := testutil.ToFloat64(PointsAllocatedTotal.WithLabelValues("increment")); got != 150 {
		t.Errorf("Expected increment allocation = 150, got %f", got)
	}
}

func TestRecordRewardIssued(t *testing.T) {
	RewardsIssuedTotal.Reset()
	PointsIssuedTotal.Reset()

	RecordRewardIssued("manager", 30)
	RecordRewardIssued("manager", 20)
	RecordRewardIssued("admin", 100)

	if got := testutil.ToFloat64(RewardsIssuedTotal.WithLabelValues("manager")); got != 2 {
		t.Errorf("Expected manager rewards = 2, got %f", got)
	}
	if got := testutil.ToFloat64(PointsIssuedTotal.WithLabelValues("manager")); got != 50 {
		t.Errorf("Expected manager points = 50, got %f", got)
	}
	if got := testutil.ToFloat64(PointsIssuedTotal.WithLabelValues("admin")); got != 100 {
		t.Errorf("Expected admin points = 100, got %f", got)
	}
}

func TestRecordRedemptionRequested(t *testing.T) {
	before := testutil.ToFloat64(RedemptionsRequestedTotal)

	RecordRedemptionRequested(80)
	RecordRedemptionRequested(40)

	if got := testutil.ToFloat64(RedemptionsRequestedTotal) - before; got != 2 {
		t.Errorf("Expected 2 new redemption requests, got %f", got)
	}
}

func TestRecordRedemptionResolved(t *testing.T) {
	RedemptionsResolvedTotal.Reset()

	RecordRedemptionResolved("approved")
	RecordRedemptionResolved("declined")
	RecordRedemptionResolved("approved")

	if got := testutil.ToFloat64(RedemptionsResolvedTotal.WithLabelValues("approved")); got != 2 {
		t.Errorf("Expected approved = 2, got %f", got)
	}
	if got := testutil.ToFloat64(RedemptionsResolvedTotal.WithLabelValues("declined")); got != 1 {
		t.Errorf("Expected declined = 1, got %f", got)
	}
}

func TestRecordLedgerRejection(t *testing.T) {
	LedgerRejectionsTotal.Reset()

	RecordLedgerRejection("issue_reward", "insufficient_points")
	RecordLedgerRejection("allocate", "insufficient_budget")

	if got := testutil.ToFloat64(LedgerRejectionsTotal.WithLabelValues("issue_reward", "insufficient_points")); got != 1 {
		t.Errorf("Expected issue_reward rejections = 1, got %f", got)
	}
}

func TestPushCounters(t *testing.T) {
	PushNotificationsFailedTotal.Reset()
	before := testutil.ToFloat64(PushNotificationsSentTotal)

	RecordPushSent()
	RecordPushFailed("expired")
	RecordPushFailed("expired")

	if got := testutil.ToFloat64(PushNotificationsSentTotal) - before; got != 1 {
		t.Errorf("Expected 1 push sent, got %f", got)
	}
	if got := testutil.ToFloat64(PushNotificationsFailedTotal.WithLabelValues("expired")); got != 2 {
		t.Errorf("Expected 2 expired failures, got %f", got)
	}
}

func TestSchedulerMetrics(t *testing.T) {
	SchedulerJobsRunTotal.Reset()

	RecordSchedulerJobRun("success")
	SetSchedulerPendingRedemptions(4)
	SetSchedulerLastRun()
	ObserveSchedulerJobDuration(0.2)

	if got := testutil.ToFloat64(SchedulerJobsRunTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("Expected 1 successful run, got %f", got)
	}
	if got := testutil.ToFloat64(SchedulerPendingRedemptions); got != 4 {
		t.Errorf("Expected 4 pending redemptions, got %f", got)
	}
	if got := testutil.ToFloat64(SchedulerLastRunTimestamp); got <= 0 {
		t.Errorf("Expected last run timestamp to be set, got %f", got)
	}
}

func TestMetricsRegistration(t *testing.T) {
	metrics := []prometheus.Collector{
		PointsAllocatedTotal,
		RewardsIssuedTotal,
		PointsIssuedTotal,
		RedemptionsRequestedTotal,
		RedemptionsResolvedTotal,
		LedgerRejectionsTotal,
		RedemptionPointsRequested,
		PushNotificationsSentTotal,
		PushNotificationsFailedTotal,
		SchedulerJobsRunTotal,
		SchedulerRemindersSentTotal,
		SchedulerPendingRedemptions,
		SchedulerLastRunTimestamp,
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		SchedulerJobDurationSeconds,
	}

	for i, metric := range metrics {
		if metric == nil {
			t.Errorf("Metric %d is nil", i)
		}
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("GET", "/api/posts/feed", 200, 0.01)
	RecordHTTPRequest("GET", "/api/posts/feed", 200, 0.02)
	RecordHTTPRequest("POST", "/api/rewards/issue", 422, 0.01)

	if got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/posts/feed", "200")); got != 2 {
		t.Errorf("Expected 2 feed requests, got %f", got)
	}
	if got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/rewards/issue", "422")); got != 1 {
		t.Errorf("Expected 1 rejected issue request, got %f", got)
	}
}
