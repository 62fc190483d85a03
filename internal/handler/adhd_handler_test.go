package handler

import (
	"net/http"
	"testing"

	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/service"
	"github.com/kaizenflow/internal/testutil"
)

func TestStateEndpoint(t *testing.T) {
	api, engine, _ := setupTestAPI(t)
	testutil.NewTask("Call bank").InBucket(db.BucketUrgent).Create(t, engine.DB)

	w := perform(t, api.State, http.MethodGet, "/api/adhd/state", nil)
	expectStatus(t, w, http.StatusOK)

	var state service.State
	decode(t, w, &state)
	if state.PendingTasks.UrgentCount != 1 || state.EnergyProfile.CurrentHour != 10 {
		t.Fatalf("unexpected state %+v", state)
	}
	if len(state.Recommendations) == 0 || state.Recommendations[0] != "You have 1 urgent task(s). Consider starting there." {
		t.Fatalf("unexpected recommendations %v", state.Recommendations)
	}
}

func TestPlanDayEndpoint(t *testing.T) {
	api, engine, _ := setupTestAPI(t)
	testutil.NewTask("Pay invoice").InBucket(db.BucketUrgent).WithMinutes(20).Create(t, engine.DB)

	w := perform(t, api.PlanDay, http.MethodPost, "/api/adhd/plan-day", map[string]any{
		"goals":          []string{"a", "b", "c", "d"},
		"energy_profile": "high",
	})
	expectStatus(t, w, http.StatusBadRequest)

	w = perform(t, api.PlanDay, http.MethodPost, "/api/adhd/plan-day", map[string]any{
		"goals":             []string{"ship"},
		"available_minutes": 120,
		"energy_profile":    "high",
	})
	expectStatus(t, w, http.StatusOK)

	var plan service.DayPlan
	decode(t, w, &plan)
	if plan.PlanDate != "2025-03-10" || plan.TotalPlannedMinutes != 20 || plan.BufferMinutes != 100 {
		t.Fatalf("unexpected plan %+v", plan)
	}
}

func TestLogDistractionEndpoint(t *testing.T) {
	api, _, bus := setupTestAPI(t)
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	w := perform(t, api.LogDistraction, http.MethodPost, "/api/adhd/distraction", map[string]any{
		"source":          "thought",
		"description":     "renew passport",
		"capture_as_task": true,
	})
	expectStatus(t, w, http.StatusOK)

	var result service.CaptureResult
	decode(t, w, &result)
	if result.CapturedTask == nil || result.CapturedTask.Title != "renew passport" || result.Encouragement == "" {
		t.Fatalf("unexpected capture result %+v", result)
	}

	first, second := <-sub.Events(), <-sub.Events()
	if first.Type != "task_created" || second.Type != "distraction_logged" {
		t.Fatalf("unexpected events %s, %s", first.Type, second.Type)
	}

	w = perform(t, api.LogDistraction, http.MethodPost, "/api/adhd/distraction", map[string]any{"source": "cat"})
	expectStatus(t, w, http.StatusBadRequest)
}

func TestSummaryAndRecommendationEndpoints(t *testing.T) {
	api, _, _ := setupTestAPI(t)

	w := perform(t, api.Summary, http.MethodGet, "/api/adhd/summary?period=week", nil)
	expectStatus(t, w, http.StatusOK)
	var summary service.Summary
	decode(t, w, &summary)
	if summary.Period != "week" {
		t.Fatalf("unexpected summary period %q", summary.Period)
	}

	w = perform(t, api.Summary, http.MethodGet, "/api/adhd/summary?period=decade", nil)
	expectStatus(t, w, http.StatusBadRequest)

	w = perform(t, api.FocusRecommendation, http.MethodGet, "/api/adhd/focus-recommendation?energy=low", nil)
	expectStatus(t, w, http.StatusOK)
	var rec service.Recommendation
	decode(t, w, &rec)
	if rec.RecommendedAction != service.ActionReviewParkingLot {
		t.Fatalf("expected review_parking_lot on an empty pool, got %+v", rec)
	}

	w = perform(t, api.FocusRecommendation, http.MethodGet, "/api/adhd/focus-recommendation?energy=wired", nil)
	expectStatus(t, w, http.StatusBadRequest)
	w = perform(t, api.FocusRecommendation, http.MethodGet, "/api/adhd/focus-recommendation?available_minutes=lots", nil)
	expectStatus(t, w, http.StatusBadRequest)
}
