package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/service"
	"github.com/kaizenflow/internal/testutil"
)

func TestSprintLifecycleOverHTTP(t *testing.T) {
	api, engine, _ := setupTestAPI(t)
	testutil.NewTask("Reply to landlord").InBucket(db.BucketUrgent).WithMinutes(15).Create(t, engine.DB)

	w := perform(t, api.ActiveSprint, http.MethodGet, "/api/sprints/active", nil)
	expectStatus(t, w, http.StatusOK)
	if strings.TrimSpace(w.Body.String()) != "null" {
		t.Fatalf("expected null without active sprint, got %s", w.Body.String())
	}

	w = perform(t, api.StopSprint, http.MethodPost, "/api/sprints/stop", nil)
	expectStatus(t, w, http.StatusConflict)

	w = perform(t, api.StartSprint, http.MethodPost, "/api/sprints/start", map[string]any{"bucket": "urgent"})
	expectStatus(t, w, http.StatusCreated)
	var started service.SprintStart
	decode(t, w, &started)
	if !started.IsActive || len(started.SelectedTasks) != 1 || started.TargetMinutes != nil {
		t.Fatalf("unexpected sprint %+v", started)
	}

	w = perform(t, api.ActiveSprint, http.MethodGet, "/api/sprints/active", nil)
	expectStatus(t, w, http.StatusOK)
	var active service.SprintStatus
	decode(t, w, &active)
	if active.ID != started.ID {
		t.Fatalf("expected sprint %d active, got %+v", started.ID, active)
	}

	w = perform(t, api.StopSprint, http.MethodPost, "/api/sprints/stop", nil)
	expectStatus(t, w, http.StatusOK)

	w = perform(t, api.SprintHistory, http.MethodGet, "/api/sprints/history?limit=5", nil)
	expectStatus(t, w, http.StatusOK)
	var history []db.Sprint
	decode(t, w, &history)
	if len(history) != 1 || history[0].IsActive {
		t.Fatalf("unexpected history %+v", history)
	}

	w = perform(t, api.StartSprint, http.MethodPost, "/api/sprints/start", map[string]any{"bucket": "nap"})
	expectStatus(t, w, http.StatusBadRequest)
}

func TestStructuredSprintDefaultsTarget(t *testing.T) {
	api, engine, _ := setupTestAPI(t)
	task := testutil.NewTask("Draft chapter").InBucket(db.BucketCreative).Create(t, engine.DB)

	w := perform(t, api.StartStructuredSprint, http.MethodPost, "/api/adhd/sprint/start", map[string]any{
		"bucket":   "creative",
		"task_ids": []uint{task.ID},
		"goal":     "finish outline",
	})
	expectStatus(t, w, http.StatusOK)

	var started service.SprintStart
	decode(t, w, &started)
	if started.TargetMinutes == nil || *started.TargetMinutes != service.DefaultStructuredTarget {
		t.Fatalf("expected 45 minute target, got %v", started.TargetMinutes)
	}
	if started.Goal != "finish outline" || len(started.PlannedTaskIDs) != 1 {
		t.Fatalf("unexpected sprint %+v", started)
	}

	w = perform(t, api.StartStructuredSprint, http.MethodPost, "/api/adhd/sprint/start", map[string]any{
		"bucket":   "creative",
		"task_ids": []uint{404},
	})
	expectStatus(t, w, http.StatusNotFound)
}

func TestKaizenLogEndpoints(t *testing.T) {
	api, _, _ := setupTestAPI(t)

	w := perform(t, api.CreateKaizenLog, http.MethodPost, "/api/kaizen-logs", map[string]any{
		"sprint_id": 12,
		"mood":      "flow",
	})
	expectStatus(t, w, http.StatusNotFound)

	w = perform(t, api.CreateKaizenLog, http.MethodPost, "/api/kaizen-logs", map[string]any{
		"bucket":           "admin",
		"mood":             "okay",
		"duration_seconds": 900,
		"notes":            "_steady_",
	})
	expectStatus(t, w, http.StatusCreated)
	var created service.KaizenLogView
	decode(t, w, &created)
	if !strings.Contains(created.NotesHTML, "<em>steady</em>") {
		t.Fatalf("expected rendered notes, got %q", created.NotesHTML)
	}

	w = perform(t, api.ListKaizenLogs, http.MethodGet, "/api/kaizen-logs", nil)
	expectStatus(t, w, http.StatusOK)
	var logs []service.KaizenLogView
	decode(t, w, &logs)
	if len(logs) != 1 {
		t.Fatalf("expected one log, got %d", len(logs))
	}

	w = perform(t, api.KaizenLogStats, http.MethodGet, "/api/kaizen-logs/stats", nil)
	expectStatus(t, w, http.StatusOK)

	w = perform(t, api.DeleteKaizenLog, http.MethodDelete, "/api/kaizen-logs/99", nil, "id", "99")
	expectStatus(t, w, http.StatusNotFound)
}
