package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/events"
	"github.com/kaizenflow/internal/handler"
	"github.com/kaizenflow/internal/mcptools"
	"github.com/kaizenflow/internal/notify"
	"github.com/kaizenflow/internal/router"
	"github.com/kaizenflow/internal/service"
	"github.com/kaizenflow/internal/testutil"
)

type e2eSuite struct {
	handler   http.Handler
	forwarder *notify.Forwarder
	hook      *webhookRecorder
}

// webhookRecorder collects the event names posted to it.
type webhookRecorder struct {
	mu     sync.Mutex
	events []string
	auth   []string
}

func (w *webhookRecorder) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	var payload notify.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		rw.WriteHeader(http.StatusBadRequest)
		return
	}
	w.mu.Lock()
	w.events = append(w.events, payload.Event)
	w.auth = append(w.auth, r.Header.Get("Authorization"))
	w.mu.Unlock()
	rw.WriteHeader(http.StatusNoContent)
}

func (w *webhookRecorder) seen() map[string]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	counts := make(map[string]int, len(w.events))
	for _, name := range w.events {
		counts[name]++
	}
	return counts
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hook := &webhookRecorder{}
	hookServer := httptest.NewServer(hook)
	t.Cleanup(hookServer.Close)

	bus := events.NewBus()
	notifier := notify.NewWebhookNotifier(hookServer.URL, "e2e-token", time.Second)
	forwarder := notify.NewForwarder(bus, notifier, time.Second)
	engine := service.NewEngine(testutil.OpenDB(t), forwarder)

	mcpServer := mcptools.NewServer(engine)
	r := router.SetupRouter(handler.NewAPI(engine, bus), mcptools.NewHTTPHandler(mcpServer))

	return &e2eSuite{handler: r, forwarder: forwarder, hook: hook}
}

func TestE2E_FocusDay(t *testing.T) {
	s := newE2ESuite(t)

	var deep db.Task
	s.mustJSON(t, http.MethodPost, "/api/tasks", map[string]any{
		"title":              "Write design doc",
		"bucket":             db.BucketCreative,
		"estimated_duration": 50,
		"priority_type":      db.PriorityBolt,
		"energy_level":       db.EnergyHigh,
	}, http.StatusCreated, &deep)

	var quick db.Task
	s.mustJSON(t, http.MethodPost, "/api/tasks", map[string]any{
		"title":              "Pay invoice",
		"bucket":             db.BucketAdmin,
		"estimated_duration": 10,
		"priority_type":      db.PriorityFire,
	}, http.StatusCreated, &quick)

	var tasks []db.Task
	s.mustJSON(t, http.MethodGet, "/api/tasks?bucket=creative,admin", nil, http.StatusOK, &tasks)
	if len(tasks) != 2 {
		t.Fatalf("expected 2 open tasks, got %d", len(tasks))
	}

	var plan service.DayPlan
	s.mustJSON(t, http.MethodPost, "/api/adhd/plan-day", map[string]any{
		"available_minutes": 240,
		"energy_profile":    db.EnergyHigh,
		"must_do_task_ids":  []uint{quick.ID},
	}, http.StatusOK, &plan)
	if !planIncludes(plan, quick.ID) {
		t.Fatalf("expected must-do task %d in plan, got %+v", quick.ID, plan.ScheduledBlocks)
	}

	var sprint db.Sprint
	s.mustJSON(t, http.MethodPost, "/api/sprints/start", map[string]any{
		"bucket":   db.BucketCreative,
		"task_ids": []uint{deep.ID},
		"goal":     "first draft",
	}, http.StatusCreated, &sprint)
	if !sprint.IsActive || sprint.EstimatedTotalMinutes == nil || *sprint.EstimatedTotalMinutes != 50 {
		t.Fatalf("unexpected sprint: %+v", sprint)
	}

	var active service.SprintStatus
	s.mustJSON(t, http.MethodGet, "/api/sprints/active", nil, http.StatusOK, &active)
	if active.ID != sprint.ID {
		t.Fatalf("expected active sprint %d, got %d", sprint.ID, active.ID)
	}

	var captured service.CaptureResult
	s.mustJSON(t, http.MethodPost, "/api/adhd/distraction", map[string]any{
		"source":          "thought",
		"description":     "book dentist",
		"capture_as_task": true,
	}, http.StatusOK, &captured)
	if captured.CapturedTask == nil || captured.CapturedTask.Source != db.SourceParkingLot {
		t.Fatalf("expected parking lot capture, got %+v", captured.CapturedTask)
	}

	var stopped db.Sprint
	s.mustJSON(t, http.MethodPost, "/api/sprints/stop", nil, http.StatusOK, &stopped)
	if stopped.IsActive || stopped.EndedAt == nil {
		t.Fatalf("expected ended sprint, got %+v", stopped)
	}

	resp := s.mustRequest(t, http.MethodGet, "/api/sprints/active", nil)
	if body := readBody(t, resp); resp.StatusCode != http.StatusOK || body != "null" {
		t.Fatalf("expected null active sprint, got %d %q", resp.StatusCode, body)
	}

	resp = s.mustRequest(t, http.MethodPost, "/api/sprints/stop", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on second stop, got %d", resp.StatusCode)
	}

	var entry service.KaizenLogView
	s.mustJSON(t, http.MethodPost, "/api/kaizen-logs", map[string]any{
		"sprint_id":         stopped.ID,
		"bucket":            db.BucketCreative,
		"duration_seconds":  1500,
		"estimated_seconds": 3000,
		"mood":              db.MoodFlow,
		"notes":             "**Outline** done",
		"tasks_completed":   []string{"Write design doc"},
	}, http.StatusCreated, &entry)
	if entry.DistractionCount != 1 {
		t.Fatalf("expected 1 distraction counted, got %d", entry.DistractionCount)
	}

	var summary service.Summary
	s.mustJSON(t, http.MethodGet, "/api/adhd/summary?period=today", nil, http.StatusOK, &summary)
	if summary.Productivity.SprintsCount != 1 || summary.Productivity.FlowSessions != 1 {
		t.Fatalf("unexpected productivity: %+v", summary.Productivity)
	}

	var state service.State
	s.mustJSON(t, http.MethodGet, "/api/adhd/state", nil, http.StatusOK, &state)
	if state.CurrentSprint != nil {
		t.Fatalf("expected no current sprint, got %+v", state.CurrentSprint)
	}

	s.mustJSON(t, http.MethodDelete, "/api/tasks/"+strconv.FormatUint(uint64(quick.ID), 10), nil, http.StatusOK, nil)

	s.forwarder.Wait()
	seen := s.hook.seen()
	for _, name := range []string{events.TaskCreated, events.SprintStarted, events.SprintStopped, events.KaizenLogCreated} {
		if seen[name] == 0 {
			t.Fatalf("webhook never received %q: %v", name, seen)
		}
	}
	for _, auth := range s.hook.auth {
		if auth != "Bearer e2e-token" {
			t.Fatalf("unexpected authorization header %q", auth)
		}
	}
}

func TestE2E_ValidationAndMissing(t *testing.T) {
	s := newE2ESuite(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"blank title", http.MethodPost, "/api/tasks", map[string]any{"title": " "}, http.StatusBadRequest},
		{"bad bucket", http.MethodPost, "/api/tasks", map[string]any{"title": "x", "bucket": "someday"}, http.StatusBadRequest},
		{"missing task", http.MethodGet, "/api/tasks/999", nil, http.StatusNotFound},
		{"bad id", http.MethodGet, "/api/tasks/abc", nil, http.StatusBadRequest},
		{"bad period", http.MethodGet, "/api/adhd/summary?period=year", nil, http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/nope", nil, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := s.mustRequest(t, tc.method, tc.path, tc.body)
			body := readBody(t, resp)
			if resp.StatusCode != tc.status {
				t.Fatalf("expected status %d, got %d: %s", tc.status, resp.StatusCode, body)
			}
		})
	}
}

func (s *e2eSuite) mustRequest(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w.Result()
}

func (s *e2eSuite) mustJSON(t *testing.T, method, path string, body any, status int, dst any) {
	t.Helper()
	resp := s.mustRequest(t, method, path, body)
	raw := readBody(t, resp)
	if resp.StatusCode != status {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, path, status, resp.StatusCode, raw)
	}
	if dst == nil {
		return
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		t.Fatalf("%s %s: failed to decode %q: %v", method, path, raw, err)
	}
}

func planIncludes(plan service.DayPlan, id uint) bool {
	for _, block := range plan.ScheduledBlocks {
		for _, task := range block.Tasks {
			if task.ID == id {
				return true
			}
		}
	}
	return false
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(raw)
}
