package handler

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/testutil"
)

func TestCreateAndListTasks(t *testing.T) {
	api, engine, _ := setupTestAPI(t)

	w := perform(t, api.CreateTask, http.MethodPost, "/api/tasks", map[string]any{
		"title":              "File taxes",
		"bucket":             "urgent",
		"estimated_duration": 30,
		"tags":               []string{"money", "money"},
	})
	expectStatus(t, w, http.StatusCreated)

	var created db.Task
	decode(t, w, &created)
	if created.ID == 0 || created.Source != db.SourceManual || len(created.Tags) != 1 {
		t.Fatalf("unexpected task %+v", created)
	}

	testutil.NewTask("Sketch").InBucket(db.BucketCreative).Create(t, engine.DB)

	w = perform(t, api.ListTasks, http.MethodGet, "/api/tasks?bucket=urgent,admin&completed=false", nil)
	expectStatus(t, w, http.StatusOK)
	var tasks []db.Task
	decode(t, w, &tasks)
	if len(tasks) != 1 || tasks[0].ID != created.ID {
		t.Fatalf("expected only the urgent task, got %+v", tasks)
	}

	w = perform(t, api.ListTasks, http.MethodGet, "/api/tasks?completed=maybe", nil)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestCreateTaskValidation(t *testing.T) {
	api, _, _ := setupTestAPI(t)

	w := perform(t, api.CreateTask, http.MethodPost, "/api/tasks", map[string]any{"title": "  "})
	expectStatus(t, w, http.StatusBadRequest)
	var body map[string]string
	decode(t, w, &body)
	if body["field"] != "title" {
		t.Fatalf("expected title field error, got %v", body)
	}

	w = perform(t, api.CreateTask, http.MethodPost, "/api/tasks", "{not json")
	expectStatus(t, w, http.StatusBadRequest)
}

func TestUpdateTaskSparse(t *testing.T) {
	api, engine, _ := setupTestAPI(t)
	task := testutil.NewTask("Write report").InBucket(db.BucketAdmin).WithMinutes(40).WithDopamine(2).Create(t, engine.DB)
	id := strconv.Itoa(int(task.ID))

	w := perform(t, api.UpdateTask, http.MethodPut, "/api/tasks/"+id, `{"estimated_duration":null,"is_completed":true}`, "id", id)
	expectStatus(t, w, http.StatusOK)

	var updated db.Task
	decode(t, w, &updated)
	if updated.EstimatedDuration != nil || !updated.IsCompleted || updated.CompletedAt == nil {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if updated.DopamineScore == nil || *updated.DopamineScore != 2 || updated.Bucket != db.BucketAdmin {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	w = perform(t, api.UpdateTask, http.MethodPut, "/api/tasks/"+id, `{}`, "id", id)
	expectStatus(t, w, http.StatusBadRequest)

	w = perform(t, api.UpdateTask, http.MethodPut, "/api/tasks/999", `{"title":"x"}`, "id", "999")
	expectStatus(t, w, http.StatusNotFound)

	w = perform(t, api.UpdateTask, http.MethodPut, "/api/tasks/abc", `{"title":"x"}`, "id", "abc")
	expectStatus(t, w, http.StatusBadRequest)
}

func TestDeleteAndReorderTasks(t *testing.T) {
	api, engine, _ := setupTestAPI(t)
	a := testutil.NewTask("A").Create(t, engine.DB)
	b := testutil.NewTask("B").Create(t, engine.DB)

	w := perform(t, api.ReorderTasks, http.MethodPost, "/api/tasks/reorder", map[string]any{
		"tasks": []map[string]any{
			{"id": a.ID, "sort_order": 2, "bucket": "admin"},
			{"id": b.ID, "sort_order": 1, "bucket": "admin"},
		},
	})
	expectStatus(t, w, http.StatusOK)

	w = perform(t, api.GetTask, http.MethodGet, "/api/tasks/x", nil, "id", strconv.Itoa(int(a.ID)))
	expectStatus(t, w, http.StatusOK)
	var got db.Task
	decode(t, w, &got)
	if got.Bucket != db.BucketAdmin || got.SortOrder != 2 {
		t.Fatalf("reorder not applied: %+v", got)
	}

	id := strconv.Itoa(int(b.ID))
	w = perform(t, api.DeleteTask, http.MethodDelete, "/api/tasks/"+id, nil, "id", id)
	expectStatus(t, w, http.StatusOK)
	w = perform(t, api.DeleteTask, http.MethodDelete, "/api/tasks/"+id, nil, "id", id)
	expectStatus(t, w, http.StatusNotFound)
}

func TestStoreFailureMapsTo503(t *testing.T) {
	api, engine, _ := setupTestAPI(t)
	sqlDB, err := engine.DB.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.Close()

	w := perform(t, api.ListTasks, http.MethodGet, "/api/tasks", nil)
	expectStatus(t, w, http.StatusServiceUnavailable)

	w = perform(t, api.Health, http.MethodGet, "/api/health", nil)
	expectStatus(t, w, http.StatusServiceUnavailable)
}
