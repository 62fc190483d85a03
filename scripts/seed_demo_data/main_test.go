package main

import (
	"context"
	"testing"

	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/service"
	"github.com/kaizenflow/internal/testutil"
)

func TestSeedDemoDataIsIdempotent(t *testing.T) {
	engine := service.NewEngine(testutil.OpenDB(t), nil)
	ctx := context.Background()

	created, err := createDemoTasks(ctx, engine)
	if err != nil {
		t.Fatalf("createDemoTasks: %v", err)
	}
	if len(created) != len(demoTasks) {
		t.Fatalf("expected %d tasks, got %d", len(demoTasks), len(created))
	}
	if err := createDemoSprint(ctx, engine, created); err != nil {
		t.Fatalf("createDemoSprint: %v", err)
	}

	again, err := createDemoTasks(ctx, engine)
	if err != nil {
		t.Fatalf("second createDemoTasks: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected second run to skip, got %d tasks", len(again))
	}

	var logs []db.KaizenLog
	if err := engine.DB.Find(&logs).Error; err != nil {
		t.Fatalf("failed to list kaizen logs: %v", err)
	}
	if len(logs) != 1 || logs[0].SprintID == nil || logs[0].Mood != db.MoodFlow {
		t.Fatalf("unexpected kaizen logs: %+v", logs)
	}

	status, err := engine.Sprints.Active(ctx)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if status != nil {
		t.Fatalf("expected no active sprint after seeding, got %+v", status)
	}
}
