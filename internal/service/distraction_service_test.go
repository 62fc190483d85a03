package service

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/events"
	"github.com/kaizenflow/internal/testutil"
)

func TestCaptureDistractionAsTask(t *testing.T) {
	gdb, _, bus, clock := newSprintFixture(t)
	svc := NewDistractionService(gdb, bus)
	svc.SetClock(clock.Now)

	result, err := svc.Capture(context.Background(), CaptureInput{
		Source:        db.DistractionSources[0],
		Description:   "call mom",
		CaptureAsTask: true,
	})
	if err != nil {
		t.Fatalf("Capture returned error: %v", err)
	}

	var tasks []db.Task
	gdb.Find(&tasks)
	if len(tasks) != 1 {
		t.Fatalf("expected exactly one task, got %d", len(tasks))
	}
	task := tasks[0]
	if task.Title != "call mom" || task.Bucket != db.BucketUnsorted || task.Source != db.SourceParkingLot || task.PriorityType != db.PriorityTurtle {
		t.Fatalf("unexpected captured task %+v", task)
	}
	if result.CapturedTask == nil || result.CapturedTask.ID != task.ID {
		t.Fatalf("result should reference the captured task, got %+v", result.CapturedTask)
	}
	if result.Encouragement == "" || !slices.Contains(encouragements, result.Encouragement) {
		t.Fatalf("unexpected encouragement %q", result.Encouragement)
	}
	if result.FocusReminder != "" {
		t.Fatalf("no sprint is active, reminder should be empty, got %q", result.FocusReminder)
	}

	var distraction db.Distraction
	if err := gdb.First(&distraction, result.DistractionID).Error; err != nil {
		t.Fatalf("reload distraction: %v", err)
	}
	if distraction.CapturedTaskID == nil || *distraction.CapturedTaskID != task.ID || distraction.SprintID != nil {
		t.Fatalf("unexpected distraction links %+v", distraction)
	}

	want := []string{events.TaskCreated, events.DistractionLogged}
	if got := bus.Types(); !equalTypes(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCaptureDuringSprintRemindsOfNextTask(t *testing.T) {
	gdb, sprints, bus, clock := newSprintFixture(t)
	svc := NewDistractionService(gdb, bus)
	svc.SetClock(clock.Now)
	svc.SetPicker(func(int) int { return 2 })
	ctx := context.Background()

	testutil.NewTask("Second").InBucket(db.BucketAdmin).WithSortOrder(2).Create(t, gdb)
	testutil.NewTask("First").InBucket(db.BucketAdmin).WithSortOrder(1).Create(t, gdb)
	sprint, err := sprints.Start(ctx, StartSprintInput{Bucket: db.BucketAdmin})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	result, err := svc.Capture(ctx, CaptureInput{Source: "thought"})
	if err != nil {
		t.Fatalf("Capture returned error: %v", err)
	}
	if result.FocusReminder != "You were working on: First" {
		t.Fatalf("unexpected reminder %q", result.FocusReminder)
	}
	if result.Encouragement != encouragements[2] {
		t.Fatalf("expected picked encouragement, got %q", result.Encouragement)
	}
	if result.CapturedTask != nil {
		t.Fatal("no task should be captured")
	}

	var distraction db.Distraction
	gdb.First(&distraction, result.DistractionID)
	if distraction.SprintID == nil || *distraction.SprintID != sprint.ID {
		t.Fatalf("distraction should link the active sprint, got %+v", distraction)
	}
}

func TestCaptureReminderFallsBackToBucket(t *testing.T) {
	gdb, sprints, bus, clock := newSprintFixture(t)
	svc := NewDistractionService(gdb, bus)
	svc.SetClock(clock.Now)
	ctx := context.Background()

	if _, err := sprints.Start(ctx, StartSprintInput{Bucket: db.BucketCreative}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	result, err := svc.Capture(ctx, CaptureInput{Source: "person", CaptureAsTask: true})
	if err != nil {
		t.Fatalf("Capture returned error: %v", err)
	}
	if result.CapturedTask.Title != capturedTaskPlaceholder {
		t.Fatalf("expected placeholder title, got %q", result.CapturedTask.Title)
	}
	// the captured task lands in unsorted, so creative has nothing left
	if result.FocusReminder != "You were in creative sprint" {
		t.Fatalf("unexpected reminder %q", result.FocusReminder)
	}
}

func TestCaptureRejectsUnknownSource(t *testing.T) {
	gdb, _, bus, _ := newSprintFixture(t)
	svc := NewDistractionService(gdb, bus)

	var validation *ValidationError
	if _, err := svc.Capture(context.Background(), CaptureInput{Source: "cat", CaptureAsTask: true}); !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var count int64
	gdb.Model(&db.Task{}).Count(&count)
	if count != 0 || len(bus.Types()) != 0 {
		t.Fatal("rejected capture must not write or publish")
	}
}
