package main

import (
	"context"
	"fmt"
	"log"

	"github.com/kaizenflow/internal/config"
	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/service"
)

// Demo data generator for local development.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("database init failed: ", err)
	}

	fmt.Println("Seeding demo data...")
	engine := service.NewEngine(db.DB, nil)
	ctx := context.Background()

	created, err := createDemoTasks(ctx, engine)
	if err != nil {
		log.Fatal("seeding tasks failed: ", err)
	}
	if err := createDemoSprint(ctx, engine, created); err != nil {
		log.Fatal("seeding sprint failed: ", err)
	}

	fmt.Println("Demo data ready.")
	fmt.Printf("Tasks: %d across %d buckets\n", len(created), len(db.Buckets)-1)
}

type demoTask struct {
	title    string
	bucket   string
	minutes  int
	priority string
	energy   string
}

var demoTasks = []demoTask{
	{"Reply to landlord", db.BucketUrgent, 10, db.PriorityFire, db.EnergyLow},
	{"Submit tax form", db.BucketDeadline, 45, db.PriorityFire, db.EnergyMedium},
	{"Sort inbox", db.BucketAdmin, 15, db.PriorityTurtle, db.EnergyLow},
	{"Book dentist", db.BucketAdmin, 5, db.PriorityTurtle, db.EnergyLow},
	{"Sketch app onboarding", db.BucketCreative, 60, db.PriorityBolt, db.EnergyHigh},
	{"Write blog draft", db.BucketCreative, 40, db.PriorityBolt, db.EnergyHigh},
}

// createDemoTasks skips seeding when tasks already exist.
func createDemoTasks(ctx context.Context, engine *service.Engine) ([]db.Task, error) {
	var count int64
	if err := engine.DB.WithContext(ctx).Model(&db.Task{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		fmt.Println("Tasks already exist, skipping")
		return nil, nil
	}

	created := make([]db.Task, 0, len(demoTasks))
	for _, item := range demoTasks {
		minutes := item.minutes
		task, err := engine.Tasks.Create(ctx, service.TaskInput{
			Title:             item.title,
			Bucket:            item.bucket,
			EstimatedDuration: &minutes,
			PriorityType:      item.priority,
			EnergyLevel:       item.energy,
		})
		if err != nil {
			return nil, fmt.Errorf("create %q: %w", item.title, err)
		}
		created = append(created, *task)
	}
	return created, nil
}

// createDemoSprint runs one short creative sprint and reflects on it.
func createDemoSprint(ctx context.Context, engine *service.Engine, tasks []db.Task) error {
	var ids []uint
	for _, task := range tasks {
		if task.Bucket == db.BucketCreative {
			ids = append(ids, task.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	if _, err := engine.Sprints.Start(ctx, service.StartSprintInput{
		Bucket:  db.BucketCreative,
		TaskIDs: ids,
		Goal:    "warm up",
	}); err != nil {
		return err
	}
	sprint, err := engine.Sprints.Stop(ctx)
	if err != nil {
		return err
	}

	estimated := 60 * 60
	_, err = engine.KaizenLogs.Create(ctx, service.KaizenLogInput{
		SprintID:         &sprint.ID,
		Bucket:           db.BucketCreative,
		DurationSeconds:  25 * 60,
		EstimatedSeconds: &estimated,
		Mood:             db.MoodFlow,
		Notes:            "Started with the *smallest* step.",
		TasksCompleted:   []string{},
	})
	return err
}
