package service

import (
	"context"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/events"
	"gorm.io/gorm"
)

const (
	maxAutoSelectedTasks = 5
	defaultSprintHistory = 20
	maxSprintHistory     = 200
)

// DefaultStructuredTarget is the target length of a structured sprint.
const DefaultStructuredTarget = 45

// SprintService is the only writer of sprint active state. Start and Stop
// are serialized by mu and each runs in one transaction.
type SprintService struct {
	db  *gorm.DB
	bus events.Publisher
	now func() time.Time
	mu  sync.Mutex
}

// StartSprintInput configures a new sprint. Empty TaskIDs auto-selects.
type StartSprintInput struct {
	Bucket        string
	TaskIDs       []uint
	TargetMinutes *int
	Goal          string
}

// SelectedTask is a planned task as reported back to the caller.
type SelectedTask struct {
	ID                uint   `json:"id"`
	Title             string `json:"title"`
	EstimatedDuration *int   `json:"estimated_duration"`
}

// SprintStart is the newly active sprint plus the tasks picked for it.
type SprintStart struct {
	db.Sprint
	SelectedTasks []SelectedTask `json:"selected_tasks"`
}

// SprintStatus is the active sprint with elapsed time computed at read time.
type SprintStatus struct {
	db.Sprint
	ElapsedSeconds int `json:"elapsed_seconds"`
}

func NewSprintService(gdb *gorm.DB, bus events.Publisher) *SprintService {
	return &SprintService{db: gdb, bus: bus, now: time.Now}
}

func (s *SprintService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Start ends every active sprint and then creates the new one as active.
func (s *SprintService) Start(ctx context.Context, input StartSprintInput) (*SprintStart, error) {
	bucket := strings.TrimSpace(input.Bucket)
	if !slices.Contains(db.Buckets, bucket) {
		return nil, invalidField("bucket", "must be one of %s", strings.Join(db.Buckets, ", "))
	}
	if input.TargetMinutes != nil && *input.TargetMinutes <= 0 {
		return nil, invalidField("target_minutes", "must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	var (
		result   SprintStart
		replaced []db.Sprint
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks, err := selectSprintTasks(tx, bucket, input.TaskIDs)
		if err != nil {
			return err
		}

		replaced, err = endActiveSprints(tx, now)
		if err != nil {
			return err
		}

		estimated := totalMinutes(tasks)
		sprint := db.Sprint{
			Bucket:                bucket,
			StartedAt:             now,
			IsActive:              true,
			TargetMinutes:         input.TargetMinutes,
			Goal:                  strings.TrimSpace(input.Goal),
			EstimatedTotalMinutes: &estimated,
			PlannedTaskIDs:        taskIDs(tasks),
			CreatedAt:             now,
		}
		if err := tx.Create(&sprint).Error; err != nil {
			return err
		}

		result.Sprint = sprint
		result.SelectedTasks = make([]SelectedTask, 0, len(tasks))
		for _, t := range tasks {
			result.SelectedTasks = append(result.SelectedTasks, SelectedTask{
				ID:                t.ID,
				Title:             t.Title,
				EstimatedDuration: t.EstimatedDuration,
			})
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("start sprint", err)
	}

	for _, ended := range replaced {
		s.publish(events.SprintStopped, ended)
	}
	s.publish(events.SprintStarted, result)
	return &result, nil
}

// Stop ends the active sprint. It returns ErrNoActiveSprint, and writes
// nothing, when none is active.
func (s *SprintService) Stop(ctx context.Context) (*db.Sprint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	var ended []db.Sprint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		ended, err = endActiveSprints(tx, now)
		if err != nil {
			return err
		}
		if len(ended) == 0 {
			return ErrNoActiveSprint
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("stop sprint", err)
	}

	for _, sprint := range ended {
		s.publish(events.SprintStopped, sprint)
	}
	return &ended[0], nil
}

// Active returns the running sprint or nil.
func (s *SprintService) Active(ctx context.Context) (*SprintStatus, error) {
	sprint, err := activeSprint(s.db.WithContext(ctx))
	if err != nil {
		return nil, storeErr("get active sprint", err)
	}
	if sprint == nil {
		return nil, nil
	}

	elapsed := s.now().Sub(sprint.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return &SprintStatus{Sprint: *sprint, ElapsedSeconds: int(elapsed / time.Second)}, nil
}

// History lists ended sprints, newest first.
func (s *SprintService) History(ctx context.Context, limit int) ([]db.Sprint, error) {
	if limit <= 0 {
		limit = defaultSprintHistory
	}
	limit = min(limit, maxSprintHistory)

	var sprints []db.Sprint
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", false).
		Order("started_at DESC").
		Limit(limit).
		Find(&sprints).Error; err != nil {
		return nil, storeErr("list sprint history", err)
	}
	return sprints, nil
}

func (s *SprintService) publish(eventType string, data any) {
	if s.bus != nil {
		s.bus.Publish(eventType, data)
	}
}

func activeSprint(gdb *gorm.DB) (*db.Sprint, error) {
	var sprints []db.Sprint
	if err := gdb.Where("is_active = ?", true).Order("started_at DESC").Limit(1).Find(&sprints).Error; err != nil {
		return nil, err
	}
	if len(sprints) == 0 {
		return nil, nil
	}
	return &sprints[0], nil
}

func endActiveSprints(tx *gorm.DB, now time.Time) ([]db.Sprint, error) {
	var active []db.Sprint
	if err := tx.Where("is_active = ?", true).Find(&active).Error; err != nil {
		return nil, err
	}

	for i := range active {
		sprint := &active[i]
		endedAt := now
		if endedAt.Before(sprint.StartedAt) {
			endedAt = sprint.StartedAt
		}
		duration := int(math.Round(endedAt.Sub(sprint.StartedAt).Seconds()))

		if err := tx.Model(&db.Sprint{}).
			Where("id = ? AND is_active = ?", sprint.ID, true).
			Updates(map[string]any{
				"is_active":        false,
				"ended_at":         endedAt,
				"duration_seconds": duration,
				"updated_at":       now,
			}).Error; err != nil {
			return nil, err
		}

		sprint.IsActive = false
		sprint.EndedAt = &endedAt
		sprint.DurationSeconds = duration
		sprint.UpdatedAt = now
	}
	return active, nil
}

// selectSprintTasks keeps explicit ids in the given order, or picks up to five
// incomplete tasks of the bucket.
func selectSprintTasks(tx *gorm.DB, bucket string, ids []uint) ([]db.Task, error) {
	if len(ids) == 0 {
		var tasks []db.Task
		if err := tx.Where("bucket = ? AND is_completed = ?", bucket, false).Find(&tasks).Error; err != nil {
			return nil, err
		}
		sortForSprint(tasks)
		if len(tasks) > maxAutoSelectedTasks {
			tasks = tasks[:maxAutoSelectedTasks]
		}
		return tasks, nil
	}

	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(unique, id) {
			unique = append(unique, id)
		}
	}

	var found []db.Task
	if err := tx.Where("id IN ?", unique).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]db.Task, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}

	tasks := make([]db.Task, 0, len(unique))
	for _, id := range unique {
		t, ok := byID[id]
		if !ok {
			return nil, ErrTaskNotFound
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
