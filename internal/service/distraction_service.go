package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/events"
	"gorm.io/gorm"
)

const capturedTaskPlaceholder = "Captured thought"

var encouragements = []string{
	"Good catch! Now back to focus.",
	"Noted! Your brain will thank you later.",
	"Distraction captured. You've got this!",
	"Parking lot updated. Stay on track!",
	"Smart move logging that. Back to work!",
}

// DistractionService records interruptions and optionally parks them as tasks.
type DistractionService struct {
	db   *gorm.DB
	bus  events.Publisher
	now  func() time.Time
	pick func(n int) int
}

// CaptureInput describes one interruption.
type CaptureInput struct {
	Source        string
	Description   string
	CaptureAsTask bool
	TaskTitle     string
}

// CaptureResult is returned after the distraction is stored.
type CaptureResult struct {
	DistractionID uint     `json:"distraction_id"`
	CapturedTask  *db.Task `json:"captured_task"`
	Encouragement string   `json:"encouragement"`
	FocusReminder string   `json:"focus_reminder"`
}

func NewDistractionService(gdb *gorm.DB, bus events.Publisher) *DistractionService {
	return &DistractionService{db: gdb, bus: bus, now: time.Now, pick: rand.IntN}
}

func (s *DistractionService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// SetPicker replaces the random encouragement index source.
func (s *DistractionService) SetPicker(pick func(n int) int) {
	if pick != nil {
		s.pick = pick
	}
}

// Capture stores the distraction, linked to the active sprint when there is
// one, and creates a parking-lot task when asked to.
func (s *DistractionService) Capture(ctx context.Context, input CaptureInput) (*CaptureResult, error) {
	source := strings.TrimSpace(input.Source)
	if !slices.Contains(db.DistractionSources, source) {
		return nil, invalidField("source", "must be one of %s", strings.Join(db.DistractionSources, ", "))
	}
	description := strings.TrimSpace(input.Description)

	now := s.now().UTC()
	result := &CaptureResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sprint, err := activeSprint(tx)
		if err != nil {
			return err
		}

		distraction := db.Distraction{
			Source:      source,
			Description: description,
			CreatedAt:   now,
		}
		if sprint != nil {
			distraction.SprintID = &sprint.ID
		}

		if input.CaptureAsTask {
			title := strings.TrimSpace(input.TaskTitle)
			if title == "" {
				title = description
			}
			if title == "" {
				title = capturedTaskPlaceholder
			}
			task := db.Task{
				Title:        title,
				Bucket:       db.BucketUnsorted,
				Source:       db.SourceParkingLot,
				PriorityType: db.PriorityTurtle,
				Tags:         []string{},
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.Create(&task).Error; err != nil {
				return err
			}
			result.CapturedTask = &task
			distraction.CapturedTaskID = &task.ID
		}

		if err := tx.Create(&distraction).Error; err != nil {
			return err
		}
		result.DistractionID = distraction.ID

		if sprint != nil {
			result.FocusReminder, err = focusReminder(tx, sprint.Bucket)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("log distraction", err)
	}

	result.Encouragement = encouragements[s.pick(len(encouragements))]

	if s.bus != nil {
		if result.CapturedTask != nil {
			s.bus.Publish(events.TaskCreated, result.CapturedTask)
		}
		s.bus.Publish(events.DistractionLogged, map[string]any{
			"source":   source,
			"has_task": result.CapturedTask != nil,
		})
	}
	return result, nil
}

func countSprintDistractions(tx *gorm.DB, sprintID uint) (int, error) {
	var count int64
	if err := tx.Model(&db.Distraction{}).Where("sprint_id = ?", sprintID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func focusReminder(tx *gorm.DB, bucket string) (string, error) {
	var next []db.Task
	if err := tx.Where("bucket = ? AND is_completed = ?", bucket, false).
		Order("sort_order ASC").Order("id ASC").
		Limit(1).Find(&next).Error; err != nil {
		return "", err
	}
	if len(next) == 0 {
		return fmt.Sprintf("You were in %s sprint", bucket), nil
	}
	return fmt.Sprintf("You were working on: %s", next[0].Title), nil
}
