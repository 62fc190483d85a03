package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/events"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxPlanGoals          = 3
	manyUrgentTasks       = 5
	morningBlockCapacity  = 3
	middayBlockCapacity   = 3
	eveningBlockCapacity  = 2
	morningSlot           = "09:00-12:00"
	middaySlot            = "14:00-16:00"
	eveningSlot           = "16:00-18:00"
	manyUrgentTaskWarning = "You have many urgent tasks. Focus on top 3 first."
)

var planningTips = []string{
	"Start with a quick win (5-15 min task) to build momentum",
	"Take breaks every 45-60 minutes",
	"Use the parking lot for random thoughts",
}

// PlannerService builds the day's time blocks and stores them as the
// DailyPlan for today.
type PlannerService struct {
	db  *gorm.DB
	bus events.Publisher
	now func() time.Time
}

// PlanDayInput is the morning planning request.
type PlanDayInput struct {
	Goals            []string
	AvailableMinutes int
	EnergyProfile    string
	MustDoTaskIDs    []uint
}

// PlannedTask is a task placed in a time block.
type PlannedTask struct {
	ID                uint   `json:"id"`
	Title             string `json:"title"`
	EstimatedDuration int    `json:"estimated_duration"`
	PriorityType      string `json:"priority_type"`
}

// TimeBlock is one slot of the day's schedule.
type TimeBlock struct {
	TimeSlot     string        `json:"time_slot"`
	Bucket       string        `json:"bucket"`
	Tasks        []PlannedTask `json:"tasks"`
	TotalMinutes int           `json:"total_minutes"`
}

// DayPlan is the computed schedule returned to the caller.
type DayPlan struct {
	PlanID              uint        `json:"plan_id"`
	PlanDate            string      `json:"plan_date"`
	ScheduledBlocks     []TimeBlock `json:"scheduled_blocks"`
	TotalPlannedMinutes int         `json:"total_planned_minutes"`
	BufferMinutes       int         `json:"buffer_minutes"`
	Warnings            []string    `json:"warnings"`
	Tips                []string    `json:"tips"`
}

func NewPlannerService(gdb *gorm.DB, bus events.Publisher) *PlannerService {
	return &PlannerService{db: gdb, bus: bus, now: time.Now}
}

func (s *PlannerService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// PlanDay schedules incomplete tasks into blocks, upserts today's plan and
// ticks the daily_plan and morning_activation streaks in one transaction.
func (s *PlannerService) PlanDay(ctx context.Context, input PlanDayInput) (*DayPlan, error) {
	goals, err := normalizeGoals(input.Goals)
	if err != nil {
		return nil, err
	}
	available := input.AvailableMinutes
	if available < 0 {
		return nil, invalidField("available_minutes", "must not be negative")
	}
	if available == 0 {
		available = DefaultAvailableMinutes
	}
	energy := strings.TrimSpace(input.EnergyProfile)
	if energy == "" {
		energy = db.EnergyMedium
	}
	if !slices.Contains(db.EnergyLevels, energy) {
		return nil, invalidField("energy_profile", "must be one of %s", strings.Join(db.EnergyLevels, ", "))
	}

	now := s.now()
	today := db.DateKey(now)
	plan := DayPlan{PlanDate: today, Tips: slices.Clone(planningTips), Warnings: []string{}}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tasks []db.Task
		if err := tx.Where("is_completed = ?", false).Find(&tasks).Error; err != nil {
			return err
		}
		sortForPlan(tasks)

		plan.ScheduledBlocks = buildTimeBlocks(tasks, energy, input.MustDoTaskIDs)
		var planned []uint
		for _, block := range plan.ScheduledBlocks {
			plan.TotalPlannedMinutes += block.TotalMinutes
			for _, t := range block.Tasks {
				planned = append(planned, t.ID)
			}
		}
		plan.BufferMinutes = max(0, available-plan.TotalPlannedMinutes)

		if plan.TotalPlannedMinutes > available {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf(
				"Over-scheduled by %d minutes. Consider removing some tasks.",
				plan.TotalPlannedMinutes-available,
			))
		}
		urgent := 0
		for _, t := range tasks {
			if t.Bucket == db.BucketUrgent {
				urgent++
			}
		}
		if urgent > manyUrgentTasks {
			plan.Warnings = append(plan.Warnings, manyUrgentTaskWarning)
		}

		if planned == nil {
			planned = []uint{}
		}
		record := db.DailyPlan{
			PlanDate:              today,
			MorningEnergy:         energy,
			TotalAvailableMinutes: available,
			PlannedTaskIDs:        planned,
			Goals:                 goals,
			CreatedAt:             now.UTC(),
			UpdatedAt:             now.UTC(),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "plan_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"morning_energy",
				"total_available_minutes",
				"planned_task_ids",
				"goals",
				"updated_at",
			}),
		}).Create(&record).Error; err != nil {
			return err
		}

		var stored db.DailyPlan
		if err := tx.Where("plan_date = ?", today).First(&stored).Error; err != nil {
			return err
		}
		plan.PlanID = stored.ID

		for _, streakType := range []string{db.StreakDailyPlan, db.StreakMorningActivation} {
			if _, err := touchStreak(tx, streakType, today); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("plan day", err)
	}

	if s.bus != nil {
		s.bus.Publish(events.DailyPlanCreated, map[string]any{
			"plan_date":    today,
			"blocks_count": len(plan.ScheduledBlocks),
		})
	}
	return &plan, nil
}

// Today returns the stored plan for the current date.
func (s *PlannerService) Today(ctx context.Context) (*db.DailyPlan, error) {
	var plans []db.DailyPlan
	if err := s.db.WithContext(ctx).Where("plan_date = ?", db.DateKey(s.now())).Limit(1).Find(&plans).Error; err != nil {
		return nil, storeErr("get daily plan", err)
	}
	if len(plans) == 0 {
		return nil, ErrDailyPlanNotFound
	}
	return &plans[0], nil
}

func normalizeGoals(goals []string) ([]string, error) {
	if len(goals) > maxPlanGoals {
		return nil, invalidField("goals", "at most %d goals are allowed", maxPlanGoals)
	}
	out := make([]string, 0, len(goals))
	for _, goal := range goals {
		if goal = strings.TrimSpace(goal); goal != "" {
			out = append(out, goal)
		}
	}
	return out, nil
}

// buildTimeBlocks expects tasks already in planning order. Empty blocks are
// left out.
func buildTimeBlocks(tasks []db.Task, energyProfile string, mustDo []uint) []TimeBlock {
	var mustDoTasks, others []db.Task
	for _, t := range tasks {
		if slices.Contains(mustDo, t.ID) {
			mustDoTasks = append(mustDoTasks, t)
		} else {
			others = append(others, t)
		}
	}

	placed := map[uint]bool{}
	take := func(candidates []db.Task, limit int, match func(db.Task) bool) []db.Task {
		var picked []db.Task
		for _, t := range candidates {
			if len(picked) == limit {
				break
			}
			if placed[t.ID] || !match(t) {
				continue
			}
			picked = append(picked, t)
		}
		for _, t := range picked {
			placed[t.ID] = true
		}
		return picked
	}

	blocks := []TimeBlock{}

	morningPool := append(slices.Clone(mustDoTasks), filterTasks(others, func(t db.Task) bool {
		return t.EnergyLevel == db.EnergyHigh || t.Bucket == db.BucketUrgent || t.PriorityType == db.PriorityFire
	})...)
	morning := take(morningPool, morningBlockCapacity, func(db.Task) bool { return true })
	if len(morning) > 0 {
		blocks = append(blocks, newTimeBlock(morningSlot, morning[0].Bucket, morning))
	}

	midday := take(others, middayBlockCapacity, func(t db.Task) bool {
		return t.Bucket == db.BucketAdmin || t.EnergyLevel == db.EnergyMedium
	})
	if len(midday) > 0 {
		blocks = append(blocks, newTimeBlock(middaySlot, db.BucketAdmin, midday))
	}

	if energyProfile != db.EnergyLow {
		evening := take(others, eveningBlockCapacity, func(t db.Task) bool {
			return t.Bucket == db.BucketCreative || t.EnergyLevel == db.EnergyLow || t.FrictionLevel == db.EnergyLow
		})
		if len(evening) > 0 {
			blocks = append(blocks, newTimeBlock(eveningSlot, db.BucketCreative, evening))
		}
	}
	return blocks
}

func newTimeBlock(slot, bucket string, tasks []db.Task) TimeBlock {
	block := TimeBlock{TimeSlot: slot, Bucket: bucket, Tasks: make([]PlannedTask, 0, len(tasks))}
	for _, t := range tasks {
		block.Tasks = append(block.Tasks, PlannedTask{
			ID:                t.ID,
			Title:             t.Title,
			EstimatedDuration: t.Minutes(),
			PriorityType:      t.PriorityType,
		})
		block.TotalMinutes += t.Minutes()
	}
	return block
}

func filterTasks(tasks []db.Task, keep func(db.Task) bool) []db.Task {
	var out []db.Task
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
