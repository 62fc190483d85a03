package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kaizenflow/internal/db"
	"gorm.io/gorm"
)

const parkingLotReviewThreshold = 5

// StateService assembles the snapshot an agent reads before acting.
type StateService struct {
	db      *gorm.DB
	sprints *SprintService
	streaks *StreakService
	now     func() time.Time
}

type CurrentSprintState struct {
	ID             uint      `json:"id"`
	Bucket         string    `json:"bucket"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	StartedAt      time.Time `json:"started_at"`
	Goal           *string   `json:"goal"`
}

type EnergyProfile struct {
	CurrentHour     int     `json:"current_hour"`
	SuggestedEnergy string  `json:"suggested_energy"`
	IsGuardRailTime bool    `json:"is_guard_rail_time"`
	GuardRailType   *string `json:"guard_rail_type"`
}

type TodaySummary struct {
	TasksCompleted   int     `json:"tasks_completed"`
	TasksRemaining   int     `json:"tasks_remaining"`
	TimeSpentSeconds int     `json:"time_spent_seconds"`
	DominantMood     *string `json:"dominant_mood"`
	SprintsCount     int     `json:"sprints_count"`
}

type HighlightTask struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type PendingTasks struct {
	ByBucket        map[string]int `json:"by_bucket"`
	UrgentCount     int            `json:"urgent_count"`
	DeadlineCount   int            `json:"deadline_count"`
	ParkingLotCount int            `json:"parking_lot_count"`
	DailyHighlight  *HighlightTask `json:"daily_highlight"`
}

// State is the full engine snapshot.
type State struct {
	CurrentSprint   *CurrentSprintState `json:"current_sprint"`
	EnergyProfile   EnergyProfile       `json:"energy_profile"`
	TodaySummary    TodaySummary        `json:"today_summary"`
	Streaks         map[string]int      `json:"streaks"`
	PendingTasks    PendingTasks        `json:"pending_tasks"`
	Recommendations []string            `json:"recommendations"`
}

func NewStateService(gdb *gorm.DB, sprints *SprintService, streaks *StreakService) *StateService {
	return &StateService{db: gdb, sprints: sprints, streaks: streaks, now: time.Now}
}

func (s *StateService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *StateService) State(ctx context.Context) (*State, error) {
	now := s.now()
	hour := now.Hour()
	gdb := s.db.WithContext(ctx)
	state := &State{}

	active, err := s.sprints.Active(ctx)
	if err != nil {
		return nil, err
	}
	if active != nil {
		current := &CurrentSprintState{
			ID:             active.ID,
			Bucket:         active.Bucket,
			ElapsedSeconds: active.ElapsedSeconds,
			StartedAt:      active.StartedAt,
		}
		if active.Goal != "" {
			goal := active.Goal
			current.Goal = &goal
		}
		state.CurrentSprint = current
	}

	state.EnergyProfile = EnergyProfile{
		CurrentHour:     hour,
		SuggestedEnergy: EnergyForHour(hour),
		IsGuardRailTime: hour >= GuardRailEmergencyHour,
	}
	if rail := GuardRailFor(hour); rail != "" {
		state.EnergyProfile.GuardRailType = &rail
	}

	start, end := dayBounds(now)
	var logs []db.KaizenLog
	if err := gdb.Where("created_at >= ? AND created_at < ?", start, end).Find(&logs).Error; err != nil {
		return nil, storeErr("get state", err)
	}
	state.TodaySummary.SprintsCount = len(logs)
	for _, entry := range logs {
		state.TodaySummary.TimeSpentSeconds += entry.DurationSeconds
	}
	state.TodaySummary.DominantMood = dominantMood(logs)

	var completed int64
	if err := gdb.Model(&db.Task{}).
		Where("is_completed = ? AND completed_at >= ? AND completed_at < ?", true, start, end).
		Count(&completed).Error; err != nil {
		return nil, storeErr("get state", err)
	}
	state.TodaySummary.TasksCompleted = int(completed)

	var pending []db.Task
	if err := gdb.Where("is_completed = ?", false).Order("id ASC").Find(&pending).Error; err != nil {
		return nil, storeErr("get state", err)
	}
	state.TodaySummary.TasksRemaining = len(pending)
	state.PendingTasks = pendingTasks(pending)

	if state.Streaks, err = s.streaks.Counts(ctx); err != nil {
		return nil, err
	}

	state.Recommendations = stateRecommendations(state, hour)
	return state, nil
}

func pendingTasks(tasks []db.Task) PendingTasks {
	pending := PendingTasks{ByBucket: map[string]int{}}
	for _, bucket := range db.Buckets {
		pending.ByBucket[bucket] = 0
	}
	for _, t := range tasks {
		pending.ByBucket[t.Bucket]++
		if t.Source == db.SourceParkingLot {
			pending.ParkingLotCount++
		}
		if t.IsDailyHighlight && pending.DailyHighlight == nil {
			pending.DailyHighlight = &HighlightTask{ID: t.ID, Title: t.Title}
		}
	}
	pending.UrgentCount = pending.ByBucket[db.BucketUrgent]
	pending.DeadlineCount = pending.ByBucket[db.BucketDeadline]
	return pending
}

// dominantMood picks the most logged mood; ties follow flow, okay, drained.
func dominantMood(logs []db.KaizenLog) *string {
	counts := map[string]int{}
	for _, entry := range logs {
		counts[entry.Mood]++
	}
	var best string
	for _, mood := range db.Moods {
		if counts[mood] > counts[best] {
			best = mood
		}
	}
	if best == "" {
		return nil
	}
	return &best
}

func stateRecommendations(state *State, hour int) []string {
	var recs []string
	switch {
	case state.CurrentSprint != nil:
		recs = append(recs, "Stay focused on your current sprint!")
	case state.PendingTasks.UrgentCount > 0:
		recs = append(recs, fmt.Sprintf("You have %d urgent task(s). Consider starting there.", state.PendingTasks.UrgentCount))
	case state.TodaySummary.SprintsCount == 0:
		recs = append(recs, "Start your day with a quick win - pick something easy!")
	}

	if state.PendingTasks.ParkingLotCount > parkingLotReviewThreshold {
		recs = append(recs, "Your parking lot is filling up. Review and process some items.")
	}
	if mood := state.TodaySummary.DominantMood; mood != nil && *mood == db.MoodDrained {
		recs = append(recs, "You seem tired. Take a break or switch to low-energy tasks.")
	}
	if state.EnergyProfile.IsGuardRailTime && hour < GuardRailHardStopHour {
		recs = append(recs, "Guard rail: Start wrapping up for the day.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Looking good! Keep up the momentum.")
	}
	return recs
}
