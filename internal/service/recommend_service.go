package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kaizenflow/internal/db"
	"gorm.io/gorm"
)

// Recommended actions.
const (
	ActionContinueSprint   = "continue_sprint"
	ActionTakeBreak        = "take_break"
	ActionReviewParkingLot = "review_parking_lot"
	ActionStartSprint      = "start_sprint"
)

const (
	recommendationPoolSize = 5
	maxSuggestedTasks      = 3
)

// RecommendationService answers "what should I do next".
type RecommendationService struct {
	db      *gorm.DB
	sprints *SprintService
	now     func() time.Time
}

// RecommendInput optionally overrides the hour-derived energy.
type RecommendInput struct {
	Energy           string
	AvailableMinutes *int
}

// SuggestedTask is one task proposed for the next sprint.
type SuggestedTask struct {
	ID                uint   `json:"id"`
	Title             string `json:"title"`
	EstimatedDuration int    `json:"estimated_duration"`
	Reason            string `json:"reason"`
}

// SprintSuggestion is the sprint the engine proposes to start.
type SprintSuggestion struct {
	SuggestedBucket       string          `json:"suggested_bucket"`
	SuggestedTasks        []SuggestedTask `json:"suggested_tasks"`
	EstimatedTotalMinutes int             `json:"estimated_total_minutes"`
}

// Recommendation is the engine's next-step advice.
type Recommendation struct {
	RecommendedAction  string            `json:"recommended_action"`
	Reasoning          string            `json:"reasoning"`
	SuggestedEnergy    string            `json:"suggested_energy"`
	AvailableMinutes   *int              `json:"available_minutes,omitempty"`
	CurrentSprint      *SprintStatus     `json:"current_sprint,omitempty"`
	IfStartSprint      *SprintSuggestion `json:"if_start_sprint,omitempty"`
	AlternativeActions []string          `json:"alternative_actions"`
}

func NewRecommendationService(gdb *gorm.DB, sprints *SprintService) *RecommendationService {
	return &RecommendationService{db: gdb, sprints: sprints, now: time.Now}
}

func (s *RecommendationService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Recommend applies, in order: active sprint, hard stop hour, empty pool,
// then the best bucket among the top pending tasks.
func (s *RecommendationService) Recommend(ctx context.Context, input RecommendInput) (*Recommendation, error) {
	energy := strings.TrimSpace(input.Energy)
	if energy != "" && !slices.Contains(db.EnergyLevels, energy) {
		return nil, invalidField("energy", "must be one of %s", strings.Join(db.EnergyLevels, ", "))
	}
	if input.AvailableMinutes != nil && *input.AvailableMinutes < 0 {
		return nil, invalidField("available_minutes", "must not be negative")
	}

	hour := s.now().Hour()
	if energy == "" {
		energy = EnergyForHour(hour)
	}
	rec := &Recommendation{SuggestedEnergy: energy, AvailableMinutes: input.AvailableMinutes}

	active, err := s.sprints.Active(ctx)
	if err != nil {
		return nil, err
	}
	if active != nil {
		rec.RecommendedAction = ActionContinueSprint
		rec.Reasoning = fmt.Sprintf("You're already in a sprint! Stay focused on %s.", active.Bucket)
		rec.CurrentSprint = active
		rec.AlternativeActions = []string{"Take a quick 5-minute break", "Log a distraction if needed"}
		return rec, nil
	}

	if hour >= GuardRailHardStopHour {
		rec.RecommendedAction = ActionTakeBreak
		rec.Reasoning = "It's past 9 PM. Time to wind down for better sleep!"
		rec.AlternativeActions = []string{"Review tomorrow's plan", "Do a quick brain dump for peace of mind"}
		return rec, nil
	}

	var tasks []db.Task
	if err := s.db.WithContext(ctx).Where("is_completed = ?", false).Find(&tasks).Error; err != nil {
		return nil, storeErr("recommend", err)
	}
	sortForRecommendation(tasks, energy)
	if len(tasks) > recommendationPoolSize {
		tasks = tasks[:recommendationPoolSize]
	}

	if len(tasks) == 0 {
		rec.RecommendedAction = ActionReviewParkingLot
		rec.Reasoning = "No pending tasks! Check your parking lot for captured ideas."
		rec.AlternativeActions = []string{"Plan tomorrow", "Take a well-deserved break"}
		return rec, nil
	}

	bucket := dominantBucket(tasks)
	suggestion := &SprintSuggestion{SuggestedBucket: bucket, SuggestedTasks: []SuggestedTask{}}
	for _, t := range tasks {
		if t.Bucket != bucket {
			continue
		}
		if len(suggestion.SuggestedTasks) == maxSuggestedTasks {
			break
		}
		suggestion.SuggestedTasks = append(suggestion.SuggestedTasks, SuggestedTask{
			ID:                t.ID,
			Title:             t.Title,
			EstimatedDuration: t.Minutes(),
			Reason:            taskReason(t),
		})
		suggestion.EstimatedTotalMinutes += t.Minutes()
	}

	rec.RecommendedAction = ActionStartSprint
	rec.IfStartSprint = suggestion
	rec.Reasoning = fmt.Sprintf("Based on your energy level (%s) and pending tasks.", energy)
	rec.AlternativeActions = []string{"Pick a different bucket", "Take a 5-minute break first"}
	return rec, nil
}

// dominantBucket returns the most frequent bucket; ties go to the bucket
// seen first.
func dominantBucket(tasks []db.Task) string {
	counts := map[string]int{}
	var order []string
	for _, t := range tasks {
		if counts[t.Bucket] == 0 {
			order = append(order, t.Bucket)
		}
		counts[t.Bucket]++
	}
	best := order[0]
	for _, bucket := range order[1:] {
		if counts[bucket] > counts[best] {
			best = bucket
		}
	}
	return best
}

func taskReason(t db.Task) string {
	switch {
	case t.PriorityType == db.PriorityFire:
		return "Urgent priority"
	case t.PriorityType == db.PriorityBolt:
		return "Quick win to build momentum"
	case t.FrictionLevel == db.EnergyLow:
		return "Easy to start"
	case t.DopamineScore != nil && *t.DopamineScore >= 2:
		return "Engaging task"
	case t.Bucket == db.BucketUrgent:
		return "Time-sensitive"
	default:
		return "Matches your energy level"
	}
}
