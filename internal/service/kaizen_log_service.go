package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/events"
	"gorm.io/gorm"
)

const (
	defaultKaizenLogLimit = 50
	maxKaizenLogLimit     = 500
	kaizenTrendDays       = 7
)

var moodScores = map[string]int{db.MoodFlow: 3, db.MoodOkay: 2, db.MoodDrained: 1}

// KaizenLogService stores post-sprint reflections.
type KaizenLogService struct {
	db  *gorm.DB
	bus events.Publisher
	now func() time.Time
}

// KaizenLogInput is a new reflection. A nil DistractionCount is filled from
// the distractions logged against the sprint.
type KaizenLogInput struct {
	SprintID         *uint    `json:"sprint_id"`
	Bucket           string   `json:"bucket"`
	DurationSeconds  int      `json:"duration_seconds"`
	EstimatedSeconds *int     `json:"estimated_seconds"`
	Mood             string   `json:"mood"`
	Notes            string   `json:"notes"`
	TasksCompleted   []string `json:"tasks_completed"`
	DistractionCount *int     `json:"distraction_count"`
}

// KaizenLogView adds the linked sprint and rendered notes.
type KaizenLogView struct {
	db.KaizenLog
	SprintBucket  string     `json:"sprint_bucket,omitempty"`
	SprintStarted *time.Time `json:"sprint_started,omitempty"`
	NotesHTML     string     `json:"notes_html"`
}

type MoodStat struct {
	Mood         string `json:"mood"`
	Count        int    `json:"count"`
	TotalSeconds int    `json:"total_seconds"`
}

type BucketStat struct {
	Bucket       string  `json:"bucket"`
	Sessions     int     `json:"sessions"`
	AvgDuration  float64 `json:"avg_duration"`
	FlowCount    int     `json:"flow_count"`
	OkayCount    int     `json:"okay_count"`
	DrainedCount int     `json:"drained_count"`
}

type TrendPoint struct {
	Date         string  `json:"date"`
	Sessions     int     `json:"sessions"`
	TotalSeconds int     `json:"total_seconds"`
	AvgMoodScore float64 `json:"avg_mood_score"`
}

// KaizenStats aggregates all reflections.
type KaizenStats struct {
	MoodStats   []MoodStat   `json:"mood_stats"`
	BucketStats []BucketStat `json:"bucket_stats"`
	RecentTrend []TrendPoint `json:"recent_trend"`
}

func NewKaizenLogService(gdb *gorm.DB, bus events.Publisher) *KaizenLogService {
	return &KaizenLogService{db: gdb, bus: bus, now: time.Now}
}

func (s *KaizenLogService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create stores the log and ticks focus_session, plus sprint_complete when
// the log belongs to a sprint.
func (s *KaizenLogService) Create(ctx context.Context, input KaizenLogInput) (*KaizenLogView, error) {
	bucket := strings.TrimSpace(input.Bucket)
	if bucket == "" && input.SprintID == nil {
		return nil, invalidField("bucket", "is required")
	}
	if bucket != "" && !slices.Contains(db.Buckets, bucket) {
		return nil, invalidField("bucket", "must be one of %s", strings.Join(db.Buckets, ", "))
	}
	mood := strings.TrimSpace(input.Mood)
	if !slices.Contains(db.Moods, mood) {
		return nil, invalidField("mood", "must be one of %s", strings.Join(db.Moods, ", "))
	}
	if input.DurationSeconds < 0 {
		return nil, invalidField("duration_seconds", "must not be negative")
	}
	if input.EstimatedSeconds != nil && *input.EstimatedSeconds < 0 {
		return nil, invalidField("estimated_seconds", "must not be negative")
	}
	if input.DistractionCount != nil && *input.DistractionCount < 0 {
		return nil, invalidField("distraction_count", "must not be negative")
	}

	now := s.now()
	view := &KaizenLogView{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sprint *db.Sprint
		if input.SprintID != nil {
			var sprints []db.Sprint
			if err := tx.Where("id = ?", *input.SprintID).Limit(1).Find(&sprints).Error; err != nil {
				return err
			}
			if len(sprints) == 0 {
				return ErrSprintNotFound
			}
			sprint = &sprints[0]
			if bucket == "" {
				bucket = sprint.Bucket
			}
		}

		distractions := 0
		switch {
		case input.DistractionCount != nil:
			distractions = *input.DistractionCount
		case sprint != nil:
			var err error
			if distractions, err = countSprintDistractions(tx, sprint.ID); err != nil {
				return err
			}
		}

		completed := input.TasksCompleted
		if completed == nil {
			completed = []string{}
		}
		entry := db.KaizenLog{
			SprintID:         input.SprintID,
			Bucket:           bucket,
			DurationSeconds:  input.DurationSeconds,
			EstimatedSeconds: input.EstimatedSeconds,
			Mood:             mood,
			Notes:            strings.TrimSpace(input.Notes),
			TasksCompleted:   completed,
			DistractionCount: distractions,
			CreatedAt:        now.UTC(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		today := db.DateKey(now)
		if sprint != nil {
			if _, err := touchStreak(tx, db.StreakSprintComplete, today); err != nil {
				return err
			}
		}
		if _, err := touchStreak(tx, db.StreakFocusSession, today); err != nil {
			return err
		}

		*view = newKaizenLogView(entry, sprint)
		return nil
	})
	if err != nil {
		return nil, storeErr("create kaizen log", err)
	}

	if s.bus != nil {
		s.bus.Publish(events.KaizenLogCreated, view)
	}
	return view, nil
}

// List returns the newest logs with their sprint context.
func (s *KaizenLogService) List(ctx context.Context, limit int) ([]KaizenLogView, error) {
	if limit <= 0 {
		limit = defaultKaizenLogLimit
	}
	limit = min(limit, maxKaizenLogLimit)

	gdb := s.db.WithContext(ctx)
	var logs []db.KaizenLog
	if err := gdb.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, storeErr("list kaizen logs", err)
	}

	var sprintIDs []uint
	for _, entry := range logs {
		if entry.SprintID != nil {
			sprintIDs = append(sprintIDs, *entry.SprintID)
		}
	}
	sprints := map[uint]*db.Sprint{}
	if len(sprintIDs) > 0 {
		var rows []db.Sprint
		if err := gdb.Where("id IN ?", sprintIDs).Find(&rows).Error; err != nil {
			return nil, storeErr("list kaizen logs", err)
		}
		for i := range rows {
			sprints[rows[i].ID] = &rows[i]
		}
	}

	views := make([]KaizenLogView, 0, len(logs))
	for _, entry := range logs {
		var sprint *db.Sprint
		if entry.SprintID != nil {
			sprint = sprints[*entry.SprintID]
		}
		views = append(views, newKaizenLogView(entry, sprint))
	}
	return views, nil
}

func (s *KaizenLogService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.KaizenLog{}, id)
	if result.Error != nil {
		return storeErr("delete kaizen log", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrKaizenLogNotFound
	}

	if s.bus != nil {
		s.bus.Publish(events.KaizenLogDeleted, map[string]any{"id": id})
	}
	return nil
}

// Stats reports the mood distribution, per-bucket performance and a daily
// trend over the last seven days.
func (s *KaizenLogService) Stats(ctx context.Context) (*KaizenStats, error) {
	gdb := s.db.WithContext(ctx)
	stats := &KaizenStats{}

	if err := gdb.Model(&db.KaizenLog{}).
		Select("mood, COUNT(*) AS count, COALESCE(SUM(duration_seconds), 0) AS total_seconds").
		Group("mood").Order("mood ASC").
		Scan(&stats.MoodStats).Error; err != nil {
		return nil, storeErr("kaizen stats", err)
	}

	if err := gdb.Model(&db.KaizenLog{}).
		Select("bucket, COUNT(*) AS sessions, AVG(duration_seconds) AS avg_duration, " +
			"SUM(CASE WHEN mood = 'flow' THEN 1 ELSE 0 END) AS flow_count, " +
			"SUM(CASE WHEN mood = 'okay' THEN 1 ELSE 0 END) AS okay_count, " +
			"SUM(CASE WHEN mood = 'drained' THEN 1 ELSE 0 END) AS drained_count").
		Group("bucket").Order("bucket ASC").
		Scan(&stats.BucketStats).Error; err != nil {
		return nil, storeErr("kaizen stats", err)
	}

	now := s.now()
	start := startOfDay(now).AddDate(0, 0, -kaizenTrendDays)
	var recent []db.KaizenLog
	if err := gdb.Where("created_at >= ?", start.UTC()).Order("created_at ASC").Find(&recent).Error; err != nil {
		return nil, storeErr("kaizen stats", err)
	}
	stats.RecentTrend = dailyTrend(recent, now.Location())

	if stats.MoodStats == nil {
		stats.MoodStats = []MoodStat{}
	}
	if stats.BucketStats == nil {
		stats.BucketStats = []BucketStat{}
	}
	return stats, nil
}

func newKaizenLogView(entry db.KaizenLog, sprint *db.Sprint) KaizenLogView {
	view := KaizenLogView{KaizenLog: entry, NotesHTML: RenderNotes(entry.Notes)}
	if sprint != nil {
		started := sprint.StartedAt
		view.SprintBucket = sprint.Bucket
		view.SprintStarted = &started
	}
	return view
}

func dailyTrend(logs []db.KaizenLog, loc *time.Location) []TrendPoint {
	points := []TrendPoint{}
	index := map[string]int{}
	moodTotals := map[string]int{}
	for _, entry := range logs {
		date := db.DateKey(entry.CreatedAt.In(loc))
		i, ok := index[date]
		if !ok {
			i = len(points)
			index[date] = i
			points = append(points, TrendPoint{Date: date})
		}
		points[i].Sessions++
		points[i].TotalSeconds += entry.DurationSeconds
		moodTotals[date] += moodScores[entry.Mood]
	}
	for i := range points {
		points[i].AvgMoodScore = roundTo(float64(moodTotals[points[i].Date])/float64(points[i].Sessions), 2)
	}
	return points
}
