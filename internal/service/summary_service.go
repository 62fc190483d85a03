package service

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/kaizenflow/internal/db"
	"gorm.io/gorm"
)

// Summary periods.
const (
	PeriodToday     = "today"
	PeriodYesterday = "yesterday"
	PeriodWeek      = "week"
	PeriodMonth     = "month"
)

// Periods lists the accepted summary periods.
var Periods = []string{PeriodToday, PeriodYesterday, PeriodWeek, PeriodMonth}

const (
	trendStable       = "stable"
	trendImproving    = "improving"
	trendDeclining    = "declining"
	trendTolerance    = 0.1
	topDistractionCap = 3
)

// SummaryService reports productivity over a period.
type SummaryService struct {
	db  *gorm.DB
	now func() time.Time
}

type Productivity struct {
	TotalFocusTimeSeconds int `json:"total_focus_time_seconds"`
	TotalTasksCompleted   int `json:"total_tasks_completed"`
	SprintsCount          int `json:"sprints_count"`
	FlowSessions          int `json:"flow_sessions"`
	DrainedSessions       int `json:"drained_sessions"`
}

type BucketBreakdown struct {
	Bucket       string `json:"bucket"`
	Count        int    `json:"count"`
	TotalSeconds int    `json:"total_seconds"`
}

type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

type Patterns struct {
	MostProductiveBucket  string        `json:"most_productive_bucket"`
	PeakFocusHour         *int          `json:"peak_focus_hour"`
	AverageSessionLength  int           `json:"average_session_length"`
	DistractionCount      int           `json:"distraction_count"`
	TopDistractionSources []SourceCount `json:"top_distraction_sources"`
}

type EstimationAccuracy struct {
	AverageRatio     float64 `json:"average_ratio"`
	ImprovementTrend string  `json:"improvement_trend"`
}

// Summary is the period report.
type Summary struct {
	Period             string             `json:"period"`
	From               time.Time          `json:"from"`
	To                 time.Time          `json:"to"`
	Productivity       Productivity       `json:"productivity"`
	BucketBreakdown    []BucketBreakdown  `json:"bucket_breakdown"`
	Patterns           Patterns           `json:"patterns"`
	EstimationAccuracy EstimationAccuracy `json:"estimation_accuracy"`
	Insights           []string           `json:"insights"`
	Recommendations    []string           `json:"recommendations"`
}

func NewSummaryService(gdb *gorm.DB) *SummaryService {
	return &SummaryService{db: gdb, now: time.Now}
}

func (s *SummaryService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Summarize aggregates logs, completions and distractions in the period.
// An empty period means today.
func (s *SummaryService) Summarize(ctx context.Context, period string) (*Summary, error) {
	period = strings.TrimSpace(period)
	if period == "" {
		period = PeriodToday
	}
	from, to, err := periodBounds(period, s.now())
	if err != nil {
		return nil, err
	}

	gdb := s.db.WithContext(ctx)
	var logs []db.KaizenLog
	if err := gdb.Where("created_at >= ? AND created_at < ?", from, to).Order("created_at ASC").Find(&logs).Error; err != nil {
		return nil, storeErr("summarize", err)
	}
	var completed int64
	if err := gdb.Model(&db.Task{}).
		Where("is_completed = ? AND completed_at >= ? AND completed_at < ?", true, from, to).
		Count(&completed).Error; err != nil {
		return nil, storeErr("summarize", err)
	}
	var distractions []db.Distraction
	if err := gdb.Where("created_at >= ? AND created_at < ?", from, to).Find(&distractions).Error; err != nil {
		return nil, storeErr("summarize", err)
	}

	summary := &Summary{
		Period:          period,
		From:            from,
		To:              to,
		Insights:        []string{},
		Recommendations: []string{},
	}
	summary.Productivity.TotalTasksCompleted = int(completed)
	summary.Productivity.SprintsCount = len(logs)
	for _, entry := range logs {
		summary.Productivity.TotalFocusTimeSeconds += entry.DurationSeconds
		switch entry.Mood {
		case db.MoodFlow:
			summary.Productivity.FlowSessions++
		case db.MoodDrained:
			summary.Productivity.DrainedSessions++
		}
	}

	summary.BucketBreakdown = bucketBreakdown(logs)
	summary.Patterns = Patterns{
		MostProductiveBucket:  "N/A",
		PeakFocusHour:         peakFocusHour(logs, s.now().Location()),
		DistractionCount:      len(distractions),
		TopDistractionSources: topDistractionSources(distractions),
	}
	if len(summary.BucketBreakdown) > 0 {
		summary.Patterns.MostProductiveBucket = summary.BucketBreakdown[0].Bucket
	}
	if len(logs) > 0 {
		summary.Patterns.AverageSessionLength = int(math.Round(
			float64(summary.Productivity.TotalFocusTimeSeconds) / float64(len(logs)),
		))
	}
	summary.EstimationAccuracy = estimationAccuracy(logs)

	if summary.Productivity.FlowSessions >= 3 {
		summary.Insights = append(summary.Insights, fmt.Sprintf("Great job! You had %d flow sessions.", summary.Productivity.FlowSessions))
	}
	if summary.Productivity.DrainedSessions >= 2 {
		summary.Insights = append(summary.Insights, fmt.Sprintf("You felt drained %d times. Consider more breaks.", summary.Productivity.DrainedSessions))
		summary.Recommendations = append(summary.Recommendations, "Add 10-minute breaks between sessions")
	}
	if len(summary.BucketBreakdown) > 0 {
		summary.Insights = append(summary.Insights, "Most productive bucket: "+summary.Patterns.MostProductiveBucket)
	}
	if summary.EstimationAccuracy.AverageRatio > 1.2 {
		summary.Insights = append(summary.Insights, "You tend to underestimate task duration.")
		summary.Recommendations = append(summary.Recommendations, "Try adding 20% buffer to your estimates")
	}
	return summary, nil
}

// periodBounds returns the UTC [from, to) range for a period.
func periodBounds(period string, now time.Time) (time.Time, time.Time, error) {
	switch period {
	case PeriodToday:
		from, to := dayBounds(now)
		return from, to, nil
	case PeriodYesterday:
		from, to := dayBounds(startOfDay(now).AddDate(0, 0, -1))
		return from, to, nil
	case PeriodWeek:
		return now.AddDate(0, 0, -7).UTC(), now.UTC().Add(time.Second), nil
	case PeriodMonth:
		return now.AddDate(0, 0, -30).UTC(), now.UTC().Add(time.Second), nil
	default:
		return time.Time{}, time.Time{}, invalidField("period", "must be one of %s", strings.Join(Periods, ", "))
	}
}

// bucketBreakdown is ordered by focus time, longest first.
func bucketBreakdown(logs []db.KaizenLog) []BucketBreakdown {
	byBucket := map[string]*BucketBreakdown{}
	for _, entry := range logs {
		row, ok := byBucket[entry.Bucket]
		if !ok {
			row = &BucketBreakdown{Bucket: entry.Bucket}
			byBucket[entry.Bucket] = row
		}
		row.Count++
		row.TotalSeconds += entry.DurationSeconds
	}

	rows := make([]BucketBreakdown, 0, len(byBucket))
	for _, row := range byBucket {
		rows = append(rows, *row)
	}
	slices.SortFunc(rows, func(a, b BucketBreakdown) int {
		return cmp.Or(cmp.Compare(b.TotalSeconds, a.TotalSeconds), cmp.Compare(a.Bucket, b.Bucket))
	})
	return rows
}

// peakFocusHour is the local hour with the most logs; ties go to the earlier
// hour. It is nil without logs.
func peakFocusHour(logs []db.KaizenLog, loc *time.Location) *int {
	if len(logs) == 0 {
		return nil
	}
	var counts [24]int
	for _, entry := range logs {
		counts[entry.CreatedAt.In(loc).Hour()]++
	}
	peak := 0
	for hour := 1; hour < len(counts); hour++ {
		if counts[hour] > counts[peak] {
			peak = hour
		}
	}
	return &peak
}

func topDistractionSources(distractions []db.Distraction) []SourceCount {
	counts := map[string]int{}
	for _, d := range distractions {
		counts[d.Source]++
	}
	sources := make([]SourceCount, 0, len(counts))
	for source, count := range counts {
		sources = append(sources, SourceCount{Source: source, Count: count})
	}
	slices.SortFunc(sources, func(a, b SourceCount) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Source, b.Source))
	})
	if len(sources) > topDistractionCap {
		sources = sources[:topDistractionCap]
	}
	return sources
}

// estimationAccuracy averages actual/estimated over logs with an estimate and
// compares the deviation of the first and second half of the period.
func estimationAccuracy(logs []db.KaizenLog) EstimationAccuracy {
	var ratios []float64
	for _, entry := range logs {
		if entry.EstimatedSeconds != nil && *entry.EstimatedSeconds > 0 {
			ratios = append(ratios, float64(entry.DurationSeconds)/float64(*entry.EstimatedSeconds))
		}
	}

	accuracy := EstimationAccuracy{AverageRatio: 1, ImprovementTrend: trendStable}
	if len(ratios) == 0 {
		return accuracy
	}
	accuracy.AverageRatio = roundTo(mean(ratios), 2)

	if len(ratios) < 2 {
		return accuracy
	}
	half := len(ratios) / 2
	before := math.Abs(mean(ratios[:half]) - 1)
	after := math.Abs(mean(ratios[half:]) - 1)
	switch {
	case after < before-trendTolerance:
		accuracy.ImprovementTrend = trendImproving
	case after > before+trendTolerance:
		accuracy.ImprovementTrend = trendDeclining
	}
	return accuracy
}

func mean(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
