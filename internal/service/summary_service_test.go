package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/testutil"
	"gorm.io/gorm"
)

func seedLog(t *testing.T, gdb *gorm.DB, at time.Time, bucket, mood string, seconds int, estimate *int) {
	t.Helper()
	entry := db.KaizenLog{
		Bucket:           bucket,
		Mood:             mood,
		DurationSeconds:  seconds,
		EstimatedSeconds: estimate,
		TasksCompleted:   []string{},
		CreatedAt:        at,
	}
	if err := gdb.Create(&entry).Error; err != nil {
		t.Fatalf("failed to seed kaizen log: %v", err)
	}
}

func intPtr(v int) *int {
	return &v
}

func TestSummarizeToday(t *testing.T) {
	gdb := testutil.OpenDB(t)
	svc := NewSummaryService(gdb)
	svc.SetClock(testutil.NewClock(monday10am.Add(8 * time.Hour)).Now)

	seedLog(t, gdb, monday10am, db.BucketCreative, db.MoodFlow, 1800, intPtr(1200))
	seedLog(t, gdb, monday10am.Add(20*time.Minute), db.BucketCreative, db.MoodFlow, 1500, intPtr(1000))
	seedLog(t, gdb, monday10am.Add(3*time.Hour), db.BucketAdmin, db.MoodFlow, 600, nil)
	seedLog(t, gdb, monday10am.Add(4*time.Hour), db.BucketAdmin, db.MoodDrained, 600, nil)
	seedLog(t, gdb, monday10am.Add(5*time.Hour), db.BucketAdmin, db.MoodDrained, 300, nil)
	seedLog(t, gdb, monday10am.AddDate(0, 0, -1), db.BucketUrgent, db.MoodOkay, 9999, nil)

	testutil.NewTask("done").Completed(monday10am.Add(time.Hour)).Create(t, gdb)
	testutil.NewTask("old").Completed(monday10am.AddDate(0, 0, -2)).Create(t, gdb)

	for _, source := range []string{"phone", "phone", "person", "thought", "other"} {
		if err := gdb.Create(&db.Distraction{Source: source, CreatedAt: monday10am}).Error; err != nil {
			t.Fatalf("failed to seed distraction: %v", err)
		}
	}

	summary, err := svc.Summarize(context.Background(), "")
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if summary.Period != PeriodToday {
		t.Fatalf("empty period should default to today, got %q", summary.Period)
	}

	p := summary.Productivity
	if p.SprintsCount != 5 || p.TotalFocusTimeSeconds != 4800 || p.TotalTasksCompleted != 1 || p.FlowSessions != 3 || p.DrainedSessions != 2 {
		t.Fatalf("unexpected productivity %+v", p)
	}
	if len(summary.BucketBreakdown) != 2 || summary.BucketBreakdown[0].Bucket != db.BucketCreative {
		t.Fatalf("unexpected breakdown %+v", summary.BucketBreakdown)
	}
	if summary.Patterns.MostProductiveBucket != db.BucketCreative || summary.Patterns.AverageSessionLength != 960 {
		t.Fatalf("unexpected patterns %+v", summary.Patterns)
	}
	if summary.Patterns.PeakFocusHour == nil || *summary.Patterns.PeakFocusHour != 10 {
		t.Fatalf("expected peak hour 10, got %v", summary.Patterns.PeakFocusHour)
	}
	sources := summary.Patterns.TopDistractionSources
	if summary.Patterns.DistractionCount != 5 || len(sources) != 3 || sources[0].Source != "phone" || sources[0].Count != 2 {
		t.Fatalf("unexpected distraction sources %+v", sources)
	}
	if summary.EstimationAccuracy.AverageRatio != 1.5 {
		t.Fatalf("expected ratio 1.5, got %v", summary.EstimationAccuracy.AverageRatio)
	}

	wantInsights := []string{
		"Great job! You had 3 flow sessions.",
		"You felt drained 2 times. Consider more breaks.",
		"Most productive bucket: creative",
		"You tend to underestimate task duration.",
	}
	if !equalTypes(summary.Insights, wantInsights) {
		t.Fatalf("expected insights %v, got %v", wantInsights, summary.Insights)
	}
	wantRecs := []string{"Add 10-minute breaks between sessions", "Try adding 20% buffer to your estimates"}
	if !equalTypes(summary.Recommendations, wantRecs) {
		t.Fatalf("expected recommendations %v, got %v", wantRecs, summary.Recommendations)
	}
}

func TestSummarizeEmptyAndInvalidPeriods(t *testing.T) {
	gdb := testutil.OpenDB(t)
	svc := NewSummaryService(gdb)
	svc.SetClock(testutil.NewClock(monday10am).Now)
	ctx := context.Background()

	seedLog(t, gdb, monday10am.AddDate(0, 0, -1).Add(2*time.Hour), db.BucketUrgent, db.MoodOkay, 900, nil)

	summary, err := svc.Summarize(ctx, PeriodToday)
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if summary.Patterns.MostProductiveBucket != "N/A" || summary.Patterns.PeakFocusHour != nil {
		t.Fatalf("expected empty patterns, got %+v", summary.Patterns)
	}
	if summary.EstimationAccuracy.AverageRatio != 1 || summary.EstimationAccuracy.ImprovementTrend != "stable" {
		t.Fatalf("unexpected accuracy %+v", summary.EstimationAccuracy)
	}
	if len(summary.Insights) != 0 || summary.BucketBreakdown == nil {
		t.Fatalf("expected no insights and an empty breakdown, got %+v", summary)
	}

	yesterday, err := svc.Summarize(ctx, PeriodYesterday)
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if yesterday.Productivity.SprintsCount != 1 || *yesterday.Patterns.PeakFocusHour != 12 {
		t.Fatalf("unexpected yesterday summary %+v", yesterday)
	}

	week, err := svc.Summarize(ctx, PeriodWeek)
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if week.Productivity.SprintsCount != 1 {
		t.Fatalf("week should include yesterday, got %+v", week.Productivity)
	}

	var validation *ValidationError
	if _, err := svc.Summarize(ctx, "fortnight"); !errors.As(err, &validation) || validation.Field != "period" {
		t.Fatalf("expected period validation error, got %v", err)
	}
}

func TestEstimationTrend(t *testing.T) {
	logs := func(ratios ...float64) []db.KaizenLog {
		var out []db.KaizenLog
		for _, r := range ratios {
			estimate := 1000
			out = append(out, db.KaizenLog{DurationSeconds: int(r * 1000), EstimatedSeconds: &estimate})
		}
		return out
	}

	cases := []struct {
		name   string
		ratios []float64
		want   string
	}{
		{"improving", []float64{2, 1.8, 1.1, 1}, trendImproving},
		{"declining", []float64{1, 1.05, 1.6, 1.7}, trendDeclining},
		{"stable", []float64{1.2, 1.25, 1.2, 1.2}, trendStable},
		{"single", []float64{3}, trendStable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := estimationAccuracy(logs(tc.ratios...)).ImprovementTrend; got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
