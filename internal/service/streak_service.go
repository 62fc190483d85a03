package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/kaizenflow/internal/db"
	"gorm.io/gorm"
)

// StreakService counts consecutive days per streak type.
type StreakService struct {
	db *gorm.DB
}

func NewStreakService(gdb *gorm.DB) *StreakService {
	return &StreakService{db: gdb}
}

// Touch records activity for streakType on the calendar date of today.
// Touching twice on the same date is a no-op.
func (s *StreakService) Touch(ctx context.Context, streakType string, today time.Time) (*db.Streak, error) {
	streakType = strings.TrimSpace(streakType)
	if !slices.Contains(db.StreakTypes, streakType) {
		return nil, invalidField("streak_type", "must be one of %s", strings.Join(db.StreakTypes, ", "))
	}

	var streak *db.Streak
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		streak, err = touchStreak(tx, streakType, db.DateKey(today))
		return err
	})
	if err != nil {
		return nil, storeErr("touch streak", err)
	}
	return streak, nil
}

// List returns every streak row.
func (s *StreakService) List(ctx context.Context) ([]db.Streak, error) {
	var streaks []db.Streak
	if err := s.db.WithContext(ctx).Order("streak_type ASC").Find(&streaks).Error; err != nil {
		return nil, storeErr("list streaks", err)
	}
	return streaks, nil
}

// Counts maps every streak type to its current count, zero when untouched.
func (s *StreakService) Counts(ctx context.Context) (map[string]int, error) {
	streaks, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(db.StreakTypes))
	for _, streakType := range db.StreakTypes {
		counts[streakType] = 0
	}
	for _, streak := range streaks {
		counts[streak.StreakType] = streak.CurrentCount
	}
	return counts, nil
}

// touchStreak runs inside the caller's transaction so plan writes and streak
// ticks commit together.
func touchStreak(tx *gorm.DB, streakType, today string) (*db.Streak, error) {
	var rows []db.Streak
	if err := tx.Where("streak_type = ?", streakType).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		streak := db.Streak{
			StreakType:       streakType,
			CurrentCount:     1,
			LongestCount:     1,
			LastActivityDate: today,
		}
		if err := tx.Create(&streak).Error; err != nil {
			return nil, err
		}
		return &streak, nil
	}

	streak := rows[0]
	if streak.LastActivityDate == today {
		return &streak, nil
	}

	current := 1
	if streak.LastActivityDate != "" {
		gap, err := dayGap(streak.LastActivityDate, today)
		if err != nil {
			return nil, err
		}
		switch {
		case gap < 0:
			// clock went backwards
			return &streak, nil
		case gap == 1:
			current = streak.CurrentCount + 1
		}
	}

	streak.CurrentCount = current
	streak.LongestCount = max(streak.LongestCount, current)
	streak.LastActivityDate = today
	if err := tx.Model(&db.Streak{}).Where("id = ?", streak.ID).Updates(map[string]any{
		"current_count":      streak.CurrentCount,
		"longest_count":      streak.LongestCount,
		"last_activity_date": streak.LastActivityDate,
	}).Error; err != nil {
		return nil, err
	}
	return &streak, nil
}

func dayGap(from, to string) (int, error) {
	start, err := time.Parse(db.PlanDateLayout, from)
	if err != nil {
		return 0, err
	}
	end, err := time.Parse(db.PlanDateLayout, to)
	if err != nil {
		return 0, err
	}
	return int(end.Sub(start).Hours() / 24), nil
}
