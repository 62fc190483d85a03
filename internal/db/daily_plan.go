package db

import "time"

// PlanDateLayout formats the unique plan_date and streak dates.
const PlanDateLayout = "2006-01-02"

// DailyPlan is unique per plan_date; writes are upserts.
type DailyPlan struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	PlanDate              string    `gorm:"size:10;uniqueIndex;not null" json:"plan_date"`
	MorningEnergy         string    `gorm:"size:10" json:"morning_energy"`
	TotalAvailableMinutes int       `json:"total_available_minutes"`
	PlannedTaskIDs        []uint    `gorm:"serializer:json" json:"planned_task_ids"`
	Goals                 []string  `gorm:"serializer:json" json:"goals"`
	Notes                 string    `gorm:"type:text" json:"notes"`
	IsExecuted            bool      `json:"is_executed"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// DateKey returns the calendar date of t in its own location.
func DateKey(t time.Time) string {
	return t.Format(PlanDateLayout)
}
