package db

import "time"

// Task is a unit of work sorted into one bucket.
// Optional enum columns use the empty string for "unset".
type Task struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Title             string     `gorm:"size:255;not null" json:"title"`
	Bucket            string     `gorm:"size:20;index;not null;default:unsorted" json:"bucket"`
	IsCompleted       bool       `gorm:"index" json:"is_completed"`
	IsDailyHighlight  bool       `gorm:"index" json:"is_daily_highlight"`
	SortOrder         int        `json:"sort_order"`
	EstimatedDuration *int       `json:"estimated_duration"`
	EnergyLevel       string     `gorm:"size:10" json:"energy_level,omitempty"`
	PriorityType      string     `gorm:"size:10" json:"priority_type,omitempty"`
	DopamineScore     *int       `json:"dopamine_score"`
	FrictionLevel     string     `gorm:"size:10" json:"friction_level,omitempty"`
	Environment       string     `gorm:"size:100" json:"environment,omitempty"`
	Deadline          *time.Time `json:"deadline"`
	Source            string     `gorm:"size:20;not null;default:manual" json:"source"`
	Tags              []string   `gorm:"serializer:json" json:"tags"`
	CompletedAt       *time.Time `gorm:"index" json:"completed_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// DefaultTaskMinutes is assumed for tasks without an estimate.
const DefaultTaskMinutes = 25

// Minutes returns the estimate or the 25 minute default.
func (t Task) Minutes() int {
	if t.EstimatedDuration == nil || *t.EstimatedDuration <= 0 {
		return DefaultTaskMinutes
	}
	return *t.EstimatedDuration
}

// Dopamine treats a missing score as 1.
func (t Task) Dopamine() int {
	if t.DopamineScore == nil {
		return 1
	}
	return *t.DopamineScore
}
