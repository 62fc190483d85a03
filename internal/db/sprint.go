package db

import "time"

// Sprint is a timed focus session against a single bucket.
// The partial unique index keeps a second active row out at the store level.
type Sprint struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	Bucket                string     `gorm:"size:20;not null" json:"bucket"`
	StartedAt             time.Time  `gorm:"index" json:"started_at"`
	EndedAt               *time.Time `json:"ended_at"`
	DurationSeconds       int        `json:"duration_seconds"`
	IsActive              bool       `gorm:"index:idx_sprints_single_active,unique,where:is_active = 1" json:"is_active"`
	TargetMinutes         *int       `json:"target_minutes"`
	Goal                  string     `json:"goal"`
	EstimatedTotalMinutes *int       `json:"estimated_total_minutes"`
	PlannedTaskIDs        []uint     `gorm:"serializer:json" json:"planned_task_ids"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}
