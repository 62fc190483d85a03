package db

import "time"

// KaizenLog is the reflection written after a sprint ends.
type KaizenLog struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	SprintID         *uint     `gorm:"index" json:"sprint_id"`
	Bucket           string    `gorm:"size:20;not null" json:"bucket"`
	DurationSeconds  int       `gorm:"not null;default:0" json:"duration_seconds"`
	EstimatedSeconds *int      `json:"estimated_seconds"`
	Mood             string    `gorm:"size:10;index;not null" json:"mood"`
	Notes            string    `gorm:"type:text" json:"notes"`
	TasksCompleted   []string  `gorm:"serializer:json" json:"tasks_completed"`
	DistractionCount int       `json:"distraction_count"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}
