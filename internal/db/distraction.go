package db

import "time"

// Distraction records an interruption, optionally converted into a task.
type Distraction struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Source         string    `gorm:"size:20;index;not null" json:"source"`
	Description    string    `gorm:"type:text" json:"description"`
	CapturedTaskID *uint     `json:"captured_task_id"`
	SprintID       *uint     `gorm:"index" json:"sprint_id"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}
