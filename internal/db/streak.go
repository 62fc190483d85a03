package db

import "time"

// Streak counts consecutive qualifying days for one streak type.
type Streak struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	StreakType       string    `gorm:"size:30;uniqueIndex;not null" json:"streak_type"`
	CurrentCount     int       `json:"current_count"`
	LongestCount     int       `json:"longest_count"`
	LastActivityDate string    `gorm:"size:10" json:"last_activity_date"`
	UpdatedAt        time.Time `json:"updated_at"`
}
