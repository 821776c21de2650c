package models

import (
	"time"
)

// EventOccurrence is one append-only record of a user having performed a
// catalog event. The sum of XPEarned over a user's rows is that user's XP.
type EventOccurrence struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    uint      `json:"user_id" gorm:"not null;index:idx_occurrence_user_event"`
	User      User      `json:"-" gorm:"foreignKey:UserID"`
	EventID   string    `json:"event_id" gorm:"not null;size:100;index:idx_occurrence_user_event"`
	XPEarned  int       `json:"xp_earned" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
