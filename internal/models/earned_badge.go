package models

import (
	"time"
)

// EarnedBadge records that a user unlocked a badge. A badge is earned at most
// once per user; the unique index enforces it.
type EarnedBadge struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	UserID   uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_badge"`
	User     User      `json:"-" gorm:"foreignKey:UserID"`
	BadgeID  string    `json:"badge_id" gorm:"not null;size:100;uniqueIndex:idx_user_badge"`
	EarnedAt time.Time `json:"earned_at" gorm:"not null"`
}
