package models

import (
	"gorm.io/gorm"
)

// User is the job seeker's profile. XP and Level cache values derived from
// the event occurrence log.
type User struct {
	gorm.Model
	DiscordID string `gorm:"uniqueIndex"`
	Username  string
	Email     string
	Avatar    string
	XP        int `gorm:"not null;default:0"`
	Level     int `gorm:"not null;default:1"`
}
