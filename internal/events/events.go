// Package events publishes gamification domain events so other parts of the
// product (the web UI toast stream, analytics) can react to progression.
package events

import (
	"context"
	"time"
)

const (
	TopicXPRecorded   = "jobquest.gamification.xp.recorded"
	TopicBadgeAwarded = "jobquest.gamification.badge.awarded"
	TopicLevelUp      = "jobquest.gamification.level.up"
)

type XPRecorded struct {
	UserID     uint      `json:"user_id"`
	EventID    string    `json:"event_id"`
	XPEarned   int       `json:"xp_earned"`
	RecordedAt time.Time `json:"recorded_at"`
}

type BadgeAwarded struct {
	UserID   uint      `json:"user_id"`
	BadgeID  string    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}

type LevelUp struct {
	UserID   uint `json:"user_id"`
	NewLevel int  `json:"new_level"`
	XP       int  `json:"xp"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
