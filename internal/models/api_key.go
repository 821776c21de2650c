package models

import (
	"time"

	"gorm.io/gorm"
)

// APIKey lets an integration (a job board importer, the CV builder worker)
// record events on behalf of the user that owns the key.
type APIKey struct {
	gorm.Model
	UserID     uint       `json:"user_id" gorm:"not null;index"`
	User       User       `json:"-"`
	Key        string     `json:"key" gorm:"uniqueIndex"`
	Name       string     `json:"name"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

// Expired reports whether the key can no longer be used at t.
func (k APIKey) Expired(t time.Time) bool {
	return k.ExpiresAt != nil && t.After(*k.ExpiresAt)
}
